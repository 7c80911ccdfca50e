// Package metrics holds the prometheus collectors shared by the data layer.
// A nil *Collectors is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "peopledir"

// Collectors groups the counters recorded by caches and request coordinators
type Collectors struct {
	cacheLookups *prometheus.CounterVec
	requests     *prometheus.CounterVec
	joins        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache name and result (hit, miss, expired).",
		}, []string{"cache", "result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Network operations issued by a coordinator, by outcome (ok, failed, cancelled).",
		}, []string{"coordinator", "outcome"}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_joins_total",
			Help:      "Calls that reused an identical in-flight request instead of issuing a new one.",
		}, []string{"coordinator"}),
	}
	if reg != nil {
		reg.MustRegister(c.cacheLookups, c.requests, c.joins)
	}
	return c
}

// CacheLookup records one cache lookup
func (c *Collectors) CacheLookup(cache, result string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(cache, result).Inc()
}

// Request records the outcome of one executed request
func (c *Collectors) Request(coordinator, outcome string) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(coordinator, outcome).Inc()
}

// Join records a deduplicated call
func (c *Collectors) Join(coordinator string) {
	if c == nil {
		return
	}
	c.joins.WithLabelValues(coordinator).Inc()
}
