// Package cache is the per-engine, in-memory TTL cache keyed by query signature.
package cache

import (
	"sync"
	"time"

	"peopledir/internal/metrics"
)

// DefaultTTL is how long an entry stays readable after it was stored
const DefaultTTL = 120 * time.Second

type entry[T any] struct {
	payload    T
	insertedAt time.Time
}

// Store maps a signature to its payload and insertion time.
//
// Expired entries are never purged on read; they stay in the map until the
// next Put for the same signature or a Clear. There is no capacity bound and
// no LRU eviction, which suits a short-lived session. A long-running process
// needs a bounded variant.
type Store[T any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Collectors

	mu      sync.Mutex
	entries map[string]entry[T]
}

// Option configures a Store
type Option func(*options)

type options struct {
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Collectors
}

// WithTTL overrides DefaultTTL
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMetrics records hits and misses under the store's name
func WithMetrics(m *metrics.Collectors) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates an empty store. name labels its metrics.
func New[T any](name string, opts ...Option) *Store[T] {
	o := options{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		name:    name,
		ttl:     o.ttl,
		now:     o.now,
		metrics: o.metrics,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the payload stored under signature while it is younger than
// the TTL. Missing and expired entries both report false.
func (s *Store[T]) Get(signature string) (T, bool) {
	s.mu.Lock()
	e, ok := s.entries[signature]
	s.mu.Unlock()

	var zero T
	if !ok {
		s.metrics.CacheLookup(s.name, "miss")
		return zero, false
	}
	if s.now().Sub(e.insertedAt) >= s.ttl {
		s.metrics.CacheLookup(s.name, "expired")
		return zero, false
	}
	s.metrics.CacheLookup(s.name, "hit")
	return e.payload, true
}

// Put stores payload under signature, replacing any earlier entry
func (s *Store[T]) Put(signature string, payload T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[signature] = entry[T]{payload: payload, insertedAt: s.now()}
}

// Clear drops every entry
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
}

// Len counts stored entries, expired ones included
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TTL returns the configured time-to-live
func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}
