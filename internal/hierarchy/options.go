package hierarchy

import (
	"time"

	"go.uber.org/zap"

	"peopledir/internal/metrics"
)

const (
	// DefaultDepth is the number of levels fetched for a new root, the root
	// included: root, direct reports and their reports.
	DefaultDepth = 3
	// DefaultLoadDepth is how many levels below a node an expansion fetches
	DefaultLoadDepth = 1
)

// Option configures an Engine
type Option func(*Engine)

// WithDefaultDepth sets the depth used when LoadRoot gets depth <= 0
func WithDefaultDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.defaultDepth = depth
		}
	}
}

// WithLoadDepth sets how many levels below a node LoadChildren fetches
func WithLoadDepth(levels int) Option {
	return func(e *Engine) {
		if levels > 0 {
			e.loadDepth = levels
		}
	}
}

// WithCacheTTL overrides the subtree cache TTL
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithClock replaces time.Now for cache expiry
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics records cache and request counters
func WithMetrics(m *metrics.Collectors) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}
