package directory

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"peopledir/internal/debounce"
	"peopledir/internal/metrics"
	"peopledir/internal/ports"
)

const (
	// DefaultPageSize is the initial page size
	DefaultPageSize = 20
	// DefaultSuggestionLimit caps search-as-you-type completions
	DefaultSuggestionLimit = 8
	// MinSuggestionLength is the shortest term worth asking suggestions for
	MinSuggestionLength = 2
)

// Option configures an Engine
type Option func(*Engine)

// WithPageSize sets the initial page size
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.query.PageSize = n
		}
	}
}

// WithSort sets the initial sort
func WithSort(field string, order string) Option {
	return func(e *Engine) {
		e.query.SortField = field
		if order != "" {
			e.query.SortOrder = sortOrder(order)
		}
	}
}

// WithCacheTTL overrides the result cache TTL
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithClock replaces time.Now for cache expiry and saved-filter timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithDebounce sets the search quiescence window and, optionally, the timer
// scheduler (nil keeps time.AfterFunc)
func WithDebounce(window time.Duration, scheduler debounce.AfterFunc) Option {
	return func(e *Engine) {
		e.debounceWindow = window
		e.scheduler = scheduler
	}
}

// WithSuggestionLimit caps suggestion results
func WithSuggestionLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.suggestionLimit = n
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

// WithState persists search history and saved filters
func WithState(state ports.ClientState) Option {
	return func(e *Engine) {
		e.state = state
	}
}

// WithIDGenerator replaces uuid.NewString for saved filter ids
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

func defaultIDGenerator() string {
	return uuid.NewString()
}
