// Package request coordinates network calls for one engine: identical
// concurrent calls share a single execution, and a new signature on a stream
// cancels whatever that stream had outstanding.
package request

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"peopledir/internal/metrics"
)

// Executor performs the network call. It should abort when ctx is cancelled;
// if it cannot, its late result is discarded.
type Executor[T any] func(ctx context.Context) (T, error)

// errSuperseded marks a call whose result must not be applied
var errSuperseded = errors.New("request superseded")

// flight is one live execution on a stream
type flight struct {
	key       string // singleflight key, unique per execution
	signature string
	waiters   int
	ctx       context.Context
	cancel    context.CancelFunc
}

// Coordinator deduplicates and supersedes requests per logical stream
// (the directory listing, or one hierarchy node). It is private to the
// engine that owns it.
type Coordinator[T any] struct {
	name    string
	log     *zap.Logger
	metrics *metrics.Collectors

	group singleflight.Group

	mu      sync.Mutex
	streams map[string]*flight
	seq     uint64
}

// NewCoordinator creates a coordinator; name labels logs and metrics
func NewCoordinator[T any](name string, log *zap.Logger, m *metrics.Collectors) *Coordinator[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator[T]{
		name:    name,
		log:     log.Named(name),
		metrics: m,
		streams: make(map[string]*flight),
	}
}

// Do runs exec for signature on stream.
//
// A call whose stream already has a live execution for the same signature
// joins it and receives the same result. A call with a different signature
// cancels the live execution first; every waiter of the cancelled one gets
// StatusCancelled. If the caller's own ctx ends first, only that caller
// gets StatusCancelled and the shared execution continues.
func (c *Coordinator[T]) Do(ctx context.Context, stream, signature string, exec Executor[T]) Result[T] {
	c.mu.Lock()
	f, joined := c.streams[stream]
	if joined && f.signature != signature {
		c.log.Debug("superseding request",
			zap.String("stream", stream),
			zap.String("old", f.signature),
			zap.String("new", signature))
		c.cancelLocked(stream, f)
		joined = false
	}
	if !joined {
		f = c.newFlightLocked(stream, signature)
	} else {
		c.metrics.Join(c.name)
	}
	f.waiters++
	ch := c.group.DoChan(f.key, func() (any, error) {
		return c.run(stream, f, exec)
	})
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return Cancelled[T]()
	case res := <-ch:
		if errors.Is(res.Err, errSuperseded) {
			return Cancelled[T]()
		}
		if res.Err != nil {
			return Failed[T](res.Err)
		}
		v, _ := res.Val.(T)
		return OK(v)
	}
}

func (c *Coordinator[T]) newFlightLocked(stream, signature string) *flight {
	c.seq++
	ctx, cancel := context.WithCancel(context.Background())
	f := &flight{
		key:       stream + "\x00" + signature + "\x00" + strconv.FormatUint(c.seq, 10),
		signature: signature,
		ctx:       ctx,
		cancel:    cancel,
	}
	c.streams[stream] = f
	return f
}

// run executes once per flight; its outcome is shared by every waiter
func (c *Coordinator[T]) run(stream string, f *flight, exec Executor[T]) (any, error) {
	defer f.cancel()

	val, err := exec(f.ctx)

	c.mu.Lock()
	current := c.streams[stream] == f
	if current {
		delete(c.streams, stream)
	}
	c.mu.Unlock()

	if !current || f.ctx.Err() != nil {
		c.metrics.Request(c.name, "cancelled")
		c.log.Debug("discarding superseded result", zap.String("stream", stream), zap.String("signature", f.signature))
		return nil, errSuperseded
	}
	if err != nil {
		c.metrics.Request(c.name, "failed")
		return nil, err
	}
	c.metrics.Request(c.name, "ok")
	return val, nil
}

// cancelLocked aborts f and detaches it from stream. c.mu must be held.
func (c *Coordinator[T]) cancelLocked(stream string, f *flight) {
	f.cancel()
	c.group.Forget(f.key)
	if c.streams[stream] == f {
		delete(c.streams, stream)
	}
}

// Cancel aborts the live execution on stream, if any
func (c *Coordinator[T]) Cancel(stream string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.streams[stream]; ok {
		c.cancelLocked(stream, f)
	}
}

// CancelAll aborts every live execution. Engines call it when disposed.
func (c *Coordinator[T]) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for stream, f := range c.streams {
		c.cancelLocked(stream, f)
	}
}

// InFlight reports whether stream has a live execution
func (c *Coordinator[T]) InFlight(stream string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.streams[stream]
	return ok
}
