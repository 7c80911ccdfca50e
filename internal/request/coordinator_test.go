package request

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedExecutor blocks until release is closed, counting invocations
type gatedExecutor struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	value   string
	honour  bool // return early when ctx is cancelled
}

func newGated(value string, honour bool) *gatedExecutor {
	return &gatedExecutor{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
		value:   value,
		honour:  honour,
	}
}

func (g *gatedExecutor) run(ctx context.Context) (string, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	if g.honour {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-g.release:
		}
	} else {
		<-g.release
	}
	return g.value, nil
}

func (c *Coordinator[T]) waiters(stream string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.streams[stream]; ok {
		return f.waiters
	}
	return 0
}

func waitStarted(t *testing.T, g *gatedExecutor) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("executor did not start")
	}
}

func TestCoordinator_DeduplicatesIdenticalCalls(t *testing.T) {
	c := NewCoordinator[string]("test", nil, nil)
	exec := newGated("page-1", false)

	results := make([]Result[string], 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = c.Do(context.Background(), "directory", "page=1", exec.run)
	}()
	waitStarted(t, exec)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = c.Do(context.Background(), "directory", "page=1", exec.run)
	}()
	require.Eventually(t, func() bool { return c.waiters("directory") == 2 }, time.Second, time.Millisecond)

	close(exec.release)
	wg.Wait()

	assert.Equal(t, int32(1), exec.calls.Load(), "identical calls must share one execution")
	for _, r := range results {
		require.True(t, r.IsOK())
		assert.Equal(t, "page-1", r.Value)
	}
	assert.False(t, c.InFlight("directory"))
}

func TestCoordinator_NewSignatureSupersedesOld(t *testing.T) {
	c := NewCoordinator[string]("test", nil, nil)
	slow := newGated("stale", false) // ignores cancellation
	fast := newGated("fresh", false)

	var first Result[string]
	done := make(chan struct{})
	go func() {
		defer close(done)
		first = c.Do(context.Background(), "directory", "page=1", slow.run)
	}()
	waitStarted(t, slow)

	var second Result[string]
	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		second = c.Do(context.Background(), "directory", "page=2", fast.run)
	}()
	waitStarted(t, fast)

	close(fast.release)
	<-secondDone
	require.True(t, second.IsOK())
	assert.Equal(t, "fresh", second.Value)

	// The stale call arrives after the newer one and must be discarded.
	close(slow.release)
	<-done
	assert.True(t, first.IsCancelled())
	assert.NoError(t, first.Err)
}

func TestCoordinator_CancellationReachesExecutor(t *testing.T) {
	c := NewCoordinator[string]("test", nil, nil)
	a := newGated("a", true)
	b := newGated("b", true)

	var first Result[string]
	done := make(chan struct{})
	go func() {
		defer close(done)
		first = c.Do(context.Background(), "node:1", "depth=1", a.run)
	}()
	waitStarted(t, a)

	go func() {
		c.Do(context.Background(), "node:1", "depth=2", b.run)
	}()
	waitStarted(t, b)

	<-done
	assert.True(t, first.IsCancelled(), "superseded executor should observe its token")

	close(b.release)
	require.Eventually(t, func() bool { return !c.InFlight("node:1") }, time.Second, time.Millisecond)
}

func TestCoordinator_StreamsAreIndependent(t *testing.T) {
	c := NewCoordinator[string]("test", nil, nil)
	a := newGated("a", true)
	b := newGated("b", true)

	results := make(chan Result[string], 2)
	go func() { results <- c.Do(context.Background(), "node:1", "sig", a.run) }()
	go func() { results <- c.Do(context.Background(), "node:2", "sig", b.run) }()
	waitStarted(t, a)
	waitStarted(t, b)

	close(a.release)
	close(b.release)
	for range 2 {
		r := <-results
		assert.True(t, r.IsOK())
	}
}

func TestCoordinator_Failure(t *testing.T) {
	c := NewCoordinator[string]("test", nil, nil)
	boom := errors.New("boom")

	r := c.Do(context.Background(), "directory", "page=1", func(context.Context) (string, error) {
		return "", boom
	})

	assert.Equal(t, StatusFailed, r.Status)
	assert.ErrorIs(t, r.Err, boom)
}

func TestCoordinator_CallerContextCancelled(t *testing.T) {
	c := NewCoordinator[string]("test", nil, nil)
	exec := newGated("shared", false)

	ctx, cancel := context.WithCancel(context.Background())
	var mine Result[string]
	mineDone := make(chan struct{})
	go func() {
		defer close(mineDone)
		mine = c.Do(ctx, "directory", "page=1", exec.run)
	}()
	waitStarted(t, exec)

	other := make(chan Result[string], 1)
	go func() { other <- c.Do(context.Background(), "directory", "page=1", exec.run) }()
	require.Eventually(t, func() bool { return c.waiters("directory") == 2 }, time.Second, time.Millisecond)

	cancel()
	<-mineDone
	assert.True(t, mine.IsCancelled())

	close(exec.release)
	r := <-other
	require.True(t, r.IsOK(), "the shared execution survives one caller leaving")
	assert.Equal(t, "shared", r.Value)
}

func TestCoordinator_CancelAll(t *testing.T) {
	c := NewCoordinator[string]("test", nil, nil)
	a := newGated("a", true)

	res := make(chan Result[string], 1)
	go func() { res <- c.Do(context.Background(), "directory", "page=1", a.run) }()
	waitStarted(t, a)

	c.CancelAll()
	r := <-res
	assert.True(t, r.IsCancelled())
	assert.False(t, c.InFlight("directory"))
}

func TestCoordinator_ReissueAfterSupersedeRunsAgain(t *testing.T) {
	c := NewCoordinator[string]("test", nil, nil)
	var calls atomic.Int32
	exec := func(context.Context) (string, error) {
		calls.Add(1)
		return "v", nil
	}

	for _, sig := range []string{"a", "b", "a"} {
		r := c.Do(context.Background(), "directory", sig, exec)
		require.True(t, r.IsOK())
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "cancelled", StatusCancelled.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
