// Package runtime hosts tool bodies: the serving loop that in-process calls
// run on, and the selector that decides where async tool bodies run.
package runtime

import (
	"context"
	goruntime "runtime"

	"golang.org/x/sync/semaphore"

	"github.com/wagiedev/cli-mcp-go/internal/config"
)

// Loop is the serving runtime. Each in-process tool call occupies one of
// its slots while it runs. A single-slot loop behaves like a
// single-threaded event loop: a blocking tool body stalls every other
// in-process call.
type Loop struct {
	slots *semaphore.Weighted
	size  int64
}

type loopKey struct{}

type slotKey struct{}

// NewLoop builds the serving loop for cfg. It is multi-threaded only when
// the CLI is reinvocation safe and shares its runtime with tool bodies.
func NewLoop(cfg config.Execution) *Loop {
	size := int64(1)
	if cfg.SharedRuntime() {
		size = int64(max(goruntime.GOMAXPROCS(0), 2))
	}

	return NewLoopSize(size)
}

// NewLoopSize builds a loop with an explicit slot count (minimum 1).
func NewLoopSize(size int64) *Loop {
	size = max(size, 1)

	return &Loop{
		slots: semaphore.NewWeighted(size),
		size:  size,
	}
}

// Size returns the number of slots.
func (l *Loop) Size() int {
	return int(l.size)
}

// MultiThreaded reports whether more than one body can run at a time.
func (l *Loop) MultiThreaded() bool {
	return l.size > 1
}

// Do runs fn while holding a slot. The context passed to fn carries the
// loop, so RunAsync can find it.
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.slots.Release(1)

	ctx = context.WithValue(ctx, loopKey{}, l)
	ctx = context.WithValue(ctx, slotKey{}, l)

	return fn(ctx)
}

// WithLoop attaches l to ctx without occupying a slot.
func WithLoop(ctx context.Context, l *Loop) context.Context {
	return context.WithValue(ctx, loopKey{}, l)
}

// FromContext returns the loop the caller is running on, if any.
func FromContext(ctx context.Context) (*Loop, bool) {
	l, ok := ctx.Value(loopKey{}).(*Loop)

	return l, ok && l != nil
}

// holdsSlot reports whether ctx was produced by l.Do.
func (l *Loop) holdsSlot(ctx context.Context) bool {
	held, _ := ctx.Value(slotKey{}).(*Loop)

	return held == l
}
