package runtime

import (
	"context"
	goruntime "runtime"

	"github.com/sourcegraph/conc"

	"github.com/wagiedev/cli-mcp-go/internal/config"
	"github.com/wagiedev/cli-mcp-go/internal/errors"
)

// Future is an async tool body. It is not started until RunAsync calls it.
type Future[T any] func(ctx context.Context) (T, error)

// RunAsync runs the future produced by factory to completion from a
// synchronous tool body.
//
// Unless cfg is both reinvocation safe and runtime sharing, the future runs
// on a dedicated goroutine locked to its own OS thread and detached from
// the serving loop. A panic in the future is re-raised in the caller.
//
// In shared mode the future runs on the serving loop found in ctx. The
// loop must be multi-threaded; otherwise RunAsync fails immediately with a
// RuntimeConfigError instead of deadlocking. The caller's slot is yielded
// while the future runs and reacquired before returning.
func RunAsync[T any](ctx context.Context, cfg config.Execution, factory func() Future[T]) (T, error) {
	if !cfg.SharedRuntime() {
		return runDedicated(ctx, factory)
	}

	return runShared(ctx, factory)
}

func runDedicated[T any](ctx context.Context, factory func() Future[T]) (T, error) {
	var (
		out  T
		err  error
		done bool
		wg   conc.WaitGroup
	)

	// The future must not see the serving loop.
	detached := context.WithValue(ctx, loopKey{}, (*Loop)(nil))

	wg.Go(func() {
		goruntime.LockOSThread()
		defer goruntime.UnlockOSThread()

		out, err = factory()(detached)
		done = true
	})

	if rec := wg.WaitAndRecover(); rec != nil {
		panic(rec.Value)
	}

	if !done {
		var zero T

		return zero, errors.ErrJoinFailed
	}

	return out, err
}

func runShared[T any](ctx context.Context, factory func() Future[T]) (T, error) {
	var zero T

	l, ok := FromContext(ctx)
	if !ok {
		return zero, &errors.RuntimeConfigError{
			Reason: "share_runtime requires a serving loop, but the tool is not running on one",
		}
	}

	if !l.MultiThreaded() {
		return zero, &errors.RuntimeConfigError{
			Reason: "share_runtime requires a multi-threaded serving loop; a single-threaded loop would deadlock",
		}
	}

	if l.holdsSlot(ctx) {
		l.slots.Release(1)
		// Reacquire unconditionally: the enclosing Do releases this slot.
		defer func() { _ = l.slots.Acquire(context.WithoutCancel(ctx), 1) }()
	}

	var (
		out T
		err error
	)

	doErr := l.Do(ctx, func(ctx context.Context) error {
		out, err = factory()(ctx)

		return nil
	})
	if doErr != nil {
		return zero, doErr
	}

	return out, err
}
