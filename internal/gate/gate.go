// Package gate serializes tool calls for CLIs that are not parallel safe.
package gate

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/wagiedev/cli-mcp-go/internal/config"
)

// Gate is an exclusive, FIFO-fair lock held for the whole duration of a
// tool call. A nil *Gate never blocks.
type Gate struct {
	sem *semaphore.Weighted
}

// New returns a gate for cfg, or nil when calls may overlap.
func New(cfg config.Execution) *Gate {
	if cfg.ParallelSafe {
		return nil
	}

	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Acquire waits for exclusive access. The returned release func must be
// called exactly once; it is safe to defer.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if g == nil {
		return func() {}, nil
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	return func() { g.sem.Release(1) }, nil
}
