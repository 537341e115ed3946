package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/cli-mcp-go/internal/config"
)

func TestNew(t *testing.T) {
	require.Nil(t, New(config.Execution{ParallelSafe: true}))
	require.NotNil(t, New(config.Execution{}))
}

func TestNilGateNeverBlocks(t *testing.T) {
	var g *Gate

	release, err := g.Acquire(context.Background())
	require.NoError(t, err)

	release2, err := g.Acquire(context.Background())
	require.NoError(t, err)

	release()
	release2()
}

func TestGateSerializes(t *testing.T) {
	g := New(config.Execution{})

	var (
		active  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for range 8 {
		wg.Go(func() {
			release, err := g.Acquire(context.Background())
			if err != nil {
				return
			}
			defer release()

			n := active.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}

			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
		})
	}

	wg.Wait()
	require.Equal(t, int32(1), maxSeen.Load())
}

func TestGateAcquireHonorsContext(t *testing.T) {
	g := New(config.Execution{})

	release, err := g.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = g.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
