package climcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wagiedev/cli-mcp-go/internal/config"
	"github.com/wagiedev/cli-mcp-go/internal/runtime"
)

type callStateKey struct{}

// callState is shared between the in-process executor and the command it
// runs for the duration of one tool call.
type callState struct {
	cfg        config.Execution
	structured any
	hasValue   bool
}

func withCallState(ctx context.Context, st *callState) context.Context {
	return context.WithValue(ctx, callStateKey{}, st)
}

func callStateFrom(ctx context.Context) (*callState, bool) {
	if ctx == nil {
		return nil, false
	}

	st, ok := ctx.Value(callStateKey{}).(*callState)

	return st, ok && st != nil
}

// SetStructured makes v the structured result of the running tool call.
// The value is sent to the client as JSON text and, when it encodes to an
// object, as structured content. A later call replaces an earlier one.
//
// When cmd runs from the command line rather than as a tool, v is written
// to cmd.OutOrStdout() as indented JSON.
func SetStructured(cmd *cobra.Command, v any) error {
	if st, ok := callStateFrom(cmd.Context()); ok {
		st.structured = v
		st.hasValue = true

		return nil
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode structured output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return err
}

// RunAsync runs the future produced by factory to completion and returns
// its result. Call it from a command's RunE with cmd.Context().
//
// By default the future runs on a dedicated goroutine with its own OS
// thread. When the CLI is served with both ReinvocationSafe and
// ShareRuntime, it runs on the serving loop instead; if that loop cannot
// host it, RunAsync fails with ErrRuntimeConfig rather than blocking.
// A panic in the future is re-raised in the caller.
func RunAsync[T any](ctx context.Context, factory func() Future[T]) (T, error) {
	cfg := config.DefaultExecution()
	if st, ok := callStateFrom(ctx); ok {
		cfg = st.cfg
	}

	return runtime.RunAsync(ctx, cfg, factory)
}
