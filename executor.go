package climcp

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagiedev/cli-mcp-go/internal/argv"
	"github.com/wagiedev/cli-mcp-go/internal/config"
	"github.com/wagiedev/cli-mcp-go/internal/dispatch"
	"github.com/wagiedev/cli-mcp-go/internal/errors"
	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// cobraExecutor runs tool calls in-process. Every call parses a fresh
// command tree from the factory so flag state never leaks between calls.
type cobraExecutor struct {
	log     *slog.Logger
	factory func() *cobra.Command
	schema  *schema.Schema
	cfg     config.Execution
	capture *stdoutCapture
}

// Compile-time verification that cobraExecutor implements dispatch.Executor.
var _ dispatch.Executor = (*cobraExecutor)(nil)

func newCobraExecutor(log *slog.Logger, factory func() *cobra.Command, s *schema.Schema, o *Options) *cobraExecutor {
	e := &cobraExecutor{
		log:     log.With("component", "executor"),
		factory: factory,
		schema:  s,
		cfg:     o.Execution,
	}

	if o.CaptureOutput {
		e.capture = &stdoutCapture{}
	}

	return e
}

// Execute implements dispatch.Executor.
func (e *cobraExecutor) Execute(ctx context.Context, name string, args map[string]any) (dispatch.Output, error) {
	cmdSchema, ok := e.schema.Find(name)
	if !ok {
		return dispatch.Output{}, &errors.UnknownToolError{Name: name}
	}

	root := e.factory()

	path, ok := commandPath(root, name)
	if !ok {
		return dispatch.Output{}, fmt.Errorf("command %q not found in command tree", name)
	}

	tokens := append(path, argv.Marshal(cmdSchema, args)...)

	var stdout, stderr bytes.Buffer

	root.SetArgs(tokens)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SilenceUsage = true
	root.SilenceErrors = true

	st := &callState{cfg: e.cfg}
	ctx = withCallState(ctx, st)

	e.log.Debug("Executing command", "tool", name, "args", tokens)

	var (
		captured string
		err      error
	)

	if e.capture != nil {
		captured, err = e.capture.Run(func() error { return root.ExecuteContext(ctx) })
	} else {
		err = root.ExecuteContext(ctx)
	}

	if err != nil {
		return dispatch.Output{}, toolError(err)
	}

	if st.hasValue {
		return dispatch.Structured(st.structured), nil
	}

	return dispatch.Text(mergeText(stdout.String(), captured)), nil
}

// toolError keeps the structured detail of errors that carry one.
func toolError(err error) error {
	if _, ok := stderrors.AsType[*errors.ToolError](err); ok {
		return err
	}

	if se, ok := stderrors.AsType[StructuredError](err); ok {
		return &errors.ToolError{Message: err.Error(), Structured: se.Structured()}
	}

	return err
}

// mergeText joins the command's output stream with captured stdout.
func mergeText(returned, captured string) string {
	returned = strings.TrimSpace(returned)
	captured = strings.TrimSpace(captured)

	switch {
	case captured == "":
		return returned
	case returned == "":
		return captured
	default:
		return returned + "\n" + captured
	}
}

// commandPath returns the tokens selecting the named command below root,
// searching visible commands in pre-order.
func commandPath(root *cobra.Command, name string) ([]string, bool) {
	if root.Name() == name {
		return []string{}, true
	}

	for _, sub := range root.Commands() {
		if sub.Hidden || sub.Deprecated != "" {
			continue
		}

		if rest, ok := commandPath(sub, name); ok {
			return append([]string{sub.Name()}, rest...), true
		}
	}

	return nil, false
}
