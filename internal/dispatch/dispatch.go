// Package dispatch routes tool calls to their implementation.
//
// A call moves through Received, Validated, Dispatched and then Completed
// or Rejected. Unknown tools are rejected with a protocol error before any
// other work. Undeclared arguments and missing required arguments are
// rejected with error results. Validated calls acquire the concurrency
// gate and run either in a fresh subprocess or in-process through an
// Executor, depending on the execution config.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/cli-mcp-go/internal/argv"
	"github.com/wagiedev/cli-mcp-go/internal/catalog"
	"github.com/wagiedev/cli-mcp-go/internal/config"
	"github.com/wagiedev/cli-mcp-go/internal/errors"
	"github.com/wagiedev/cli-mcp-go/internal/gate"
	"github.com/wagiedev/cli-mcp-go/internal/logging"
	"github.com/wagiedev/cli-mcp-go/internal/runtime"
	"github.com/wagiedev/cli-mcp-go/internal/schema"
	"github.com/wagiedev/cli-mcp-go/internal/subprocess"
)

// Config configures a Dispatcher.
type Config struct {
	// Logger receives local debug output. If nil, the dispatcher is silent.
	Logger *slog.Logger

	Catalog   *catalog.Catalog
	Execution config.Execution

	// Executor runs in-process calls. Required when the execution config
	// is reinvocation safe.
	Executor Executor

	// Executable is spawned for subprocess calls. When empty and no
	// Executor is set, calls report the argv they would run instead.
	Executable string

	// Runner spawns subprocesses. Defaults to a runner using Logger.
	Runner *subprocess.Runner

	// LogChannel receives subprocess stderr. Optional.
	LogChannel *logging.Channel

	// Loop hosts in-process calls. Defaults to NewLoop(Execution).
	Loop *runtime.Loop
}

// Dispatcher executes tool calls against a catalog.
type Dispatcher struct {
	log      *slog.Logger
	catalog  *catalog.Catalog
	cfg      config.Execution
	executor Executor
	exe      string
	runner   *subprocess.Runner
	logs     *logging.Channel
	gate     *gate.Gate
	loop     *runtime.Loop
}

// New creates a Dispatcher.
func New(cfg *Config) (*Dispatcher, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("dispatch: catalog is required")
	}

	if cfg.Execution.ReinvocationSafe && cfg.Executor == nil {
		return nil, fmt.Errorf("dispatch: reinvocation_safe requires an in-process executor")
	}

	log := logging.OrNop(cfg.Logger).With("component", "dispatcher")

	d := &Dispatcher{
		log:      log,
		catalog:  cfg.Catalog,
		cfg:      cfg.Execution,
		executor: cfg.Executor,
		exe:      cfg.Executable,
		runner:   cfg.Runner,
		logs:     cfg.LogChannel,
		gate:     gate.New(cfg.Execution),
		loop:     cfg.Loop,
	}

	if d.runner == nil {
		d.runner = subprocess.New(&subprocess.Config{Logger: cfg.Logger})
	}

	if d.loop == nil {
		d.loop = runtime.NewLoop(cfg.Execution)
	}

	for _, warning := range cfg.Execution.Warnings() {
		log.Warn("Unusual execution config", "warning", warning)
	}

	return d, nil
}

// Loop returns the serving loop in-process calls run on.
func (d *Dispatcher) Loop() *runtime.Loop {
	return d.loop
}

// Handle implements mcp.ToolHandler.
func (d *Dispatcher) Handle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := d.catalog.Lookup(req.Params.Name); !ok {
		d.log.Debug("Rejected call for unknown tool", "tool", req.Params.Name)

		return nil, &errors.UnknownToolError{Name: req.Params.Name}
	}

	args, err := DecodeArguments(req.Params.Arguments)
	if err != nil {
		return ErrorResult(err.Error(), nil), nil
	}

	return d.Call(ctx, req.Params.Name, args)
}

// Call executes the named tool. Only an unknown tool name or a cancelled
// context yields a non-nil error; every other failure is an error result.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	entry, ok := d.catalog.Lookup(name)
	if !ok {
		d.log.Debug("Rejected call for unknown tool", "tool", name)

		return nil, &errors.UnknownToolError{Name: name}
	}

	log := d.log.With("tool", name, "call_id", ulid.Make().String())

	if err := checkUnknown(name, entry.Command, args); err != nil {
		log.Debug("Rejected call", "reason", err)

		return ErrorResult(err.Error(), nil), nil
	}

	if err := checkRequired(name, entry.Command, args); err != nil {
		log.Debug("Rejected call", "reason", err)

		return ErrorResult(err.Error(), nil), nil
	}

	release, err := d.gate.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire tool gate: %w", err)
	}
	defer release()

	log.Debug("Dispatching call", "in_process", d.cfg.ReinvocationSafe)

	switch {
	case d.cfg.ReinvocationSafe:
		return d.callInProcess(ctx, log, entry, args)
	case d.exe != "":
		return d.callSubprocess(ctx, log, name, args), nil
	default:
		return d.describeCall(name, args), nil
	}
}

func (d *Dispatcher) callInProcess(
	ctx context.Context,
	log *slog.Logger,
	entry *catalog.Entry,
	args map[string]any,
) (*mcp.CallToolResult, error) {
	var (
		out     Output
		execErr error
		fault   *errors.PanicError
	)

	loopErr := d.loop.Do(ctx, func(ctx context.Context) error {
		fault = guard(d.cfg.CatchInProcessPanics, func() {
			out, execErr = d.executor.Execute(ctx, entry.Tool.Name, args)
		})

		return nil
	})
	if loopErr != nil {
		return nil, fmt.Errorf("acquire serving loop: %w", loopErr)
	}

	if fault != nil {
		log.Error("Tool panicked", "panic", errors.FormatPanicValue(fault.Value), "stack", string(fault.Stack))

		return ErrorResult(fault.Error(), nil), nil
	}

	if execErr != nil {
		log.Debug("Tool returned an error", "error", execErr)

		if toolErr, ok := stderrors.AsType[*errors.ToolError](execErr); ok {
			return ErrorResult(toolErr.Message, toolErr.Structured), nil
		}

		return ErrorResult(execErr.Error(), nil), nil
	}

	if !out.IsStructured() {
		return TextResult(out.Text()), nil
	}

	if entry.Tool.OutputSchema != nil {
		if err := schema.ValidateValue(entry.Tool.OutputSchema, out.Value()); err != nil {
			log.Warn("Structured output does not match the output schema", "error", err)
		}
	}

	result, err := StructuredResult(out.Value())
	if err != nil {
		return ErrorResult(fmt.Sprintf("Failed to encode structured output: %v", err), nil), nil
	}

	return result, nil
}

func (d *Dispatcher) callSubprocess(
	ctx context.Context,
	log *slog.Logger,
	name string,
	args map[string]any,
) *mcp.CallToolResult {
	tokens := argv.ForCommand(d.catalog.Schema(), name, args)

	res, err := d.runner.Run(ctx, d.exe, tokens, func(line string) {
		log.Debug("Tool stderr", "line", line)
	})

	if res != nil {
		d.forwardStderr(name, res.Stderr)
	}

	if procErr, ok := stderrors.AsType[*errors.ProcessError](err); ok {
		return ErrorResult(procErr.Error(), nil)
	}

	if err != nil {
		log.Debug("Failed to run tool subprocess", "error", err)

		return ErrorResult(fmt.Sprintf("Failed to run command: %v", err), nil)
	}

	text := strings.TrimSpace(res.Stdout)
	if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
		text += "\nstderr:\n" + stderr
	}

	return TextResult(text)
}

// forwardStderr sends non-empty stderr to the log channel regardless of
// the exit status.
func (d *Dispatcher) forwardStderr(tool, stderr string) {
	stderr = strings.TrimSpace(stderr)
	if d.logs == nil || stderr == "" {
		return
	}

	p := logging.Params("info", logging.LoggerStderr, stderr)
	p.Meta = mcp.Meta{"tool": tool}

	if !d.logs.Send(p) {
		d.log.Debug("Dropped stderr log message", "tool", tool)
	}
}

// describeCall reports the invocation a schema-only server would make.
func (d *Dispatcher) describeCall(name string, args map[string]any) *mcp.CallToolResult {
	data, err := json.Marshal(args)
	if err != nil {
		data = []byte("{}")
	}

	return TextResult(fmt.Sprintf("Would invoke command '%s' with arguments: %s", name, data))
}

// DecodeArguments decodes raw call arguments. Absent or null arguments
// decode to an empty map; numbers are kept as json.Number.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	args := make(map[string]any)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return args, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("tool arguments must be a JSON object: %w", err)
	}

	if args == nil {
		args = make(map[string]any)
	}

	return args, nil
}
