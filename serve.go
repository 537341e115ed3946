package climcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/wagiedev/cli-mcp-go/internal/catalog"
	"github.com/wagiedev/cli-mcp-go/internal/cli"
	"github.com/wagiedev/cli-mcp-go/internal/dispatch"
	"github.com/wagiedev/cli-mcp-go/internal/extract"
	"github.com/wagiedev/cli-mcp-go/internal/logging"
	internalmcp "github.com/wagiedev/cli-mcp-go/internal/mcp"
)

// Execute runs the CLI built by factory. When the arguments contain
// --mcp it serves the command tree over stdio instead and returns when the
// client disconnects or the process is interrupted.
//
// With AllowMCPWithoutSubcommand (the default) the server starts even when
// no subcommand is given, before cobra validates the command line.
func Execute(factory func() *cobra.Command, opts ...Option) error {
	o := applyOptions(opts)

	args := o.Args
	if args == nil {
		args = os.Args[1:]
	}

	root := WithMCPFlag(factory())

	if shouldServe(root, args, o) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, factory, o)
	}

	root.SetArgs(args)

	return root.Execute()
}

func shouldServe(root *cobra.Command, args []string, o *Options) bool {
	if !cli.HasServeFlag(args) {
		return false
	}

	if o.Execution.AllowMCPWithoutSubcommand {
		return true
	}

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
		names = append(names, sub.Aliases...)
	}

	return !cli.RequestsServeWithoutSubcommand(args, names)
}

// Serve exposes the command tree built by factory as MCP tools until ctx
// is done or the client disconnects. The factory is called once to
// extract the schema and, for in-process execution, once per tool call.
func Serve(ctx context.Context, factory func() *cobra.Command, opts ...Option) error {
	return serve(ctx, factory, applyOptions(opts))
}

func serve(ctx context.Context, factory func() *cobra.Command, o *Options) error {
	srv, err := newServer(ctx, factory, o)
	if err != nil {
		return err
	}

	return srv.Serve(ctx, transportOf(o))
}

func newServer(ctx context.Context, factory func() *cobra.Command, o *Options) (*internalmcp.Server, error) {
	log := logging.OrNop(o.Logger)

	root := factory()

	s := extract.FromCobra(root)
	if err := s.Validate(); err != nil {
		return nil, err
	}

	md := extract.MetadataFromCobra(root).Merge(o.Metadata)
	cat := catalog.Build(s, o.Execution, md)

	dcfg := &dispatch.Config{
		Logger:     o.Logger,
		Catalog:    cat,
		Execution:  o.Execution,
		LogChannel: o.LogChannel,
	}

	if o.Execution.ReinvocationSafe {
		dcfg.Executor = newCobraExecutor(log, factory, cat.Schema(), o)
	} else {
		exe, err := cli.NewDiscoverer(&cli.Config{Path: o.Executable, Logger: o.Logger}).Discover(ctx)
		if err != nil {
			return nil, err
		}

		dcfg.Executable = exe
	}

	d, err := dispatch.New(dcfg)
	if err != nil {
		return nil, err
	}

	name, version := o.ServerName, o.ServerVersion
	if name == "" {
		name = root.Name()
	}

	if version == "" {
		version = root.Version
	}

	return internalmcp.NewServer(&internalmcp.Config{
		Logger:     o.Logger,
		Name:       name,
		Title:      root.Short,
		Version:    version,
		Catalog:    cat,
		Handler:    d.Handle,
		LogChannel: o.LogChannel,
	})
}

// ServeSchema exposes a pre-built schema as MCP tools. Calls spawn the
// configured executable; without one they report the invocation they
// would make. In-process execution is not available.
func ServeSchema(ctx context.Context, s *Schema, opts ...Option) error {
	o := applyOptions(opts)

	srv, err := newSchemaServer(s, o)
	if err != nil {
		return err
	}

	return srv.Serve(ctx, transportOf(o))
}

func newSchemaServer(s *Schema, o *Options) (*internalmcp.Server, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if o.Execution.ReinvocationSafe {
		return nil, fmt.Errorf("serve schema: reinvocation_safe needs a command tree; use Serve")
	}

	cat := catalog.Build(s, o.Execution, o.Metadata)

	if o.Executable == "" {
		logging.OrNop(o.Logger).Warn("No executable configured; tool calls will only be described",
			"root", s.Root.Name)
	}

	d, err := dispatch.New(&dispatch.Config{
		Logger:     o.Logger,
		Catalog:    cat,
		Execution:  o.Execution,
		Executable: o.Executable,
		LogChannel: o.LogChannel,
	})
	if err != nil {
		return nil, err
	}

	name, version := o.ServerName, o.ServerVersion
	if name == "" {
		name = s.Root.Name
	}

	if version == "" && s.Root.Version != nil {
		version = *s.Root.Version
	}

	title := ""
	if s.Root.About != nil {
		title = *s.Root.About
	}

	return internalmcp.NewServer(&internalmcp.Config{
		Logger:     o.Logger,
		Name:       name,
		Title:      title,
		Version:    version,
		Catalog:    cat,
		Handler:    d.Handle,
		LogChannel: o.LogChannel,
	})
}

func transportOf(o *Options) mcp.Transport {
	if o.Transport != nil {
		return o.Transport
	}

	return &mcp.StdioTransport{}
}
