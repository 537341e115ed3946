package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	climcp "github.com/wagiedev/cli-mcp-go"
	"github.com/wagiedev/cli-mcp-go/internal/catalog"
	"github.com/wagiedev/cli-mcp-go/internal/config"
	"github.com/wagiedev/cli-mcp-go/internal/logging"
)

// version is set at build time.
var version = "dev"

type serveFlags struct {
	configPath string
	schemaPath string
	executable string
	parallel   bool
	verbose    bool
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "climcp",
		Short:         "Serve a CLI schema as an MCP tool server",
		Version:       version,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand(), newToolsCommand())

	return root
}

func newServeCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schema over stdio",
		Long: "Serve every command in the schema document as an MCP tool. " +
			"Settings are read from the config file and CLIMCP_* environment variables; flags take precedence.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cmd, &flags, &mcp.StdioTransport{})
		},
	}

	addCommonFlags(cmd, &flags)
	cmd.Flags().StringVar(&flags.executable, "exec", "", "Executable spawned for tool calls (default: describe calls only)")
	cmd.Flags().BoolVar(&flags.parallel, "parallel", false, "Allow tool calls to overlap")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug output to stderr")

	return cmd
}

func newToolsCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool descriptors the schema would expose",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadFile(cmd, &flags)
			if err != nil {
				return err
			}

			s, md, err := loadSchema(f)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(catalog.Build(s, f.Execution, md).Tools())
		},
	}

	addCommonFlags(cmd, &flags)

	return cmd
}

func addCommonFlags(cmd *cobra.Command, flags *serveFlags) {
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Config file (YAML, TOML or JSON)")
	cmd.Flags().StringVarP(&flags.schemaPath, "schema", "s", "", "Schema JSON document")
}

// loadFile reads the config file and applies flag overrides.
func loadFile(cmd *cobra.Command, flags *serveFlags) (*config.File, error) {
	f, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("schema") {
		f.Schema = flags.schemaPath
	}

	if cmd.Flags().Changed("exec") {
		f.Executable = flags.executable
	}

	if cmd.Flags().Changed("parallel") {
		f.Execution.ParallelSafe = flags.parallel
	}

	if f.Schema == "" {
		return nil, fmt.Errorf("no schema document: pass --schema or set schema in the config file")
	}

	return f, nil
}

func loadSchema(f *config.File) (*climcp.Schema, *climcp.SchemaMetadata, error) {
	s, err := climcp.LoadSchema(f.Schema)
	if err != nil {
		return nil, nil, err
	}

	md, err := f.SchemaMetadata()
	if err != nil {
		return nil, nil, err
	}

	return s, md, nil
}

func runServe(ctx context.Context, cmd *cobra.Command, flags *serveFlags, transport mcp.Transport) error {
	f, err := loadFile(cmd, flags)
	if err != nil {
		return err
	}

	s, md, err := loadSchema(f)
	if err != nil {
		return err
	}

	logger := logging.Nop()
	if flags.verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	// In-process execution needs a command tree; a schema only has names.
	if f.Execution.ReinvocationSafe {
		logger.Warn("Ignoring reinvocation_safe: a schema document can only be served through subprocesses")

		f.Execution.ReinvocationSafe = false
	}

	return climcp.ServeSchema(ctx, s,
		climcp.WithLogger(logger),
		climcp.WithConfig(f.Execution),
		climcp.WithMetadata(md),
		climcp.WithExecutable(f.Executable),
		climcp.WithLogChannel(climcp.NewLogChannel(256)),
		climcp.WithTransport(transport),
	)
}
