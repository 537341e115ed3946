package climcp

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/cli-mcp-go/internal/config"
)

// Options configures how a CLI is served.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options on top of the defaults.
func applyOptions(opts []Option) *Options {
	options := config.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithConfig sets the execution config. The default runs every call in a
// fresh subprocess, one call at a time.
func WithConfig(cfg ExecutionConfig) Option {
	return func(o *Options) {
		o.Execution = cfg
	}
}

// WithMetadata overlays the extracted schema. It is merged with metadata
// declared through command annotations.
func WithMetadata(md *SchemaMetadata) Option {
	return func(o *Options) {
		o.Metadata = md
	}
}

// WithServerInfo sets the name and version reported to clients.
// Empty values fall back to the root command's name and version.
func WithServerInfo(name, version string) Option {
	return func(o *Options) {
		o.ServerName = name
		o.ServerVersion = version
	}
}

// ===== Execution =====

// WithExecutable sets the program spawned for subprocess execution.
// If not set, the running executable is used.
func WithExecutable(path string) Option {
	return func(o *Options) {
		o.Executable = path
	}
}

// WithCaptureOutput merges text written to os.Stdout during in-process
// execution into the tool's text result.
func WithCaptureOutput(capture bool) Option {
	return func(o *Options) {
		o.CaptureOutput = capture
	}
}

// WithArgs overrides the process arguments (without the program name)
// that Execute inspects.
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.Args = args
	}
}

// ===== Logging =====

// WithLogChannel forwards messages sent to ch to the client as logging
// notifications. Subprocess stderr is forwarded through the same channel.
func WithLogChannel(ch *LogChannel) Option {
	return func(o *Options) {
		o.LogChannel = ch
	}
}

// ===== Advanced =====

// WithTransport replaces the stdio transport.
// This is primarily for testing and embedding.
func WithTransport(transport mcp.Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}
