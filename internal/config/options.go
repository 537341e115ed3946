package config

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/cli-mcp-go/internal/logging"
	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// Options configures how a CLI is served.
type Options struct {
	// Logger is the slog logger for local debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Execution declares reinvocation, parallelism and runtime safety.
	Execution Execution

	// Metadata overlays the extracted schema. It is merged with any
	// metadata declared through command annotations.
	Metadata *schema.Metadata

	// Executable is the program spawned for subprocess execution.
	// If empty, the running executable is used.
	Executable string

	// Args overrides the process arguments (without the program name)
	// inspected for the serve flag. If nil, os.Args[1:] is used.
	Args []string

	// CaptureOutput merges text written to the command's output stream
	// during in-process execution into the text result.
	CaptureOutput bool

	// LogChannel, when set, is drained and forwarded to the client as
	// logging notifications. Enables the logging instructions.
	LogChannel *logging.Channel

	// ServerName and ServerVersion are reported in the initialize result.
	// They default to the root command's name and version.
	ServerName    string
	ServerVersion string

	// Transport overrides the stdio transport. Used by tests and embedders.
	// This field is not serialized.
	Transport mcp.Transport `json:"-"`
}

// DefaultOptions returns Options with DefaultExecution.
func DefaultOptions() *Options {
	return &Options{
		Execution: DefaultExecution(),
	}
}
