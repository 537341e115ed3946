package climcp

import (
	"log/slog"

	"github.com/wagiedev/cli-mcp-go/internal/logging"
)

// NopLogger returns a logger that discards all output.
// Use this when you want silent operation with no logging overhead.
func NopLogger() *slog.Logger {
	return logging.Nop()
}

// LogChannel queues log messages for forwarding to the MCP client.
type LogChannel = logging.Channel

// LogHandlerOptions configures NewLogHandler.
type LogHandlerOptions = logging.HandlerOptions

// NewLogChannel creates a channel buffering up to size pending messages.
// Messages sent while the buffer is full are dropped.
func NewLogChannel(size int) *LogChannel {
	return logging.NewChannel(size)
}

// NewLogHandler returns a slog.Handler that writes records to ch. Records
// are tagged with the "app" logger name unless opts sets another.
func NewLogHandler(ch *LogChannel, opts *LogHandlerOptions) slog.Handler {
	return logging.NewHandler(ch, opts)
}

// Log sends a message to ch with the given logger name and level name
// ("debug", "info", "warn", "error", ...). It never blocks.
func Log(ch *LogChannel, logger, level string, data any) bool {
	return ch.Send(logging.Params(logging.ParseLevel(level), logger, data))
}
