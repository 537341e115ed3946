package logging

import (
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ParseLevel maps a level name to an MCP logging level. Warnings map to
// "notice". Unknown names map to "info".
func ParseLevel(name string) mcp.LoggingLevel {
	switch strings.ToLower(name) {
	case "trace", "debug":
		return "debug"
	case "notice", "warn", "warning":
		return "notice"
	case "error":
		return "error"
	case "critical":
		return "critical"
	case "alert":
		return "alert"
	case "emergency":
		return "emergency"
	default:
		return "info"
	}
}

// FromSlog maps a slog level to an MCP logging level. Levels above
// slog.LevelError map to "critical".
func FromSlog(level slog.Level) mcp.LoggingLevel {
	switch {
	case level < slog.LevelInfo:
		return ParseLevel("debug")
	case level < slog.LevelWarn:
		return ParseLevel("info")
	case level < slog.LevelError:
		return ParseLevel("warn")
	case level == slog.LevelError:
		return ParseLevel("error")
	default:
		return ParseLevel("critical")
	}
}
