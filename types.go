package climcp

import (
	"github.com/wagiedev/cli-mcp-go/internal/config"
	"github.com/wagiedev/cli-mcp-go/internal/runtime"
	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// Schema is the serializable schema of a whole CLI.
type Schema = schema.Schema

// Command is a command or subcommand in the schema tree.
type Command = schema.Command

// Arg is a single flag or positional argument of a command.
type Arg = schema.Arg

// SchemaMetadata adjusts an extracted schema for remote exposure.
type SchemaMetadata = schema.Metadata

// ExecutionConfig declares how tool calls may be executed.
type ExecutionConfig = config.Execution

// Future is an async tool body run by RunAsync.
type Future[T any] = runtime.Future[T]

// ServeFlag is the long flag that switches a CLI into server mode.
const ServeFlag = schema.ServeFlag

// DefaultExecutionConfig returns the conservative defaults: a subprocess
// per call, calls serialized, panics not caught.
func DefaultExecutionConfig() ExecutionConfig {
	return config.DefaultExecution()
}

// ParseSchema decodes and validates a schema JSON document.
func ParseSchema(data []byte) (*Schema, error) {
	return schema.Parse(data)
}

// LoadSchema reads and validates a schema JSON document from disk.
func LoadSchema(path string) (*Schema, error) {
	return schema.Load(path)
}
