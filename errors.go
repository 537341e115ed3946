package climcp

import "github.com/wagiedev/cli-mcp-go/internal/errors"

// Re-export error types from internal package

// CLIMCPError is the base interface for all errors in this package.
type CLIMCPError = errors.CLIMCPError

// SchemaError indicates a malformed command definition.
type SchemaError = errors.SchemaError

// UnknownToolError indicates a call for a tool that does not exist.
type UnknownToolError = errors.UnknownToolError

// UnknownArgumentError indicates argument keys the tool does not declare.
type UnknownArgumentError = errors.UnknownArgumentError

// MissingRequiredArgumentError names the required arguments a call omitted.
type MissingRequiredArgumentError = errors.MissingRequiredArgumentError

// ProcessError indicates a tool subprocess exited with a non-zero status.
type ProcessError = errors.ProcessError

// ToolError is a business logic failure with an optional structured detail.
type ToolError = errors.ToolError

// PanicError is a panic recovered from an in-process tool body.
type PanicError = errors.PanicError

// RuntimeConfigError indicates an async runtime mode that cannot run.
type RuntimeConfigError = errors.RuntimeConfigError

// Re-export sentinel errors from internal package.
var (
	// ErrUnknownTool is matched by every UnknownToolError.
	ErrUnknownTool = errors.ErrUnknownTool

	// ErrRuntimeConfig is matched by every RuntimeConfigError.
	ErrRuntimeConfig = errors.ErrRuntimeConfig

	// ErrNoExecutable indicates no executable is available for subprocess execution.
	ErrNoExecutable = errors.ErrNoExecutable

	// ErrJoinFailed indicates a dedicated async runtime did not complete.
	ErrJoinFailed = errors.ErrJoinFailed
)

// StructuredError is an error that carries a JSON-serializable detail
// value. When an in-process command returns one, the tool result carries
// the value as structured content.
type StructuredError interface {
	error
	Structured() any
}

// NewToolError returns an error with a message and a structured detail.
func NewToolError(message string, structured any) error {
	return &errors.ToolError{Message: message, Structured: structured}
}
