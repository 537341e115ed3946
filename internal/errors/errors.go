package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CLIMCPError is the base interface for all errors produced by this module.
type CLIMCPError interface {
	error
	IsCLIMCPError() bool
}

// Compile-time verification that all error types implement CLIMCPError.
var (
	_ CLIMCPError = (*SchemaError)(nil)
	_ CLIMCPError = (*UnknownToolError)(nil)
	_ CLIMCPError = (*UnknownArgumentError)(nil)
	_ CLIMCPError = (*MissingRequiredArgumentError)(nil)
	_ CLIMCPError = (*ProcessError)(nil)
	_ CLIMCPError = (*ToolError)(nil)
	_ CLIMCPError = (*PanicError)(nil)
	_ CLIMCPError = (*RuntimeConfigError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrUnknownTool is matched by every UnknownToolError.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrRuntimeConfig is matched by every RuntimeConfigError.
	ErrRuntimeConfig = errors.New("invalid runtime configuration")

	// ErrNoExecutable indicates subprocess execution was selected but no
	// executable path is available.
	ErrNoExecutable = errors.New("no executable configured for subprocess execution")

	// ErrJoinFailed indicates a dedicated runtime goroutine ended without
	// producing a result.
	ErrJoinFailed = errors.New("async tool runtime did not complete")

	// ErrUnknownResource indicates a resource URI that the server does not expose.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrUnknownPrompt indicates a prompt name that the server does not expose.
	ErrUnknownPrompt = errors.New("unknown prompt")
)

// SchemaError indicates a malformed command definition. It is only
// produced at startup.
type SchemaError struct {
	Command string
	Reason  string
	Err     error
}

func (e *SchemaError) Error() string {
	msg := "invalid command schema"
	if e.Command != "" {
		msg += fmt.Sprintf(" for %q", e.Command)
	}

	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IsCLIMCPError implements CLIMCPError.
func (e *SchemaError) IsCLIMCPError() bool { return true }

// UnknownToolError indicates a call for a tool name with no descriptor.
// It is a protocol-level error, not a tool result.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "unknown tool: " + e.Name
}

// Is reports whether target is ErrUnknownTool.
func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// IsCLIMCPError implements CLIMCPError.
func (e *UnknownToolError) IsCLIMCPError() bool { return true }

// UnknownArgumentError indicates argument keys that the tool does not declare.
type UnknownArgumentError struct {
	Tool  string
	Names []string
}

func (e *UnknownArgumentError) Error() string {
	return "unknown argument: " + strings.Join(e.Names, ", ")
}

// IsCLIMCPError implements CLIMCPError.
func (e *UnknownArgumentError) IsCLIMCPError() bool { return true }

// MissingRequiredArgumentError names every required argument that was
// absent, null, or empty.
type MissingRequiredArgumentError struct {
	Tool  string
	Names []string
}

func (e *MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf(
		"Missing required argument(s): %s. The MCP tool schema marks these as required.",
		strings.Join(e.Names, ", "),
	)
}

// IsCLIMCPError implements CLIMCPError.
func (e *MissingRequiredArgumentError) IsCLIMCPError() bool { return true }

// ProcessError indicates a tool subprocess exited with a non-zero status.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	code := "unknown"
	if e.ExitCode >= 0 {
		code = fmt.Sprintf("%d", e.ExitCode)
	}

	msg := fmt.Sprintf("Tool process exited with non-zero status (code: %s)", code)
	if e.Stderr != "" {
		msg += "\nstderr:\n" + e.Stderr
	}

	return msg
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsCLIMCPError implements CLIMCPError.
func (e *ProcessError) IsCLIMCPError() bool { return true }

// ToolError is a failure declared by the tool's own business logic.
// Structured carries an optional JSON-serializable detail value.
type ToolError struct {
	Message    string
	Structured any
}

func (e *ToolError) Error() string {
	return e.Message
}

// IsCLIMCPError implements CLIMCPError.
func (e *ToolError) IsCLIMCPError() bool { return true }

// PanicError is an in-process fault recovered from a tool body.
//
// After a PanicError the process may no longer be reinvocation safe:
// process-wide state touched by the tool could be inconsistent.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return "Tool panicked: " + FormatPanicValue(e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

// IsCLIMCPError implements CLIMCPError.
func (e *PanicError) IsCLIMCPError() bool { return true }

// RuntimeConfigError indicates an execution mode that cannot run, such as
// a shared async runtime requested outside a multi-threaded serving loop.
type RuntimeConfigError struct {
	Reason string
}

func (e *RuntimeConfigError) Error() string {
	return "invalid runtime configuration: " + e.Reason
}

// Is reports whether target is ErrRuntimeConfig.
func (e *RuntimeConfigError) Is(target error) bool {
	return target == ErrRuntimeConfig
}

// IsCLIMCPError implements CLIMCPError.
func (e *RuntimeConfigError) IsCLIMCPError() bool { return true }

// FormatPanicValue renders a recovered panic value as text.
func FormatPanicValue(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case error:
		return p.Error()
	case fmt.Stringer:
		return p.String()
	default:
		return "<panic>"
	}
}
