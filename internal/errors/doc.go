// Package errors defines the error taxonomy shared by the schema, dispatch
// and server packages.
//
// Validation errors (UnknownArgumentError, MissingRequiredArgumentError),
// subprocess failures (ProcessError) and business-logic failures (ToolError)
// are normalized into tool results before leaving the dispatcher.
// UnknownToolError is reported at the protocol level. PanicError is only
// produced when in-process panic catching is enabled.
package errors
