package dispatch

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Output is the successful result of an in-process tool body: either text
// or a structured JSON value.
type Output struct {
	text       string
	structured any
	isJSON     bool
}

// Text returns a plain text output.
func Text(s string) Output {
	return Output{text: s}
}

// Structured returns a structured output. v must be JSON-serializable.
func Structured(v any) Output {
	return Output{structured: v, isJSON: true}
}

// IsStructured reports whether the output carries a structured value.
func (o Output) IsStructured() bool {
	return o.isJSON
}

// Text returns the text of a text output.
func (o Output) Text() string {
	return o.text
}

// Value returns the value of a structured output.
func (o Output) Value() any {
	return o.structured
}

// Executor runs a tool body in the serving process.
//
// A returned *errors.ToolError becomes an error result carrying its
// structured detail. Any other error becomes an error result with the
// error text.
type Executor interface {
	Execute(ctx context.Context, name string, args map[string]any) (Output, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, name string, args map[string]any) (Output, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, name string, args map[string]any) (Output, error) {
	return f(ctx, name, args)
}

// TextResult creates a successful text result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ErrorResult creates an error result. structured is attached only when
// it encodes to a JSON object.
func ErrorResult(message string, structured any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: message}},
		StructuredContent: asObject(structured),
		IsError:           true,
	}
}

// StructuredResult creates a result whose text content is the indented
// JSON of v. v is also attached as structured content when it encodes to
// a JSON object.
func StructuredResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: asObject(v),
	}, nil
}

// asObject normalizes v to a map when its JSON form is an object.
func asObject(v any) any {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil
	}

	return obj
}
