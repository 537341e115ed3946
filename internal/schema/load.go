package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/wagiedev/cli-mcp-go/internal/errors"
)

// documentSchema describes the JSON form of Schema. Documents loaded from
// disk are checked against it before decoding so that a malformed file
// fails at startup with every violation listed.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "optString": {"type": ["string", "null"]},
    "arg": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "long": {"$ref": "#/definitions/optString"},
        "short": {"$ref": "#/definitions/optString"},
        "help": {"$ref": "#/definitions/optString"},
        "long_help": {"$ref": "#/definitions/optString"},
        "required": {"type": "boolean"},
        "global": {"type": "boolean"},
        "index": {"type": ["integer", "null"], "minimum": 0},
        "action": {"$ref": "#/definitions/optString"},
        "value_names": {"type": ["array", "null"], "items": {"type": "string"}},
        "num_args": {"$ref": "#/definitions/optString"}
      }
    },
    "command": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "about": {"$ref": "#/definitions/optString"},
        "long_about": {"$ref": "#/definitions/optString"},
        "version": {"$ref": "#/definitions/optString"},
        "args": {"type": ["array", "null"], "items": {"$ref": "#/definitions/arg"}},
        "subcommands": {"type": ["array", "null"], "items": {"$ref": "#/definitions/command"}}
      }
    }
  },
  "type": "object",
  "required": ["root"],
  "properties": {
    "root": {"$ref": "#/definitions/command"}
  }
}`

// Parse decodes and validates a schema document.
func Parse(data []byte) (*Schema, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, &errors.SchemaError{Reason: "schema document is not valid JSON", Err: err}
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}

		return nil, &errors.SchemaError{Reason: strings.Join(violations, "; ")}
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &errors.SchemaError{Reason: "decode schema document", Err: err}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Load reads and parses a schema document from path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema document: %w", err)
	}

	return Parse(data)
}

// ValidateValue checks a JSON-serializable value against a JSON schema.
// It returns a joined description of every violation, or nil.
func ValidateValue(schema any, value any) error {
	if schema == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(value),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return fmt.Errorf("schema validation errors: %s", strings.Join(violations, "; "))
}
