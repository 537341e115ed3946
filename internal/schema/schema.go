// Package schema holds the normalized command schema extracted from a CLI
// definition, the metadata overlay that adjusts it for remote exposure,
// and the filter that applies one to the other.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/cli-mcp-go/internal/errors"
)

// ServeFlag is the long flag that switches a CLI into MCP server mode.
const ServeFlag = "mcp"

// Schema is the serializable schema of a whole CLI.
type Schema struct {
	Root *Command `json:"root"`
}

// Command is a command or subcommand in the schema tree.
type Command struct {
	Name        string     `json:"name"`
	About       *string    `json:"about"`
	LongAbout   *string    `json:"long_about"`
	Version     *string    `json:"version"`
	Args        []*Arg     `json:"args"`
	Subcommands []*Command `json:"subcommands"`
}

// Arg is a single flag or positional argument of a command.
type Arg struct {
	ID         string   `json:"id"`
	Long       *string  `json:"long"`
	Short      *string  `json:"short"`
	Help       *string  `json:"help"`
	LongHelp   *string  `json:"long_help"`
	Required   bool     `json:"required"`
	Global     bool     `json:"global"`
	Index      *int     `json:"index"`
	Action     *string  `json:"action"`
	ValueNames []string `json:"value_names"`
	NumArgs    *string  `json:"num_args"`
}

// Metadata adjusts an extracted schema for remote exposure without
// touching the original command definition.
type Metadata struct {
	// SkipCommands lists command names excluded from exposure.
	SkipCommands []string
	// SkipArgs maps a command name to the arg ids excluded from it.
	SkipArgs map[string][]string
	// RequiresArgs maps a command name to arg ids that become required.
	RequiresArgs map[string][]string
	// OutputSchema is attached to every tool descriptor when set.
	OutputSchema *jsonschema.Schema
	// SkipRootCommandWhenSubcommands drops the root tool when the root has
	// subcommands.
	SkipRootCommandWhenSubcommands bool
}

// IsBuiltinArg reports whether id is one of the arg ids that carry no
// meaning as a remote tool parameter.
func IsBuiltinArg(id string) bool {
	switch id {
	case "help", "version", ServeFlag:
		return true
	default:
		return false
	}
}

// IsPositional reports whether the arg has no flag form.
func (a *Arg) IsPositional() bool {
	return a.Long == nil
}

// IsSwitch reports whether the flag takes no value on the command line.
func (a *Arg) IsSwitch() bool {
	return a.NumArgs != nil && *a.NumArgs == "0"
}

// Description returns the long help, falling back to the short help.
func (a *Arg) Description() string {
	if a.LongHelp != nil && *a.LongHelp != "" {
		return *a.LongHelp
	}

	if a.Help != nil {
		return *a.Help
	}

	return ""
}

// Description returns the long about text, falling back to the short one.
func (c *Command) Description() string {
	if c.LongAbout != nil && *c.LongAbout != "" {
		return *c.LongAbout
	}

	if c.About != nil {
		return *c.About
	}

	return ""
}

// AllCommands returns the command and all of its descendants in pre-order.
func (c *Command) AllCommands() []*Command {
	out := make([]*Command, 0, 1+len(c.Subcommands))

	var walk func(*Command)

	walk = func(cmd *Command) {
		out = append(out, cmd)
		for _, sub := range cmd.Subcommands {
			walk(sub)
		}
	}

	walk(c)

	return out
}

// Find returns the first command in pre-order with the given name.
func (s *Schema) Find(name string) (*Command, bool) {
	if s == nil || s.Root == nil {
		return nil, false
	}

	for _, cmd := range s.Root.AllCommands() {
		if cmd.Name == name {
			return cmd, true
		}
	}

	return nil, false
}

// Validate checks the structural invariants of the tree: sibling names are
// unique, arg ids are unique per command, and positional indices are distinct.
func (s *Schema) Validate() error {
	if s == nil || s.Root == nil {
		return &errors.SchemaError{Reason: "missing root command"}
	}

	return validateCommand(s.Root)
}

func validateCommand(cmd *Command) error {
	if cmd.Name == "" {
		return &errors.SchemaError{Reason: "command with empty name"}
	}

	ids := make(map[string]struct{}, len(cmd.Args))
	indices := make(map[int]string, len(cmd.Args))

	for _, arg := range cmd.Args {
		if _, dup := ids[arg.ID]; dup {
			return &errors.SchemaError{Command: cmd.Name, Reason: fmt.Sprintf("duplicate arg id %q", arg.ID)}
		}

		ids[arg.ID] = struct{}{}

		if arg.Index == nil {
			continue
		}

		if other, dup := indices[*arg.Index]; dup {
			return &errors.SchemaError{
				Command: cmd.Name,
				Reason:  fmt.Sprintf("positionals %q and %q share index %d", other, arg.ID, *arg.Index),
			}
		}

		indices[*arg.Index] = arg.ID
	}

	names := make(map[string]struct{}, len(cmd.Subcommands))

	for _, sub := range cmd.Subcommands {
		if _, dup := names[sub.Name]; dup {
			return &errors.SchemaError{Command: cmd.Name, Reason: fmt.Sprintf("duplicate subcommand %q", sub.Name)}
		}

		names[sub.Name] = struct{}{}

		if err := validateCommand(sub); err != nil {
			return err
		}
	}

	return nil
}

// MarshalIndent renders the schema as pretty JSON, the form exposed to
// remote clients as a resource.
func (s *Schema) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return data, nil
}

// Ptr returns a pointer to v. Used for the optional schema fields.
func Ptr[T any](v T) *T {
	return &v
}
