// Package catalog turns a filtered command schema into MCP tool
// descriptors, one per exposed command.
package catalog

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/cli-mcp-go/internal/config"
	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// MetaKey is the tool _meta key holding the execution flags.
const MetaKey = "climcp"

// Entry pairs a tool descriptor with the command it invokes.
type Entry struct {
	Tool    *mcp.Tool
	Command *schema.Command
}

// Catalog indexes the exposed tools by name.
type Catalog struct {
	schema  *schema.Schema
	entries []*Entry
	byName  map[string]*Entry
}

// Build applies md to s and creates one tool per remaining command in
// pre-order. When md asks to skip the root and the root has subcommands,
// only the descendants are exposed.
func Build(s *schema.Schema, cfg config.Execution, md *schema.Metadata) *Catalog {
	filtered := schema.Apply(s, md)

	c := &Catalog{
		schema: filtered,
		byName: make(map[string]*Entry),
	}

	if filtered.Root == nil {
		return c
	}

	var outputSchema *jsonschema.Schema
	if md != nil {
		outputSchema = md.OutputSchema
	}

	commands := filtered.Root.AllCommands()
	if md != nil && md.SkipRootCommandWhenSubcommands && len(filtered.Root.Subcommands) > 0 {
		commands = commands[1:]
	}

	for _, cmd := range commands {
		if _, dup := c.byName[cmd.Name]; dup {
			// Names are unique per parent only; the first in pre-order wins.
			continue
		}

		entry := &Entry{Tool: Tool(cmd, cfg, outputSchema), Command: cmd}
		c.entries = append(c.entries, entry)
		c.byName[cmd.Name] = entry
	}

	return c
}

// Tool builds the descriptor for cmd.
func Tool(cmd *schema.Command, cfg config.Execution, outputSchema *jsonschema.Schema) *mcp.Tool {
	tool := &mcp.Tool{
		Name:        cmd.Name,
		Description: cmd.Description(),
		InputSchema: InputSchema(cmd),
		Meta: mcp.Meta{
			MetaKey: map[string]any{
				"reinvocationSafe": cfg.ReinvocationSafe,
				"parallelSafe":     cfg.ParallelSafe,
				"shareRuntime":     cfg.ShareRuntime,
			},
		},
	}

	if cmd.About != nil {
		tool.Title = *cmd.About
	}

	if outputSchema != nil {
		tool.OutputSchema = outputSchema
	}

	return tool
}

// InputSchema builds the object schema of cmd's arguments. Every property
// is string-typed; callers send scalars which are rendered as argv text.
func InputSchema(cmd *schema.Command) *jsonschema.Schema {
	in := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(cmd.Args)),
		Required:   []string{},
	}

	for _, arg := range cmd.Args {
		if schema.IsBuiltinArg(arg.ID) {
			continue
		}

		prop := &jsonschema.Schema{Type: "string"}
		if desc := arg.Description(); desc != "" {
			prop.Description = desc
		}

		in.Properties[arg.ID] = prop

		if arg.Required {
			in.Required = append(in.Required, arg.ID)
		}
	}

	return in
}

// Schema returns the filtered schema the catalog was built from.
func (c *Catalog) Schema() *schema.Schema {
	return c.schema
}

// Tools returns the descriptors in pre-order.
func (c *Catalog) Tools() []*mcp.Tool {
	tools := make([]*mcp.Tool, len(c.entries))
	for i, e := range c.entries {
		tools[i] = e.Tool
	}

	return tools
}

// Entries returns the catalog entries in pre-order.
func (c *Catalog) Entries() []*Entry {
	return c.entries
}

// Lookup returns the entry for a tool name.
func (c *Catalog) Lookup(name string) (*Entry, bool) {
	e, ok := c.byName[name]

	return e, ok
}

// RootName returns the name of the root command.
func (c *Catalog) RootName() string {
	if c.schema == nil || c.schema.Root == nil {
		return ""
	}

	return c.schema.Root.Name
}
