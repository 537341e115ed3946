package extract

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// Positionals parses the positional arguments declared in cmd.Use.
//
// Only bracketed placeholders are recognized: "<name>" is required,
// "[name]" is optional, and a trailing "..." (inside or outside the
// brackets) makes it variadic. The conventional "[flags]", "[command]"
// and "[args]" placeholders and anything starting with "-" are ignored.
// Indices follow declaration order.
func Positionals(cmd *cobra.Command) []*schema.Arg {
	fields := strings.Fields(cmd.Use)
	if len(fields) < 2 {
		return nil
	}

	var out []*schema.Arg

	for _, token := range fields[1:] {
		p, ok := parsePlaceholder(token)
		if !ok {
			continue
		}

		arg := &schema.Arg{
			ID:       p.name,
			Required: p.required,
			Index:    schema.Ptr(len(out)),
			Action:   schema.Ptr(ActionSet),
		}

		arg.ValueNames = []string{strings.ToUpper(p.name)}

		switch {
		case p.variadic && p.required:
			arg.NumArgs = schema.Ptr("1..")
			arg.Action = schema.Ptr(ActionAppend)
		case p.variadic:
			arg.NumArgs = schema.Ptr("0..")
			arg.Action = schema.Ptr(ActionAppend)
		case p.required:
			arg.NumArgs = schema.Ptr("1")
		default:
			arg.NumArgs = schema.Ptr("0..1")
		}

		if help, ok := cmd.Annotations[AnnotationArgHelpPrefix+p.name]; ok && help != "" {
			arg.Help = schema.Ptr(help)
		}

		out = append(out, arg)
	}

	return out
}

type placeholder struct {
	name     string
	required bool
	variadic bool
}

func parsePlaceholder(token string) (placeholder, bool) {
	var p placeholder

	if rest, ok := strings.CutSuffix(token, "..."); ok {
		p.variadic = true
		token = rest
	}

	switch {
	case strings.HasPrefix(token, "<") && strings.HasSuffix(token, ">"):
		p.required = true
	case strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]"):
	default:
		return p, false
	}

	name := token[1 : len(token)-1]

	if rest, ok := strings.CutSuffix(name, "..."); ok {
		p.variadic = true
		name = rest
	}

	if name == "" || strings.HasPrefix(name, "-") || strings.ContainsAny(name, " |[]<>") {
		return p, false
	}

	switch name {
	case "flags", "command", "args":
		return p, false
	}

	p.name = name

	return p, true
}
