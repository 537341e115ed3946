// Package argv converts tool call arguments back into command-line tokens.
//
// Tool arguments are flat scalars by contract. Array and object values are
// not supported as flag values; they are rendered as their JSON text.
package argv

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"

	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// Marshal renders args as tokens for cmd.
//
// Positionals are emitted bare in index order, then flagged options as
// "--long value" in schema order. Absent and null values are skipped.
// Switch flags are emitted as "--long=value" so that "false" is not read
// as a positional.
func Marshal(cmd *schema.Command, args map[string]any) []string {
	if cmd == nil {
		return nil
	}

	var positionals, flagged []*schema.Arg

	for _, arg := range cmd.Args {
		if schema.IsBuiltinArg(arg.ID) {
			continue
		}

		if arg.IsPositional() {
			positionals = append(positionals, arg)
		} else {
			flagged = append(flagged, arg)
		}
	}

	slices.SortStableFunc(positionals, func(a, b *schema.Arg) int {
		return indexOf(a) - indexOf(b)
	})

	out := make([]string, 0, len(positionals)+2*len(flagged))

	for _, arg := range positionals {
		if s, ok := Stringify(args[arg.ID]); ok {
			out = append(out, s)
		}
	}

	for _, arg := range flagged {
		s, ok := Stringify(args[arg.ID])
		if !ok {
			continue
		}

		if arg.IsSwitch() {
			out = append(out, "--"+*arg.Long+"="+s)

			continue
		}

		out = append(out, "--"+*arg.Long, s)
	}

	return out
}

// ForCommand returns the tokens that follow the program name when invoking
// the named command: the subcommand token (omitted for the root) followed
// by the marshaled arguments.
func ForCommand(s *schema.Schema, name string, args map[string]any) []string {
	cmd, found := s.Find(name)
	if !found {
		return nil
	}

	tokens := Marshal(cmd, args)
	if name == s.Root.Name {
		return tokens
	}

	return append([]string{name}, tokens...)
}

// Stringify renders a scalar argument value. It reports false for nil.
func Stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return formatFloat(val), true
	case float32:
		return formatFloat(float64(val)), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case json.Number:
		return val.String(), true
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", false
		}

		return string(data), true
	}
}

// formatFloat renders integral values without a fractional part or
// exponent, matching how JSON numbers are written by clients.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

func indexOf(a *schema.Arg) int {
	if a.Index == nil {
		return 0
	}

	return *a.Index
}
