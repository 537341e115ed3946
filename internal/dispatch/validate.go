package dispatch

import (
	"slices"

	"github.com/wagiedev/cli-mcp-go/internal/argv"
	"github.com/wagiedev/cli-mcp-go/internal/errors"
	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// checkUnknown rejects argument keys the command does not declare.
func checkUnknown(tool string, cmd *schema.Command, args map[string]any) error {
	declared := make(map[string]struct{}, len(cmd.Args))

	for _, arg := range cmd.Args {
		if !schema.IsBuiltinArg(arg.ID) {
			declared[arg.ID] = struct{}{}
		}
	}

	var unknown []string

	for key := range args {
		if _, ok := declared[key]; !ok {
			unknown = append(unknown, key)
		}
	}

	if len(unknown) == 0 {
		return nil
	}

	slices.Sort(unknown)

	return &errors.UnknownArgumentError{Tool: tool, Names: unknown}
}

// checkRequired names every required argument that is absent, null, or
// empty after stringification.
func checkRequired(tool string, cmd *schema.Command, args map[string]any) error {
	var missing []string

	for _, arg := range cmd.Args {
		if !arg.Required || schema.IsBuiltinArg(arg.ID) {
			continue
		}

		s, ok := argv.Stringify(args[arg.ID])
		if !ok || s == "" {
			missing = append(missing, arg.ID)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)

	return &errors.MissingRequiredArgumentError{Tool: tool, Names: missing}
}
