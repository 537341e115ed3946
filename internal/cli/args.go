package cli

import (
	"slices"

	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// HasServeFlag reports whether args contain the serve flag.
func HasServeFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}

		switch arg {
		case "--" + schema.ServeFlag, "--" + schema.ServeFlag + "=true":
			return true
		}
	}

	return false
}

// RequestsServeWithoutSubcommand reports whether args (without the program
// name) contain the serve flag and none of the root-level subcommand names.
func RequestsServeWithoutSubcommand(args []string, subcommands []string) bool {
	if !HasServeFlag(args) {
		return false
	}

	return !slices.ContainsFunc(args, func(arg string) bool {
		return slices.Contains(subcommands, arg)
	})
}
