// Command climcp serves a CLI described by a schema JSON document as an
// MCP tool server over stdio. Every tool call spawns the configured
// executable with the marshaled arguments.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
