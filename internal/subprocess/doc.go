// Package subprocess runs a CLI executable once per tool call.
//
// Each call spawns a fresh child process with the marshaled argv, captures
// stdout and stderr separately, and reports non-zero exits as ProcessError.
// Stderr is streamed line by line to an optional callback while the child
// runs, so it can be forwarded before the call completes.
package subprocess
