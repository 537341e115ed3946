// Package cli inspects the running process on behalf of the server:
// which executable tool subprocesses should spawn, and whether the
// process arguments ask for server mode.
//
// # Executable Discovery
//
// The Discoverer resolves the program spawned for subprocess execution:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    Path:   "",             // Optional explicit path or name on PATH
//	    Logger: slog.Default(),
//	})
//	exe, err := discoverer.Discover(ctx)
//
// Discovery uses, in order:
//  1. The explicit Config.Path, looked up on PATH when it has no separator
//  2. The running executable (os.Executable), with symlinks resolved
//
// # Server Mode Detection
//
// RequestsServeWithoutSubcommand reports whether argv asks for server mode
// without naming a subcommand, so the server can start before the command
// library rejects a missing required subcommand.
package cli
