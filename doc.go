// Package climcp exposes a cobra command tree as a Model Context Protocol
// (MCP) tool server.
//
// Every command and subcommand becomes a tool. A remote client lists the
// tools, calls one with a JSON object of arguments, and the call is turned
// back into command-line tokens and executed.
//
// # Basic Usage
//
// Build the command tree from a factory and hand it to Execute. Without the
// --mcp flag the CLI runs normally; with it the process serves MCP over
// stdio:
//
//	func newRoot() *cobra.Command {
//	    root := &cobra.Command{Use: "calc", Short: "A calculator"}
//	    add := &cobra.Command{
//	        Use:   "add",
//	        Short: "Add two numbers",
//	        RunE: func(cmd *cobra.Command, _ []string) error {
//	            a, _ := cmd.Flags().GetInt("a")
//	            b, _ := cmd.Flags().GetInt("b")
//	            fmt.Fprintln(cmd.OutOrStdout(), a+b)
//	            return nil
//	        },
//	    }
//	    add.Flags().Int("a", 0, "First operand")
//	    add.Flags().Int("b", 0, "Second operand")
//	    root.AddCommand(add)
//	    return root
//	}
//
//	func main() {
//	    if err := climcp.Execute(newRoot); err != nil {
//	        os.Exit(1)
//	    }
//	}
//
// # Execution Modes
//
// By default every tool call spawns a fresh subprocess of the running
// executable and calls are serialized. ExecutionConfig relaxes this:
//
//	climcp.Execute(newRoot, climcp.WithConfig(climcp.ExecutionConfig{
//	    ReinvocationSafe:     true, // run commands in-process
//	    ParallelSafe:         true, // let calls overlap
//	    CatchInProcessPanics: true, // turn panics into error results
//	}))
//
// In-process commands write their text result to cmd.OutOrStdout(), return
// structured results with SetStructured, and report failures by returning
// an error. Errors implementing StructuredError carry a JSON detail value.
//
// # Schema Adjustments
//
// Annotations on commands and flags adjust what is exposed without
// changing the CLI itself:
//
//	climcp.Skip(internalCmd)              // hide a command
//	climcp.SkipFlags(cmd, "verbose")      // hide flags
//	climcp.RequireFlags(cmd, "path")      // make flags required remotely
//	climcp.SkipRootWhenSubcommands(root)  // expose only subcommands
//
// # Logging
//
// Log records sent to a LogChannel are forwarded to the client as MCP
// logging notifications. NewLogHandler adapts a channel to log/slog.
package climcp
