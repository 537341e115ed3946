// Package config provides the execution and serving configuration types.
package config

// Execution declares how tool calls for a CLI may be executed. It is built
// once per CLI and not changed while serving.
type Execution struct {
	// ReinvocationSafe runs tool bodies in-process. When false (default),
	// every call spawns a fresh subprocess of the executable.
	ReinvocationSafe bool `mapstructure:"reinvocation_safe" json:"reinvocationSafe"`

	// ParallelSafe lets calls overlap. When false (default), calls are
	// serialized through a single exclusive gate.
	ParallelSafe bool `mapstructure:"parallel_safe" json:"parallelSafe"`

	// ShareRuntime runs async tool bodies on the serving loop instead of a
	// dedicated one-shot runtime. Only meaningful with ReinvocationSafe.
	ShareRuntime bool `mapstructure:"share_runtime" json:"shareRuntime"`

	// CatchInProcessPanics converts panics in in-process tool bodies into
	// error results. When false (default), a panic terminates the server.
	//
	// After a caught panic the process may no longer be reinvocation safe.
	CatchInProcessPanics bool `mapstructure:"catch_in_process_panics" json:"catchInProcessPanics"`

	// AllowMCPWithoutSubcommand starts the server when argv has the serve
	// flag and no subcommand, before subcommand validation runs. Default true.
	AllowMCPWithoutSubcommand bool `mapstructure:"allow_mcp_without_subcommand" json:"allowMcpWithoutSubcommand"`
}

// DefaultExecution returns the conservative defaults: subprocess per call,
// serialized, dedicated async runtime, panics not caught.
func DefaultExecution() Execution {
	return Execution{
		AllowMCPWithoutSubcommand: true,
	}
}

// SharedRuntime reports whether async tool bodies run on the serving loop.
func (e Execution) SharedRuntime() bool {
	return e.ReinvocationSafe && e.ShareRuntime
}

// Warnings lists flag combinations that are accepted but probably not
// what the author intended.
func (e Execution) Warnings() []string {
	var warnings []string

	if !e.ReinvocationSafe && e.ParallelSafe {
		warnings = append(warnings,
			"parallel_safe without reinvocation_safe spawns one subprocess per concurrent call")
	}

	if !e.ReinvocationSafe && e.ShareRuntime {
		warnings = append(warnings, "share_runtime has no effect without reinvocation_safe")
	}

	if !e.ReinvocationSafe && e.CatchInProcessPanics {
		warnings = append(warnings,
			"catch_in_process_panics has no effect without reinvocation_safe; subprocess failures are always reported")
	}

	return warnings
}
