package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultExecution(t *testing.T) {
	t.Parallel()

	cfg := DefaultExecution()

	require.False(t, cfg.ReinvocationSafe)
	require.False(t, cfg.ParallelSafe)
	require.False(t, cfg.ShareRuntime)
	require.False(t, cfg.CatchInProcessPanics)
	require.True(t, cfg.AllowMCPWithoutSubcommand)
	require.Empty(t, cfg.Warnings())
}

func TestExecutionSharedRuntime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Execution
		want bool
	}{
		{name: "defaults", cfg: Execution{}, want: false},
		{name: "share without reinvocation", cfg: Execution{ShareRuntime: true}, want: false},
		{name: "reinvocation without share", cfg: Execution{ReinvocationSafe: true}, want: false},
		{name: "both", cfg: Execution{ReinvocationSafe: true, ShareRuntime: true}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, tc.cfg.SharedRuntime())
		})
	}
}

func TestExecutionWarnings(t *testing.T) {
	t.Parallel()

	warnings := Execution{ParallelSafe: true, ShareRuntime: true, CatchInProcessPanics: true}.Warnings()
	require.Len(t, warnings, 3)
	require.Contains(t, warnings[0], "parallel_safe")

	require.Empty(t, Execution{ReinvocationSafe: true, ParallelSafe: true, ShareRuntime: true}.Warnings())
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		f, err := Load("")
		require.NoError(t, err)
		require.Equal(t, DefaultExecution(), f.Execution)
		require.Empty(t, f.Schema)
	})

	t.Run("reads YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "climcp.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
schema: ./schema.json
executable: /usr/bin/myapp
execution:
  parallel_safe: true
metadata:
  skip_commands: [internal]
  skip_args:
    copy: [verbose]
  requires_args:
    read: [path]
  skip_root_command_when_subcommands: true
  output_schema:
    type: object
    required: [sum]
    properties:
      sum:
        type: number
`), 0o600))

		f, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, "./schema.json", f.Schema)
		require.Equal(t, "/usr/bin/myapp", f.Executable)
		require.True(t, f.Execution.ParallelSafe)
		require.True(t, f.Execution.AllowMCPWithoutSubcommand)

		md, err := f.SchemaMetadata()
		require.NoError(t, err)
		require.Equal(t, []string{"internal"}, md.SkipCommands)
		require.Equal(t, []string{"verbose"}, md.SkipArgs["copy"])
		require.Equal(t, []string{"path"}, md.RequiresArgs["read"])
		require.True(t, md.SkipRootCommandWhenSubcommands)
		require.NotNil(t, md.OutputSchema)
		require.Equal(t, "object", md.OutputSchema.Type)
		require.Equal(t, []string{"sum"}, md.OutputSchema.Required)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CLIMCP_EXECUTION_REINVOCATION_SAFE", "true")

		f, err := Load("")
		require.NoError(t, err)
		require.True(t, f.Execution.ReinvocationSafe)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}
