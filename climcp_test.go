package climcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newCalc() *cobra.Command {
	root := &cobra.Command{Use: "calc", Short: "A calculator", Version: "1.2.3"}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add two numbers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _ := cmd.Flags().GetInt("a")
			b, _ := cmd.Flags().GetInt("b")
			fmt.Fprintln(cmd.OutOrStdout(), a+b)

			return nil
		},
	}
	add.Flags().Int("a", 0, "First operand")
	add.Flags().Int("b", 0, "Second operand")
	RequireFlags(add, "a", "b")

	sum := &cobra.Command{
		Use:   "sum <numbers>...",
		Short: "Sum numbers as structured output",
		RunE: func(cmd *cobra.Command, args []string) error {
			var total int
			for _, arg := range args {
				var n int
				if _, err := fmt.Sscan(arg, &n); err != nil {
					return err
				}

				total += n
			}

			return SetStructured(cmd, map[string]int{"sum": total})
		},
	}

	fail := &cobra.Command{
		Use: "fail",
		RunE: func(*cobra.Command, []string) error {
			return NewToolError("validation failed", map[string]any{"code": 7})
		},
	}

	boom := &cobra.Command{
		Use: "boom",
		Run: func(*cobra.Command, []string) {
			panic("kaboom")
		},
	}

	wait := &cobra.Command{
		Use: "wait",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := RunAsync(cmd.Context(), func() Future[string] {
				return func(context.Context) (string, error) { return "done", nil }
			})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}

	internal := &cobra.Command{Use: "internal", Run: func(*cobra.Command, []string) {}}
	Skip(internal)

	root.AddCommand(add, sum, fail, boom, wait, internal)

	return root
}

func connect(t *testing.T, serve func(ctx context.Context, transport mcp.Transport) error) *mcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	done := make(chan error, 1)

	go func() { done <- serve(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		cancel()
		<-done
	})

	return cs
}

func serveCalc(t *testing.T, opts ...Option) *mcp.ClientSession {
	t.Helper()

	return connect(t, func(ctx context.Context, transport mcp.Transport) error {
		return Serve(ctx, newCalc, append(opts, WithTransport(transport))...)
	})
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])

	return text.Text
}

func inProcess() Option {
	return WithConfig(ExecutionConfig{
		ReinvocationSafe:          true,
		CatchInProcessPanics:      true,
		AllowMCPWithoutSubcommand: true,
	})
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)

	return res
}

func TestServeListsTools(t *testing.T) {
	cs := serveCalc(t, inProcess())

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	tools := make(map[string]*mcp.Tool)
	for _, tool := range res.Tools {
		tools[tool.Name] = tool
	}

	require.Contains(t, tools, "calc")
	require.Contains(t, tools, "add")
	require.Contains(t, tools, "sum")
	require.NotContains(t, tools, "internal")
	require.NotContains(t, tools, "help")

	add := tools["add"]
	require.Equal(t, "Add two numbers", add.Title)

	data, err := json.Marshal(add.InputSchema)
	require.NoError(t, err)

	var input struct {
		Required   []string                  `json:"required"`
		Properties map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &input))
	require.ElementsMatch(t, []string{"a", "b"}, input.Required)
	require.Equal(t, "string", input.Properties["a"]["type"])
	require.NotContains(t, input.Properties, "help")
	require.NotContains(t, input.Properties, ServeFlag)

	info := cs.InitializeResult()
	require.Equal(t, "calc", info.ServerInfo.Name)
	require.Equal(t, "1.2.3", info.ServerInfo.Version)
}

func TestServeInProcessCalls(t *testing.T) {
	cs := serveCalc(t, inProcess())

	t.Run("text output", func(t *testing.T) {
		res := call(t, cs, "add", map[string]any{"a": 2, "b": 3})
		require.False(t, res.IsError)
		require.Equal(t, "5", textOf(t, res))
	})

	t.Run("missing required arguments", func(t *testing.T) {
		res := call(t, cs, "add", map[string]any{"a": 2})
		require.True(t, res.IsError)
		require.Contains(t, textOf(t, res), "Missing required argument(s): b.")
	})

	t.Run("unknown argument", func(t *testing.T) {
		res := call(t, cs, "add", map[string]any{"a": 1, "b": 2, "c": 3})
		require.True(t, res.IsError)
		require.Contains(t, textOf(t, res), "unknown argument: c")
	})

	t.Run("structured output", func(t *testing.T) {
		res := call(t, cs, "sum", map[string]any{"numbers": "4"})
		require.False(t, res.IsError)
		require.JSONEq(t, `{"sum": 4}`, textOf(t, res))
		require.NotNil(t, res.StructuredContent)
	})

	t.Run("structured error", func(t *testing.T) {
		res := call(t, cs, "fail", nil)
		require.True(t, res.IsError)
		require.Contains(t, textOf(t, res), "validation failed")
	})

	t.Run("caught panic", func(t *testing.T) {
		res := call(t, cs, "boom", nil)
		require.True(t, res.IsError)
		require.Contains(t, textOf(t, res), "Tool panicked: kaboom")

		// The server keeps serving.
		res = call(t, cs, "add", map[string]any{"a": 1, "b": 1})
		require.Equal(t, "2", textOf(t, res))
	})

	t.Run("async body on a dedicated runtime", func(t *testing.T) {
		res := call(t, cs, "wait", nil)
		require.False(t, res.IsError)
		require.Equal(t, "done", textOf(t, res))
	})
}

func TestServeSharedRuntimeAsync(t *testing.T) {
	cs := serveCalc(t, WithConfig(ExecutionConfig{
		ReinvocationSafe: true,
		ParallelSafe:     true,
		ShareRuntime:     true,
	}))

	res := call(t, cs, "wait", nil)
	require.False(t, res.IsError)
	require.Equal(t, "done", textOf(t, res))
}

func TestServeSubprocess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	script := filepath.Join(t.TempDir(), "calc.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"args: $*\"\necho warned >&2\n"), 0o755))

	logs := NewLogChannel(8)

	cs := serveCalc(t, WithExecutable(script), WithLogChannel(logs))

	res := call(t, cs, "add", map[string]any{"a": 1, "b": "2"})
	require.False(t, res.IsError)
	require.Equal(t, "args: add --a 1 --b 2\nstderr:\nwarned", textOf(t, res))
}

func TestServeSchemaDescribesCalls(t *testing.T) {
	s, err := ParseSchema([]byte(`{
  "root": {
    "name": "tool",
    "about": "A tool",
    "version": "0.1.0",
    "args": [],
    "subcommands": [
      {"name": "greet", "args": [{"id": "name", "long": "name", "required": true}], "subcommands": []}
    ]
  }
}`))
	require.NoError(t, err)

	cs := connect(t, func(ctx context.Context, transport mcp.Transport) error {
		return ServeSchema(ctx, s, WithTransport(transport))
	})

	res := call(t, cs, "greet", map[string]any{"name": "ada"})
	require.False(t, res.IsError)
	require.Equal(t, `Would invoke command 'greet' with arguments: {"name":"ada"}`, textOf(t, res))

	require.Equal(t, "tool", cs.InitializeResult().ServerInfo.Name)
}

func TestServeSchemaRejectsInProcess(t *testing.T) {
	s := &Schema{Root: &Command{Name: "tool"}}

	err := ServeSchema(context.Background(), s, WithConfig(ExecutionConfig{ReinvocationSafe: true}))
	require.Error(t, err)
}

func TestServeRejectsInvalidTree(t *testing.T) {
	factory := func() *cobra.Command {
		root := &cobra.Command{Use: "dup"}
		root.AddCommand(&cobra.Command{Use: "same", Run: func(*cobra.Command, []string) {}})
		root.AddCommand(&cobra.Command{Use: "same", Run: func(*cobra.Command, []string) {}})

		return root
	}

	err := Serve(context.Background(), factory, inProcess())

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestExecuteRunsCLIWithoutServeFlag(t *testing.T) {
	var out bytes.Buffer

	factory := func() *cobra.Command {
		root := newCalc()
		root.SetOut(&out)

		return root
	}

	require.NoError(t, Execute(factory, WithArgs("add", "--a", "4", "--b", "5")))
	require.Equal(t, "9\n", out.String())
}

func TestShouldServe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		allow bool
		want  bool
	}{
		{name: "no flag", args: []string{"add"}, allow: true, want: false},
		{name: "flag alone", args: []string{"--mcp"}, allow: true, want: true},
		{name: "flag alone disallowed", args: []string{"--mcp"}, allow: false, want: false},
		{name: "flag with subcommand disallowed", args: []string{"add", "--mcp"}, allow: false, want: true},
		{name: "flag after terminator", args: []string{"--", "--mcp"}, allow: true, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			o := applyOptions([]Option{WithConfig(ExecutionConfig{AllowMCPWithoutSubcommand: tc.allow})})
			require.Equal(t, tc.want, shouldServe(newCalc(), tc.args, o))
		})
	}
}

func TestSetStructuredOutsideServer(t *testing.T) {
	var out bytes.Buffer

	root := newCalc()
	root.SetOut(&out)
	root.SetArgs([]string{"sum", "1", "2"})

	require.NoError(t, root.Execute())
	require.JSONEq(t, `{"sum": 3}`, out.String())
}

func TestRunAsyncOutsideServer(t *testing.T) {
	t.Parallel()

	got, err := RunAsync(context.Background(), func() Future[int] {
		return func(context.Context) (int, error) { return 42, nil }
	})
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestRunAsyncSharedWithoutLoop(t *testing.T) {
	t.Parallel()

	ctx := withCallState(context.Background(), &callState{
		cfg: ExecutionConfig{ReinvocationSafe: true, ShareRuntime: true},
	})

	_, err := RunAsync(ctx, func() Future[int] {
		return func(context.Context) (int, error) { return 1, nil }
	})
	require.ErrorIs(t, err, ErrRuntimeConfig)
}

func TestToolErrorMapping(t *testing.T) {
	t.Parallel()

	err := toolError(structuredErr{})

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	require.Equal(t, "bad input", toolErr.Message)
	require.Equal(t, map[string]any{"field": "x"}, toolErr.Structured)

	plain := errors.New("plain")
	require.Equal(t, plain, toolError(plain))
}

type structuredErr struct{}

func (structuredErr) Error() string   { return "bad input" }
func (structuredErr) Structured() any { return map[string]any{"field": "x"} }

func TestMergeText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a", mergeText("a\n", ""))
	require.Equal(t, "b", mergeText("", " b "))
	require.Equal(t, "a\nb", mergeText("a", "b"))
}

func TestCommandPath(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "git"}
	remote := &cobra.Command{Use: "remote"}
	remote.AddCommand(&cobra.Command{Use: "add"})
	root.AddCommand(remote)

	path, ok := commandPath(root, "add")
	require.True(t, ok)
	require.Equal(t, []string{"remote", "add"}, path)

	path, ok = commandPath(root, "git")
	require.True(t, ok)
	require.Empty(t, path)

	_, ok = commandPath(root, "missing")
	require.False(t, ok)
}

func TestStdoutCapture(t *testing.T) {
	saved := os.Stdout

	var c stdoutCapture

	out, err := c.Run(func() error {
		fmt.Println("captured line")

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "captured line\n", out)
	require.Same(t, saved, os.Stdout)

	require.Panics(t, func() {
		_, _ = c.Run(func() error { panic("inside") })
	})
	require.Same(t, saved, os.Stdout)
}

func TestAnnotations(t *testing.T) {
	t.Parallel()

	root := WithMCPFlag(newCalc())
	WithMCPFlag(root)
	require.NotNil(t, root.PersistentFlags().Lookup(ServeFlag))

	add, _, err := root.Find([]string{"add"})
	require.NoError(t, err)

	SkipFlags(add, "a")
	SkipFlags(add, "b")
	require.Equal(t, "a,b", add.Annotations["climcp.skip_args"])

	require.NoError(t, SetLongHelp(add, "a", "The first operand, in detail"))
	require.Error(t, SetLongHelp(add, "missing", "nope"))

	SkipRootWhenSubcommands(root)
	require.Equal(t, "true", root.Annotations["climcp.skip_root"])
}
