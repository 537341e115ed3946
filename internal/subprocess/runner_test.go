package subprocess

import (
	"context"
	stderrors "errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/cli-mcp-go/internal/errors"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("Test requires a POSIX shell")
	}
}

func TestRunSuccess(t *testing.T) {
	skipOnWindows(t)

	r := New(nil)

	res, err := r.Run(context.Background(), "sh", []string{"-c", `echo "out $1"; echo warn >&2`, "sh", "arg"}, nil)
	require.NoError(t, err)
	require.Equal(t, "out arg\n", res.Stdout)
	require.Equal(t, "warn", res.Stderr)
	require.Equal(t, 0, res.ExitCode)
}

func TestRunNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	r := New(nil)

	res, err := r.Run(context.Background(), "sh", []string{"-c", "echo partial; echo bad input >&2; exit 3"}, nil)

	procErr, ok := stderrors.AsType[*errors.ProcessError](err)
	require.True(t, ok)
	require.Equal(t, 3, procErr.ExitCode)
	require.Equal(t, "bad input", procErr.Stderr)

	require.NotNil(t, res)
	require.Equal(t, 3, res.ExitCode)
	require.Equal(t, "partial\n", res.Stdout)
}

func TestRunStreamsStderr(t *testing.T) {
	skipOnWindows(t)

	var (
		mu    sync.Mutex
		lines []string
	)

	r := New(&Config{Env: []string{"CLIMCP_TEST_VALUE=v"}})

	_, err := r.Run(context.Background(), "sh", []string{"-c", `echo one >&2; echo "$CLIMCP_TEST_VALUE" >&2`}, func(line string) {
		mu.Lock()
		defer mu.Unlock()

		lines = append(lines, line)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"one", "v"}, lines)
}

func TestRunSpawnFailure(t *testing.T) {
	r := New(nil)

	res, err := r.Run(context.Background(), "/nonexistent/climcp-test-binary", nil, nil)
	require.Error(t, err)
	require.Nil(t, res)

	_, ok := stderrors.AsType[*errors.ProcessError](err)
	require.False(t, ok)
}

func TestRunNoExecutable(t *testing.T) {
	_, err := New(nil).Run(context.Background(), "", nil, nil)
	require.ErrorIs(t, err, errors.ErrNoExecutable)
}

func TestRunLongStderrLine(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	script := `head -c 3000000 /dev/zero | tr '\0' x >&2; echo >&2; echo after >&2; echo done`

	var lines []string

	res, err := New(nil).Run(ctx, "sh", []string{"-c", script}, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "child must exit before the deadline")
	require.Equal(t, "done\n", res.Stdout)

	require.Len(t, lines, 2)
	require.Len(t, lines[0], maxScanTokenSize)
	require.Equal(t, "after", lines[1])
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		limit int
		want  []string
	}{
		{name: "plain lines", input: "a\nb\n", limit: 10, want: []string{"a", "b"}},
		{name: "no trailing newline", input: "a\nb", limit: 10, want: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", limit: 10, want: []string{"a", "b"}},
		{name: "empty line kept", input: "a\n\nb\n", limit: 10, want: []string{"a", "", "b"}},
		{name: "long line truncated", input: "abcdefgh\nxy\n", limit: 3, want: []string{"abc", "xy"}},
		{name: "empty input", input: "", limit: 10, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got []string

			err := readLines(strings.NewReader(tc.input), tc.limit, func(line string) {
				got = append(got, line)
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestReadLinesLongerThanReaderBuffer(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("x", 200*1024) + "\nend\n"

	var got []string

	require.NoError(t, readLines(strings.NewReader(input), 100*1024, func(line string) {
		got = append(got, line)
	}))
	require.Len(t, got, 2)
	require.Len(t, got[0], 100*1024)
	require.Equal(t, "end", got[1])
}

func TestNewWithoutLoggerIsSilent(t *testing.T) {
	t.Parallel()

	r := New(&Config{})
	require.False(t, r.log.Enabled(context.Background(), slog.LevelError))
}
