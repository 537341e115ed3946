package subprocess

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/wagiedev/cli-mcp-go/internal/errors"
	"github.com/wagiedev/cli-mcp-go/internal/logging"
)

const (
	// maxScanTokenSize is the maximum length of a single stderr line.
	// Longer lines are truncated; the rest of the line is discarded.
	maxScanTokenSize = 1024 * 1024 // 1MB
	// maxStderrBufferSize is the maximum size for the stderr buffer.
	// Stderr reading continues indefinitely (callback receives all lines),
	// but the buffer stops growing after this limit to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// Config configures a Runner.
type Config struct {
	// Logger receives debug output. If nil, the runner is silent.
	Logger *slog.Logger

	// Env is appended to the parent environment of every child.
	Env []string

	// Dir is the working directory of every child. Empty means inherit.
	Dir string
}

// Result is the captured output of one finished child process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner spawns child processes.
type Runner struct {
	log *slog.Logger
	env []string
	dir string
}

// New creates a Runner.
func New(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	return &Runner{
		log: logging.OrNop(cfg.Logger).With("component", "subprocess"),
		env: cfg.Env,
		dir: cfg.Dir,
	}
}

// Run executes exe with args and waits for it to exit.
//
// onStderr, when non-nil, is called for every stderr line as it arrives.
// A non-zero exit returns the populated Result together with a
// *errors.ProcessError. Any other error means the child could not be run
// and the Result is nil.
func (r *Runner) Run(
	ctx context.Context,
	exe string,
	args []string,
	onStderr func(line string),
) (*Result, error) {
	if exe == "" {
		return nil, errors.ErrNoExecutable
	}

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = r.dir

	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	var stdout bytes.Buffer

	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	r.log.Debug("Starting child process", "exe", exe, "args", args)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", exe, err)
	}

	var (
		stderrWg     sync.WaitGroup
		stderrBuffer strings.Builder
	)

	// Stderr must be fully read before Wait.
	// See: https://pkg.go.dev/os/exec#Cmd.StderrPipe
	stderrWg.Go(func() {
		err := readLines(stderrPipe, maxScanTokenSize, func(line string) {
			if stderrBuffer.Len() < maxStderrBufferSize {
				if stderrBuffer.Len() > 0 {
					stderrBuffer.WriteString("\n")
				}

				stderrBuffer.WriteString(line)
			}

			if onStderr != nil {
				onStderr(line)
			}
		})
		if err != nil {
			r.log.Debug("Stderr read error", "error", err)

			// Keep the pipe drained so the child never blocks on a write.
			_, _ = io.Copy(io.Discard, stderrPipe)
		}
	})

	stderrWg.Wait()

	waitErr := cmd.Wait()

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderrBuffer.String(),
	}

	if waitErr == nil {
		r.log.Debug("Child process exited successfully", "exe", exe)

		return result, nil
	}

	exitErr, ok := stderrors.AsType[*exec.ExitError](waitErr)
	if !ok {
		return nil, fmt.Errorf("wait %s: %w", exe, waitErr)
	}

	result.ExitCode = exitErr.ExitCode()

	r.log.Debug("Child process exited with error", "exe", exe, "exit_code", result.ExitCode)

	return result, &errors.ProcessError{
		ExitCode: result.ExitCode,
		Stderr:   strings.TrimSpace(result.Stderr),
		Err:      waitErr,
	}
}

// readLines calls fn for every line read from r, without the line ending.
// Lines longer than limit bytes are cut at limit. It returns nil at EOF.
func readLines(r io.Reader, limit int, fn func(line string)) error {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		line    []byte
		pending bool
	)

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if pending {
				fn(string(line))
			}

			if stderrors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		if room := limit - len(line); room > 0 {
			line = append(line, chunk[:min(room, len(chunk))]...)
		}

		pending = true

		if isPrefix {
			continue
		}

		fn(string(line))

		line = line[:0]
		pending = false
	}
}
