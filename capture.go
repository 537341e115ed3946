package climcp

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// stdoutCapture redirects os.Stdout while an in-process command runs.
// Captures are serialized because os.Stdout is process-wide.
type stdoutCapture struct {
	mu sync.Mutex
}

// Run calls fn with os.Stdout redirected to a pipe and returns what fn
// wrote. os.Stdout is restored even when fn panics.
func (c *stdoutCapture) Run(fn func() error) (out string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, w, err := os.Pipe()
	if err != nil {
		return "", fmt.Errorf("capture stdout: %w", err)
	}

	var (
		buf bytes.Buffer
		wg  sync.WaitGroup
	)

	wg.Go(func() {
		_, _ = io.Copy(&buf, r)
	})

	saved := os.Stdout
	os.Stdout = w

	defer func() {
		os.Stdout = saved
		_ = w.Close()
		wg.Wait()
		_ = r.Close()

		out = buf.String()
	}()

	return "", fn()
}
