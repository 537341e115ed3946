package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wagiedev/cli-mcp-go/internal/errors"
	"github.com/wagiedev/cli-mcp-go/internal/logging"
)

// Config holds configuration for executable discovery.
type Config struct {
	// Path is an explicit executable. A bare name is looked up on PATH.
	// If empty, the running executable is used.
	Path string

	// Logger is an optional logger for discovery operations.
	// If nil, discovery is silent.
	Logger *slog.Logger

	// self overrides os.Executable in tests.
	self func() (string, error)
}

// Discoverer locates the executable spawned for tool calls.
type Discoverer interface {
	// Discover returns the absolute path of the executable.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new executable discoverer.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	if cfg.self == nil {
		cfg.self = os.Executable
	}

	return &discoverer{
		cfg: cfg,
		log: logging.OrNop(cfg.Logger).With("component", "discovery"),
	}
}

// Discover resolves the executable.
func (d *discoverer) Discover(_ context.Context) (string, error) {
	if d.cfg.Path != "" {
		return d.explicit(d.cfg.Path)
	}

	self, err := d.cfg.self()
	if err != nil {
		d.log.Debug("Failed to resolve running executable", "error", err)

		return "", fmt.Errorf("%w: %w", errors.ErrNoExecutable, err)
	}

	if resolved, err := filepath.EvalSymlinks(self); err == nil {
		self = resolved
	}

	d.log.Debug("Using running executable", "path", self)

	return self, nil
}

func (d *discoverer) explicit(path string) (string, error) {
	if !strings.ContainsRune(path, filepath.Separator) && !strings.ContainsRune(path, '/') {
		found, err := exec.LookPath(path)
		if err != nil {
			d.log.Debug("Executable not found on PATH", "name", path)

			return "", fmt.Errorf("%w: %w", errors.ErrNoExecutable, err)
		}

		path = found
	}

	info, err := os.Stat(path)
	if err != nil {
		d.log.Debug("Explicit executable not found", "path", path)

		return "", fmt.Errorf("%w: %w", errors.ErrNoExecutable, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", errors.ErrNoExecutable, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrNoExecutable, err)
	}

	d.log.Debug("Using explicit executable", "path", abs)

	return abs, nil
}
