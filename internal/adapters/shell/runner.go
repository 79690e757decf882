// Package shell provides the process execution adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/zerr"
)

// Command time budgets, graded by how much work a command is expected to do.
const (
	// ShortTimeout bounds cheap queries like "node --version".
	ShortTimeout = 5 * time.Second
	// DefaultTimeout bounds metadata commands like "npm ls".
	DefaultTimeout = 30 * time.Second
	// LongTimeout bounds installs and other mutating commands.
	LongTimeout = 60 * time.Second
)

// Runner implements ports.CommandRunner using os/exec.
type Runner struct{}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes argv in dir and captures its output. When a telemetry vertex
// is attached to the context, output is streamed into it as well.
func (r *Runner) Run(ctx context.Context, dir string, argv []string) (ports.RunResult, error) {
	if len(argv) == 0 {
		return ports.RunResult{}, zerr.New("empty command")
	}

	name := argv[0]
	args := argv[1:]

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // argv comes from fixed templates and probes
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if v, ok := ports.VertexFromContext(ctx); ok {
		cmd.Stdout = io.MultiWriter(&stdout, v.Stdout())
		cmd.Stderr = io.MultiWriter(&stderr, v.Stderr())
	}

	err := cmd.Run()
	res := ports.RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res, nil
	}

	// The context error takes precedence: a killed process surfaces as an
	// ExitError even when the real cause was the deadline.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, zerr.With(zerr.Wrap(ctxErr, "command interrupted"), "command", name)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		wrapped := zerr.With(zerr.Wrap(err, "command failed"), "exit_code", res.ExitCode)
		return res, zerr.With(wrapped, "command", name)
	}

	return res, zerr.With(zerr.Wrap(err, "command could not start"), "command", name)
}
