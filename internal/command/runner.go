// Package command runs external programs such as mdfind and git behind a
// small interface so callers can substitute canned output in tests.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// ErrTimeout is returned when a command outlives its deadline.
var ErrTimeout = errors.New("command timed out")

// Runner executes a program and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Func adapts a plain function to Runner.
type Func func(ctx context.Context, name string, args ...string) ([]byte, error)

// Run calls f.
func (f Func) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

// ExitError reports a non-zero exit status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.Code, e.Stderr)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewExecRunner returns an ExecRunner with the given per-command timeout.
// A zero timeout disables the deadline.
func NewExecRunner(timeout time.Duration, logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{Timeout: timeout, Logger: logger}
}

// Run executes name with args, with no stdin.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...) //nolint:gosec // command and args are controlled by caller
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger().Debug("command finished",
		"command", name,
		"args", args,
		"duration", time.Since(start),
	)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return stdout.Bytes(), fmt.Errorf("%w: %s after %s", ErrTimeout, name, r.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &ExitError{
				Name:   name,
				Code:   exitErr.ExitCode(),
				Stderr: string(bytes.TrimSpace(stderr.Bytes())),
			}
		}
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// LookPath resolves name on PATH.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := LookPath(name)
	return err == nil
}
