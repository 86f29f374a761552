package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const stderrTailBytes = 4096

// CommandResult is the captured outcome of one process run.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner abstracts process execution so adapters can be tested
// without the real binaries.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// ToolError describes a failed external tool invocation.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s failed (exit %d): %v", e.Tool, e.ExitCode, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// binary is the shared plumbing of every adapter: where the executable
// lives, how it is located, how it is run, and for how long.
type binary struct {
	name     string
	path     string
	timeout  time.Duration
	runner   CommandRunner
	lookPath func(string) (string, error)
}

func newBinary(name, path string, timeout time.Duration, runner CommandRunner) binary {
	if path == "" {
		path = name
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return binary{name: name, path: path, timeout: timeout, runner: runner, lookPath: exec.LookPath}
}

func (b binary) check() error {
	if _, err := b.lookPath(b.path); err != nil {
		return fmt.Errorf("%s (%s) is not installed or not on PATH: %w", b.name, b.path, err)
	}
	return nil
}

func (b binary) run(ctx context.Context, args ...string) (CommandResult, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	result, err := b.runner.Run(ctx, b.path, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return result, &ToolError{
			Tool:     b.name,
			Args:     args,
			ExitCode: result.ExitCode,
			Stderr:   tail(result.Stderr, stderrTailBytes),
			Err:      err,
		}
	}
	return result, nil
}
