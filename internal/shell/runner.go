// Package shell executes provisioning steps as host commands.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Step is a single provisioning step: one command, an optional working
// directory, and an implied expected exit status of zero. Steps are executed
// in order and never retried.
type Step struct {
	Name string
	Dir  string
	Cmd  string
	Args []string
}

// Command returns the step as a display string.
func (s Step) Command() string {
	if len(s.Args) == 0 {
		return s.Cmd
	}
	return s.Cmd + " " + strings.Join(s.Args, " ")
}

// ExitError reports a step that finished with a non-zero exit status. Code is
// the command's own exit code and becomes the process exit status.
type ExitError struct {
	Step string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("step %s failed with exit status %d", e.Step, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the failing step's exit status from an error chain.
// Returns 0 for nil and 1 for errors that did not originate from a step.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Runner executes a single step and fails fast on non-zero exit status.
type Runner interface {
	Run(ctx context.Context, step Step) error
}

// HostRunner runs steps directly on the host, streaming output to the
// attached writers.
type HostRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewHostRunner creates a HostRunner attached to the process's own streams.
func NewHostRunner() *HostRunner {
	return &HostRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the step's command. A non-zero exit status is returned as an
// *ExitError carrying the command's exit code; any other failure (command not
// found, context cancelled) is returned as an *ExitError with code 1.
func (r *HostRunner) Run(ctx context.Context, step Step) error {
	cmd := exec.CommandContext(ctx, step.Cmd, step.Args...)
	cmd.Dir = step.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Step: step.Name, Code: exitErr.ExitCode(), Err: err}
		}
		return &ExitError{Step: step.Name, Code: 1, Err: err}
	}

	return nil
}

// RunAll executes steps in order, aborting on the first failure. Steps after
// a failing step never execute; side effects of earlier steps are kept.
func RunAll(ctx context.Context, r Runner, steps []Step) error {
	for _, step := range steps {
		if err := r.Run(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

var _ Runner = (*HostRunner)(nil)
