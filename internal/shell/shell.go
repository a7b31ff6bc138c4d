// Package shell runs external commands for the git and p4 wrappers.
// All interaction with the outside tools goes through a Runner so the
// higher layers can be tested without a checkout or a Perforce server,
// and so dry-run can swap execution for echoing.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// Runner executes external commands.
type Runner interface {
	// Output runs a read-only command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// Run executes a mutating command, wiring the caller's stdio through.
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec in Dir (empty means inherit cwd).
// Env entries, if any, are appended to the current process environment.
type ExecRunner struct {
	Dir string
	Env []string

	// Stdout and Stderr receive mutating-command output; nil means the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	slog.Debug("exec", "cmd", CommandString(name, args))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", &CommandError{
			Command: CommandString(name, args),
			Stderr:  string(bytes.TrimSpace(stderr.Bytes())),
			Err:     err,
		}
	}
	return string(bytes.TrimSpace(out)), nil
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	slog.Debug("exec", "cmd", CommandString(name, args))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	if err := cmd.Run(); err != nil {
		return &CommandError{Command: CommandString(name, args), Err: err}
	}
	return nil
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// DryRunner echoes mutating commands instead of executing them.
// Read-only Output calls still hit the real runner: the decision logic
// needs their results, and they change nothing.
type DryRunner struct {
	Real Runner
	Out  io.Writer
}

func (r *DryRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	return r.Real.Output(ctx, name, args...)
}

func (r *DryRunner) Run(_ context.Context, name string, args ...string) error {
	_, err := fmt.Fprintln(r.Out, CommandString(name, args))
	return err
}

// CommandString renders a command line shell-quoted for display.
func CommandString(name string, args []string) string {
	return shellquote.Join(append([]string{name}, args...)...)
}

// CommandError wraps a failed external command with enough context to
// report which invocation died.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
