// Package git provides a wrapper around git commands and go-git for repository operations.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	mergefolderrors "mergefold.dev/mergefold/internal/errors"
)

// Tracer receives a record of every git invocation when tracing is enabled
type Tracer interface {
	Debug(format string, args ...interface{})
}

// CommandRunner handles execution of git commands
type CommandRunner struct {
	workingDir string
	verbose    int
	tracer     Tracer
}

// NewCommandRunner creates a new CommandRunner.
// With verbose >= 1 each command line is traced; with verbose >= 2 its output is traced too.
func NewCommandRunner(workingDir string, verbose int, tracer Tracer) *CommandRunner {
	return &CommandRunner{workingDir: workingDir, verbose: verbose, tracer: tracer}
}

// WorkingDir returns the directory git is run in
func (r *CommandRunner) WorkingDir() string {
	return r.workingDir
}

// Run executes a git command with the given context and returns the trimmed output
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, nil, nil, args...)
}

// RunWithInput executes a git command with input on stdin and returns the trimmed output.
// Stdin is always attached, so an empty input is an empty stream rather than the terminal.
func (r *CommandRunner) RunWithInput(ctx context.Context, input string, env []string, args ...string) (string, error) {
	return r.runInternal(ctx, &input, env, args...)
}

// RunLines executes a git command and returns its output as lines
func (r *CommandRunner) RunLines(ctx context.Context, args ...string) ([]string, error) {
	output, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// runInternal is the internal implementation that handles directory, input and environment
func (r *CommandRunner) runInternal(ctx context.Context, input *string, env []string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	r.trace("git %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if input != nil {
		cmd.Stdin = strings.NewReader(*input)
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if r.verbose >= 2 {
		r.trace("%s", strings.TrimRight(stdout.String()+stderr.String(), "\n"))
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", mergefolderrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), ctx.Err())
		}
		return "", mergefolderrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *CommandRunner) trace(format string, args ...interface{}) {
	if r.verbose < 1 || r.tracer == nil {
		return
	}
	r.tracer.Debug(format, args...)
}
