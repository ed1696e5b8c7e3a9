package runtime

import (
	"context"
	"fmt"
	"path/filepath"

	"mergefold.dev/mergefold/internal/config"
	"mergefold.dev/mergefold/internal/git"
	"mergefold.dev/mergefold/internal/tui"
)

// Context provides access to the runner, output and config for commands
type Context struct {
	context.Context

	Runner git.Runner
	Splog  *tui.Splog
	Config *config.RepoConfig
	GitDir string
}

// NewContext creates a context around an existing runner, with default config.
func NewContext(ctx context.Context, runner git.Runner, splog *tui.Splog) *Context {
	if splog == nil {
		splog = tui.NewSplog()
	}
	return &Context{
		Context: ctx,
		Runner:  runner,
		Splog:   splog,
		Config:  &config.RepoConfig{},
	}
}

// Options controls how GetContext builds a context
type Options struct {
	Dir     string
	Verbose int
}

// GetContext locates the repository, loads its config and logger, and wires a
// real git runner. Close the returned Splog when done.
func GetContext(ctx context.Context, opts Options) (*Context, error) {
	gitDir, err := resolveGitDir(ctx, opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	cfg, err := config.Load(gitDir)
	if err != nil {
		return nil, err
	}

	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{
		Verbose:     opts.Verbose,
		LogFilePath: cfg.GetLogFilePath(),
	})
	if err != nil {
		return nil, err
	}

	return &Context{
		Context: ctx,
		Runner:  git.NewRealRunner(opts.Dir, opts.Verbose, splog),
		Splog:   splog,
		Config:  cfg,
		GitDir:  gitDir,
	}, nil
}

// resolveGitDir returns the absolute git directory for dir
func resolveGitDir(ctx context.Context, dir string) (string, error) {
	out, err := git.NewCommandRunner(dir, 0, nil).Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return filepath.Clean(out), nil
}
