package git

import (
	"context"
	"errors"
	"fmt"
	"sync"

	mergefolderrors "mergefold.dev/mergefold/internal/errors"
)

// NewRealRunner returns a Runner that drives the git binary in dir and reads
// commit objects through go-git.
func NewRealRunner(dir string, verbose int, tracer Tracer) Runner {
	return &realRunner{cmd: NewCommandRunner(dir, verbose, tracer)}
}

// realRunner implements Runner against an on-disk repository
type realRunner struct {
	cmd *CommandRunner

	repoOnce sync.Once
	repo     *Repository
	repoErr  error
}

func (r *realRunner) repository() (*Repository, error) {
	r.repoOnce.Do(func() {
		r.repo, r.repoErr = OpenRepository(r.cmd.WorkingDir())
	})
	return r.repo, r.repoErr
}

func (r *realRunner) ResolveCommit(ctx context.Context, rev string) (string, error) {
	if rev == "" {
		return "", mergefolderrors.NewResolutionError(rev, nil)
	}
	hash, err := r.cmd.Run(ctx, "rev-parse", "--verify", "--quiet", "--end-of-options", rev+"^{commit}")
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", mergefolderrors.NewResolutionError(rev, err)
	}
	return hash, nil
}

func (r *realRunner) ReadRef(ctx context.Context, name string) (string, error) {
	return r.ResolveCommit(ctx, name)
}

func (r *realRunner) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	_, err := r.cmd.Run(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	var gitErr *mergefolderrors.GitCommandError
	if errors.As(err, &gitErr) && ctx.Err() == nil && gitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

func (r *realRunner) GetCommit(_ context.Context, hash string) (Commit, error) {
	repo, err := r.repository()
	if err != nil {
		return Commit{}, err
	}
	return repo.LoadCommit(hash)
}

func (r *realRunner) AncestryPath(ctx context.Context, base, tip string) ([]Commit, error) {
	hashes, err := r.cmd.RunLines(ctx, "rev-list", "--topo-order", "--ancestry-path", base+".."+tip)
	if err != nil {
		return nil, err
	}
	commits := make([]Commit, 0, len(hashes))
	for _, hash := range hashes {
		c, err := r.GetCommit(ctx, hash)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func (r *realRunner) TreeOf(ctx context.Context, commit string) (string, error) {
	c, err := r.GetCommit(ctx, commit)
	if err != nil {
		return "", err
	}
	return c.Tree, nil
}

func (r *realRunner) Describe(ctx context.Context, commit string) (string, error) {
	c, err := r.GetCommit(ctx, commit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s", c.ShortHash(), c.Subject()), nil
}

func (r *realRunner) CommitTree(ctx context.Context, opts CommitTreeOptions) (string, error) {
	args := []string{"commit-tree", opts.Tree}
	for _, p := range opts.Parents {
		args = append(args, "-p", p)
	}
	args = append(args, "-F", "-")

	hash, err := r.cmd.RunWithInput(ctx, opts.Message, opts.Author.Env(), args...)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}
	return hash, nil
}

func (r *realRunner) UpdateRef(ctx context.Context, name, newHash, oldHash, reason string) error {
	args := []string{"update-ref"}
	if reason != "" {
		args = append(args, "-m", reason)
	}
	args = append(args, name, newHash, oldHash)

	_, err := r.cmd.Run(ctx, args...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	// update-ref reports a stale old value the same way as any other lock failure,
	// so look at the ref again to tell the two apart.
	current, readErr := r.ReadRef(ctx, name)
	if readErr == nil && current != oldHash {
		return mergefolderrors.NewConcurrentModificationError(name, oldHash, current)
	}
	return err
}
