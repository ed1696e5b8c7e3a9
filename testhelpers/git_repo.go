package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const textFileName = "test.txt"

// GitRepo represents a Git repository for testing purposes.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new Git repository in the specified directory using 'git init'.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}

	// Use git -c flags to avoid reading global config and set local configs
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", dir, "-b", "main")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	// Configure Git user (required for commits)
	if err := repo.runGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.runGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *GitRepo) command(args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	// Set environment to avoid reading global git config for faster operations in tests
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	return cmd
}

// runGitCommand executes a git command in the repository directory.
func (r *GitRepo) runGitCommand(args ...string) error {
	cmd := r.command(args...)
	if os.Getenv("DEBUG") != "" {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

// RunGitCommand executes a git command and returns an error if it fails.
func (r *GitRepo) RunGitCommand(args ...string) error {
	return r.runGitCommand(args...)
}

// runGitCommandRaw executes a git command and returns its untouched stdout.
func (r *GitRepo) runGitCommandRaw(stdin string, args ...string) (string, error) {
	cmd := r.command(args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, stderr)
	}
	return string(output), nil
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed output.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	output, err := r.runGitCommandRaw("", args...)
	return strings.TrimSpace(output), err
}

// CreateChange creates a file change in the repository.
func (r *GitRepo) CreateChange(textValue string, prefix string, unstaged bool) error {
	fileName := textFileName
	if prefix != "" {
		fileName = prefix + "_" + fileName
	}
	filePath := filepath.Join(r.Dir, fileName)

	if err := os.WriteFile(filePath, []byte(textValue), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if !unstaged {
		return r.runGitCommand("add", filePath)
	}

	return nil
}

// CreateChangeAndCommit creates a file change and commits it.
func (r *GitRepo) CreateChangeAndCommit(textValue string, prefix string) error {
	if err := r.CreateChange(textValue, prefix, false); err != nil {
		return err
	}
	return r.runGitCommand("commit", "-m", textValue)
}

// CreateAndCheckoutBranch creates and checks out a new branch.
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.runGitCommand("checkout", "-b", name)
}

// CheckoutBranch checks out a branch.
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.runGitCommand("checkout", name)
}

// Tag creates a lightweight tag at HEAD.
func (r *GitRepo) Tag(name string) error {
	return r.runGitCommand("tag", name)
}

// MergeWithMessage merges branch into the current branch with a forced merge commit
// whose message is exactly message.
func (r *GitRepo) MergeWithMessage(branch, message string) error {
	if err := r.runGitCommand("merge", "--no-ff", "--no-commit", branch); err != nil {
		return fmt.Errorf("failed to merge %s: %w", branch, err)
	}
	_, err := r.runGitCommandRaw(message, "commit", "--cleanup=verbatim", "--allow-empty-message", "-F", "-")
	return err
}

// GetRevision returns the SHA of a revision (branch, tag, or commit reference).
func (r *GitRepo) GetRevision(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", rev)
}

// GetTree returns the tree SHA of a revision.
func (r *GitRepo) GetTree(rev string) (string, error) {
	return r.GetRevision(rev + "^{tree}")
}

// GetParents returns the parent SHAs of a revision in order.
func (r *GitRepo) GetParents(rev string) ([]string, error) {
	output, err := r.RunGitCommandAndGetOutput("rev-list", "--parents", "-n", "1", rev)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no such revision %s", rev)
	}
	return fields[1:], nil
}

// GetMessage returns the exact raw message of a commit.
func (r *GitRepo) GetMessage(rev string) (string, error) {
	output, err := r.runGitCommandRaw("", "cat-file", "commit", rev)
	if err != nil {
		return "", err
	}
	_, message, found := strings.Cut(output, "\n\n")
	if !found {
		return "", nil
	}
	return message, nil
}

// GetAuthor returns "name <email> timestamp zone" for a commit.
func (r *GitRepo) GetAuthor(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("log", "-1", "--format=%an <%ae> %ad", "--date=raw", rev)
}

// GetReflogSubject returns the latest reflog message of a reference.
func (r *GitRepo) GetReflogSubject(ref string) (string, error) {
	return r.RunGitCommandAndGetOutput("log", "-g", "-1", "--format=%gs", ref)
}

// IsAncestor checks if the first ref is an ancestor of the second ref.
func (r *GitRepo) IsAncestor(ancestor, descendant string) bool {
	return r.runGitCommand("merge-base", "--is-ancestor", ancestor, descendant) == nil
}
