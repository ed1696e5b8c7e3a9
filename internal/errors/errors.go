// Package errors provides sentinel errors and custom error types for git-mergefold.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// Sentinel errors for the collapse pipeline
var (
	// ErrResolution indicates a revision did not resolve to exactly one commit
	ErrResolution = errors.New("revision does not resolve to a commit")

	// ErrAncestry indicates the lower bound is not an ancestor of the tip's first parent
	ErrAncestry = errors.New("commit is not an ancestor of the tip's first parent")

	// ErrEmptyRange indicates there are no commits between the lower bound and the tip
	ErrEmptyRange = errors.New("no commits in range")

	// ErrNotAMerge indicates the tip does not have exactly two parents
	ErrNotAMerge = errors.New("tip is not a two-parent merge")

	// ErrChainElementNotMerge indicates an intermediate commit is not a merge
	ErrChainElementNotMerge = errors.New("chain element is not a merge")

	// ErrSecondParentMismatch indicates the second-parent override has a different tree
	ErrSecondParentMismatch = errors.New("second parent tree mismatch")

	// ErrConcurrentModification indicates the target reference moved during the run
	ErrConcurrentModification = errors.New("reference was modified concurrently")

	// ErrEditAborted indicates the interactive edit was cancelled or left the message empty
	ErrEditAborted = errors.New("message edit aborted")
)

// ResolutionError represents a revision expression that could not be resolved
type ResolutionError struct {
	Rev string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q to a commit", e.Rev)
}

// Is returns true if the target error is ErrResolution
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewResolutionError creates a new ResolutionError
func NewResolutionError(rev string, err error) *ResolutionError {
	return &ResolutionError{Rev: rev, Err: err}
}

// AncestryError represents a lower bound that cannot reach the tip along first parents
type AncestryError struct {
	Commit string
	Tip    string
}

func (e *AncestryError) Error() string {
	return fmt.Sprintf("%s is not an ancestor of %s^1", e.Commit, e.Tip)
}

// Is returns true if the target error is ErrAncestry
func (e *AncestryError) Is(target error) bool {
	return target == ErrAncestry
}

// NewAncestryError creates a new AncestryError
func NewAncestryError(commit, tip string) *AncestryError {
	return &AncestryError{Commit: commit, Tip: tip}
}

// EmptyRangeError represents an empty ancestry path
type EmptyRangeError struct {
	Base string
	Tip  string
}

func (e *EmptyRangeError) Error() string {
	return fmt.Sprintf("no commits on the ancestry path %s..%s", e.Base, e.Tip)
}

// Is returns true if the target error is ErrEmptyRange
func (e *EmptyRangeError) Is(target error) bool {
	return target == ErrEmptyRange
}

// NewEmptyRangeError creates a new EmptyRangeError
func NewEmptyRangeError(base, tip string) *EmptyRangeError {
	return &EmptyRangeError{Base: base, Tip: tip}
}

// NotAMergeError represents a tip with a parent count other than two
type NotAMergeError struct {
	Commit  string
	Parents int
}

func (e *NotAMergeError) Error() string {
	return fmt.Sprintf("%s has %d parent(s); expected a merge with exactly 2", e.Commit, e.Parents)
}

// Is returns true if the target error is ErrNotAMerge
func (e *NotAMergeError) Is(target error) bool {
	return target == ErrNotAMerge
}

// NewNotAMergeError creates a new NotAMergeError
func NewNotAMergeError(commit string, parents int) *NotAMergeError {
	return &NotAMergeError{Commit: commit, Parents: parents}
}

// ChainElementNotMergeError names an intermediate commit with fewer than two parents
type ChainElementNotMergeError struct {
	Commit string
}

func (e *ChainElementNotMergeError) Error() string {
	return fmt.Sprintf("%s is in the chain but is not a merge", e.Commit)
}

// Is returns true if the target error is ErrChainElementNotMerge
func (e *ChainElementNotMergeError) Is(target error) bool {
	return target == ErrChainElementNotMerge
}

// NewChainElementNotMergeError creates a new ChainElementNotMergeError
func NewChainElementNotMergeError(commit string) *ChainElementNotMergeError {
	return &ChainElementNotMergeError{Commit: commit}
}

// SecondParentMismatchError represents an override whose tree differs from the original second parent
type SecondParentMismatchError struct {
	Override string
	Original string
}

func (e *SecondParentMismatchError) Error() string {
	return fmt.Sprintf("tree of %s differs from tree of the current second parent %s", e.Override, e.Original)
}

// Is returns true if the target error is ErrSecondParentMismatch
func (e *SecondParentMismatchError) Is(target error) bool {
	return target == ErrSecondParentMismatch
}

// NewSecondParentMismatchError creates a new SecondParentMismatchError
func NewSecondParentMismatchError(override, original string) *SecondParentMismatchError {
	return &SecondParentMismatchError{Override: override, Original: original}
}

// ConcurrentModificationError represents a failed compare-and-swap on the target reference
type ConcurrentModificationError struct {
	Ref      string
	Expected string
	Actual   string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s moved from %s to %s during the run; not updating", e.Ref, e.Expected, e.Actual)
}

// Is returns true if the target error is ErrConcurrentModification
func (e *ConcurrentModificationError) Is(target error) bool {
	return target == ErrConcurrentModification
}

// NewConcurrentModificationError creates a new ConcurrentModificationError
func NewConcurrentModificationError(ref, expected, actual string) *ConcurrentModificationError {
	return &ConcurrentModificationError{Ref: ref, Expected: expected, Actual: actual}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status of the failed command, or 1 if it never ran to completion
func (e *GitCommandError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// ExitCode maps an error to a process exit status.
// Git failures propagate git's own status; everything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var gitErr *GitCommandError
	if errors.As(err, &gitErr) {
		return gitErr.ExitCode()
	}
	return 1
}
