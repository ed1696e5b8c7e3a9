package actions

import (
	"context"

	mergefolderrors "mergefold.dev/mergefold/internal/errors"
	"mergefold.dev/mergefold/internal/git"
)

// ValidateChain checks that chain, tip first, is a chain of merges:
// the tip has exactly two parents and every other element at least two.
func ValidateChain(chain []git.Commit) error {
	if len(chain) == 0 {
		return mergefolderrors.ErrEmptyRange
	}
	tip := chain[0]
	if len(tip.Parents) != 2 {
		return mergefolderrors.NewNotAMergeError(tip.Hash, len(tip.Parents))
	}
	for _, c := range chain[1:] {
		if len(c.Parents) < 2 {
			return mergefolderrors.NewChainElementNotMergeError(c.Hash)
		}
	}
	return nil
}

// checkSecondParent compares the override's tree with the tip's current second parent.
// It returns whether they match; a mismatch is an error unless force is set.
func checkSecondParent(ctx context.Context, runner git.Runner, override, original string, force bool) (bool, []Diagnostic, error) {
	overrideTree, err := runner.TreeOf(ctx, override)
	if err != nil {
		return false, nil, err
	}
	originalTree, err := runner.TreeOf(ctx, original)
	if err != nil {
		return false, nil, err
	}
	if overrideTree == originalTree {
		return true, nil, nil
	}

	mismatch := mergefolderrors.NewSecondParentMismatchError(override, original)
	if !force {
		return false, nil, mismatch
	}
	return false, []Diagnostic{{
		Kind:    DiagSecondParentMismatch,
		Commit:  override,
		Message: mismatch.Error() + " (continuing because of --force)",
	}}, nil
}
