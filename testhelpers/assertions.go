// Package testhelpers provides testing utilities for git-mergefold,
// including a scene system, Git repository helpers, an in-memory commit
// graph and custom assertions.
package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectParents asserts the ordered parents of rev, given as revisions.
func ExpectParents(t *testing.T, repo *GitRepo, rev string, expected ...string) {
	t.Helper()

	want := make([]string, 0, len(expected))
	for _, e := range expected {
		hash, err := repo.GetRevision(e)
		require.NoError(t, err, "Failed to resolve %s", e)
		want = append(want, hash)
	}

	parents, err := repo.GetParents(rev)
	require.NoError(t, err, "Failed to read parents of %s", rev)
	require.Equal(t, want, parents, "Parents of %s do not match", rev)
}

// ExpectMessage asserts the exact raw message of rev.
func ExpectMessage(t *testing.T, repo *GitRepo, rev, expected string) {
	t.Helper()

	message, err := repo.GetMessage(rev)
	require.NoError(t, err, "Failed to read message of %s", rev)
	require.Equal(t, expected, message, "Message of %s does not match", rev)
}

// ExpectSameTree asserts that two revisions have the same tree.
func ExpectSameTree(t *testing.T, repo *GitRepo, a, b string) {
	t.Helper()

	treeA, err := repo.GetTree(a)
	require.NoError(t, err)
	treeB, err := repo.GetTree(b)
	require.NoError(t, err)
	require.Equal(t, treeA, treeB, "Trees of %s and %s differ", a, b)
}
