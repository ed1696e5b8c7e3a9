package actions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"mergefold.dev/mergefold/internal/actions"
	mergefolderrors "mergefold.dev/mergefold/internal/errors"
	"mergefold.dev/mergefold/internal/git"
	"mergefold.dev/mergefold/internal/runtime"
	"mergefold.dev/mergefold/testhelpers"
)

// upstreamChain builds a feature branch that merged main three times:
//
//	M0 - M1 - M2 - M3          (main)
//	  \    \    \    \
//	   F0 - B -- C -- TIP      (feature, HEAD)
func upstreamChain(t *testing.T) *testhelpers.FakeGraph {
	t.Helper()
	g := testhelpers.NewFakeGraph()
	g.Commit("M0", "root\n")
	g.Commit("M1", "main 1\n", "M0")
	g.Commit("M2", "main 2\n", "M1")
	g.Commit("M3", "main 3\n", "M2")
	g.Commit("F0", "feature work\n", "M0")
	g.Commit("B", "fix\n\n# Conflicts:\n#\tfile1.txt\n", "F0", "M1")
	g.Commit("C", "fix2\n\n# Conflicts:\n#\tfile2.txt\n", "B", "M2")
	g.Commit("TIP", "merge\n", "C", "M3")
	g.SetRef("HEAD", "TIP")
	g.SetRef("refs/heads/feature", "TIP")
	return g
}

func newContext(g *testhelpers.FakeGraph) *runtime.Context {
	return runtime.NewContext(context.Background(), g, nil)
}

func TestCollapseAction(t *testing.T) {
	t.Run("collapses the chain and consolidates conflicts", func(t *testing.T) {
		g := upstreamChain(t)

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		require.NoError(t, err)
		require.True(t, result.Updated)
		require.Empty(t, result.Diagnostics)
		require.Equal(t, "merge\n\n# Conflicts:\n#\tfile1.txt\n#\tfile2.txt\n", result.Message)

		require.Len(t, g.Created, 1)
		created := g.Created[0]
		tip, _ := g.Lookup("TIP")
		require.Equal(t, tip.Tree, created.Tree)
		require.Equal(t, []string{g.Hash("F0"), g.Hash("M3")}, created.Parents)
		require.Equal(t, tip.Author, created.Author)

		require.Equal(t, result.NewCommit, g.Ref("HEAD"))
		require.Len(t, g.Updates, 1)
		require.Contains(t, g.Updates[0], "mergefold: collapse merges onto "+git.ShortHash(g.Hash("F0")))
	})

	t.Run("without conflicts the message is the trimmed tip message", func(t *testing.T) {
		g := testhelpers.NewFakeGraph()
		g.Commit("M0", "root\n")
		g.Commit("M1", "main 1\n", "M0")
		g.Commit("M2", "main 2\n", "M1")
		g.Commit("F0", "feature\n", "M0")
		g.Commit("B", "Merge branch 'main'\n", "F0", "M1")
		g.Commit("TIP", "Merge branch 'main' into feature\n\nAgain.\n\n", "B", "M2")
		g.SetRef("HEAD", "TIP")

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		require.NoError(t, err)
		require.Equal(t, "Merge branch 'main' into feature\n\nAgain.", result.Message)
	})

	t.Run("tip with one parent aborts before creating a commit", func(t *testing.T) {
		g := upstreamChain(t)
		g.Commit("LINEAR", "plain commit\n", "TIP")
		g.SetRef("HEAD", "LINEAR")

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		require.ErrorIs(t, err, mergefolderrors.ErrNotAMerge)
		require.Empty(t, g.Created)
		require.Equal(t, g.Hash("LINEAR"), g.Ref("HEAD"))
	})

	t.Run("root tip aborts as not a merge", func(t *testing.T) {
		g := upstreamChain(t)
		g.SetRef("HEAD", "M0")

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		var notMerge *mergefolderrors.NotAMergeError
		require.ErrorAs(t, err, &notMerge)
		require.Equal(t, 0, notMerge.Parents)
		require.Empty(t, g.Created)
	})

	t.Run("octopus tip aborts as not a merge", func(t *testing.T) {
		g := upstreamChain(t)
		g.Commit("OCTO", "octopus\n", "C", "M3", "M1")
		g.SetRef("HEAD", "OCTO")

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		require.ErrorIs(t, err, mergefolderrors.ErrNotAMerge)
		require.Empty(t, g.Created)
	})

	t.Run("non-merge inside the chain is named", func(t *testing.T) {
		g := upstreamChain(t)
		g.Commit("PLAIN", "plain\n", "F0")
		g.Commit("TIP2", "merge\n", "PLAIN", "M3")
		g.SetRef("HEAD", "TIP2")

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		var chainErr *mergefolderrors.ChainElementNotMergeError
		require.ErrorAs(t, err, &chainErr)
		require.Equal(t, g.Hash("PLAIN"), chainErr.Commit)
		require.Empty(t, g.Created)
	})

	t.Run("lower bound off the first-parent history aborts without side effects", func(t *testing.T) {
		g := upstreamChain(t)
		g.Commit("X", "unrelated\n", "M0")

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "X"})
		require.ErrorIs(t, err, mergefolderrors.ErrAncestry)
		require.Empty(t, g.Created)
		require.Equal(t, g.Hash("TIP"), g.Ref("HEAD"))
	})

	t.Run("unknown revision is a resolution error", func(t *testing.T) {
		g := upstreamChain(t)

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "nope"})
		require.ErrorIs(t, err, mergefolderrors.ErrResolution)
	})

	t.Run("unknown branch is a resolution error", func(t *testing.T) {
		g := upstreamChain(t)

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", Branch: "missing"})
		require.ErrorIs(t, err, mergefolderrors.ErrResolution)
	})

	t.Run("dry run creates the commit but leaves the reference alone", func(t *testing.T) {
		g := upstreamChain(t)

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", DryRun: true})
		require.NoError(t, err)
		require.False(t, result.Updated)
		require.NotEmpty(t, result.NewCommit)
		require.Len(t, g.Created, 1)
		require.Empty(t, g.Updates)
		require.Equal(t, g.Hash("TIP"), g.Ref("HEAD"))
	})

	t.Run("dry run leaves the reference alone on failure too", func(t *testing.T) {
		g := upstreamChain(t)
		g.Fail["CommitTree"] = errors.New("disk full")

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", DryRun: true})
		require.Error(t, err)
		require.Empty(t, g.Updates)
		require.Equal(t, g.Hash("TIP"), g.Ref("HEAD"))
	})

	t.Run("message commit is used verbatim", func(t *testing.T) {
		g := upstreamChain(t)
		raw := "Custom message\n\n# Conflicts:\n#\tother.txt\n\n\ntrailing text\n"
		g.Commit("MSG", raw, "M0")

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", MessageCommit: "MSG"})
		require.NoError(t, err)
		require.Equal(t, raw, result.Message)
		require.Equal(t, raw, g.Created[0].Message)
	})

	t.Run("branch option updates the branch and not HEAD", func(t *testing.T) {
		g := upstreamChain(t)
		g.SetRef("HEAD", "M3")

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", Branch: "feature"})
		require.NoError(t, err)
		require.Equal(t, "refs/heads/feature", result.Ref)
		require.Equal(t, result.NewCommit, g.Ref("refs/heads/feature"))
		require.Equal(t, g.Hash("M3"), g.Ref("HEAD"))
	})

	t.Run("concurrent change to the reference is rejected and preserved", func(t *testing.T) {
		g := upstreamChain(t)
		g.BeforeUpdateRef = func(g *testhelpers.FakeGraph) {
			g.SetRef("HEAD", "M2")
		}

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		require.ErrorIs(t, err, mergefolderrors.ErrConcurrentModification)
		require.False(t, result.Updated)
		require.Equal(t, g.Hash("M2"), g.Ref("HEAD"))
	})

	t.Run("octopus parents are appended as given", func(t *testing.T) {
		g := upstreamChain(t)

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{
			Commit:         "F0",
			OctopusParents: []string{"some-topic", "0123abc"},
		})
		require.NoError(t, err)
		require.Equal(t, []string{g.Hash("F0"), g.Hash("M3"), "some-topic", "0123abc"}, g.Created[0].Parents)
	})

	t.Run("git failures propagate and leave the reference alone", func(t *testing.T) {
		g := upstreamChain(t)
		gitErr := mergefolderrors.NewGitCommandError("git", []string{"commit-tree"}, "", "fatal", errors.New("exit status 128"))
		g.Fail["CommitTree"] = gitErr

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		require.ErrorIs(t, err, gitErr)
		require.Equal(t, g.Hash("TIP"), g.Ref("HEAD"))
	})
}

func TestCollapseActionSecondParent(t *testing.T) {
	t.Run("override with the same tree is accepted", func(t *testing.T) {
		g := upstreamChain(t)
		g.Commit("M3b", "main 3 rebuilt\n", "M2")
		g.SetTree("M3b", "M3")

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", SecondParent: "M3b"})
		require.NoError(t, err)
		require.Empty(t, result.Diagnostics)
		require.Equal(t, []string{g.Hash("F0"), g.Hash("M3b")}, g.Created[0].Parents)
	})

	t.Run("override with a different tree is fatal", func(t *testing.T) {
		g := upstreamChain(t)

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", SecondParent: "M2"})
		require.ErrorIs(t, err, mergefolderrors.ErrSecondParentMismatch)
		require.Empty(t, g.Created)
		require.Equal(t, g.Hash("TIP"), g.Ref("HEAD"))
	})

	t.Run("force downgrades a mismatch to a warning", func(t *testing.T) {
		g := upstreamChain(t)

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", SecondParent: "M2", Force: true})
		require.NoError(t, err)
		require.Len(t, result.Diagnostics, 1)
		require.Equal(t, actions.DiagSecondParentMismatch, result.Diagnostics[0].Kind)
		require.Equal(t, []string{g.Hash("F0"), g.Hash("M2")}, g.Created[0].Parents)
	})

	t.Run("unresolvable override is a resolution error", func(t *testing.T) {
		g := upstreamChain(t)

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", SecondParent: "nope"})
		require.ErrorIs(t, err, mergefolderrors.ErrResolution)
		require.Empty(t, g.Created)
	})
}

func TestCollapseActionReachability(t *testing.T) {
	t.Run("parents that cannot be checked are reported and the run continues", func(t *testing.T) {
		g := upstreamChain(t)
		g.AncestorErrors = map[string]error{"M1": errors.New("missing object")}

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		require.NoError(t, err)
		require.True(t, result.Updated)
		require.Len(t, result.Diagnostics, 1)
		d := result.Diagnostics[0]
		require.Equal(t, actions.DiagAuditSkipped, d.Kind)
		require.Equal(t, g.Hash("M1"), d.Commit)
		require.Contains(t, d.Message, "missing object")
	})

	t.Run("cancellation still stops the audit", func(t *testing.T) {
		g := upstreamChain(t)
		g.AncestorErrors = map[string]error{"M1": context.Canceled}
		chain, err := g.AncestryPath(context.Background(), "F0", "TIP")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = actions.AuditReachability(ctx, g, chain, g.Hash("F0"), g.Hash("M3"))
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("parents lost by the collapse are reported but do not abort", func(t *testing.T) {
		g := upstreamChain(t)
		g.Commit("HOTFIX", "hotfix\n\nlonger body\n", "M0")
		g.Commit("C2", "merge hotfix\n", "B", "HOTFIX")
		g.Commit("TIP2", "merge main\n", "C2", "M3")
		g.SetRef("HEAD", "TIP2")

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0"})
		require.NoError(t, err)
		require.True(t, result.Updated)
		require.Len(t, result.Diagnostics, 1)
		d := result.Diagnostics[0]
		require.Equal(t, actions.DiagUnreachableParent, d.Kind)
		require.Equal(t, g.Hash("HOTFIX"), d.Commit)
		require.Contains(t, d.Message, git.ShortHash(g.Hash("HOTFIX"))+" hotfix")
	})

	t.Run("forced mismatch audits against the original second parent", func(t *testing.T) {
		g := upstreamChain(t)

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", SecondParent: "M1", Force: true})
		require.NoError(t, err)
		for _, d := range result.Diagnostics {
			require.NotEqual(t, actions.DiagUnreachableParent, d.Kind, d.Message)
		}
	})

	t.Run("consistent override is the audit target", func(t *testing.T) {
		g := upstreamChain(t)
		g.Commit("M3b", "main 3 rebuilt\n", "M0")
		g.SetTree("M3b", "M3")

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{Commit: "F0", SecondParent: "M3b"})
		require.NoError(t, err)
		var lost []string
		for _, d := range result.Diagnostics {
			lost = append(lost, d.Commit)
		}
		require.ElementsMatch(t, []string{g.Hash("M1"), g.Hash("M2"), g.Hash("M3")}, lost)
	})
}

func TestCollapseActionEdit(t *testing.T) {
	t.Run("edited message is committed", func(t *testing.T) {
		g := upstreamChain(t)
		var seen string

		result, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{
			Commit: "F0",
			Edit:   true,
			Editor: func(msg string) (string, error) {
				seen = msg
				return "edited\n", nil
			},
		})
		require.NoError(t, err)
		require.Equal(t, "merge\n\n# Conflicts:\n#\tfile1.txt\n#\tfile2.txt\n", seen)
		require.Equal(t, "edited\n", result.Message)
		require.Equal(t, "edited\n", g.Created[0].Message)
	})

	t.Run("cancelled edit aborts without side effects", func(t *testing.T) {
		g := upstreamChain(t)

		_, err := actions.CollapseAction(newContext(g), actions.CollapseOptions{
			Commit: "F0",
			Edit:   true,
			Editor: func(string) (string, error) {
				return "", mergefolderrors.ErrEditAborted
			},
		})
		require.ErrorIs(t, err, mergefolderrors.ErrEditAborted)
		require.Empty(t, g.Created)
		require.Equal(t, g.Hash("TIP"), g.Ref("HEAD"))
	})
}

func TestValidateChain(t *testing.T) {
	merge := func(hash string) git.Commit {
		return git.Commit{Hash: hash, Parents: []string{"p1", "p2"}}
	}

	require.ErrorIs(t, actions.ValidateChain(nil), mergefolderrors.ErrEmptyRange)
	require.NoError(t, actions.ValidateChain([]git.Commit{merge("tip")}))
	require.NoError(t, actions.ValidateChain([]git.Commit{
		merge("tip"),
		{Hash: "octopus", Parents: []string{"a", "b", "c"}},
	}))
	require.ErrorIs(t, actions.ValidateChain([]git.Commit{
		{Hash: "tip", Parents: []string{"a", "b", "c"}},
	}), mergefolderrors.ErrNotAMerge)
	require.ErrorIs(t, actions.ValidateChain([]git.Commit{
		merge("tip"),
		{Hash: "plain", Parents: []string{"a"}},
	}), mergefolderrors.ErrChainElementNotMerge)
}
