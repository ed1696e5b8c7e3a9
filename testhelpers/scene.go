package testhelpers

import (
	"fmt"
	"os"
	"testing"
)

// Scene represents a test scene with a temporary directory and Git repository.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and Git repository.
// The directory is removed on cleanup unless DEBUG is set.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mergefold-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		if os.Getenv("DEBUG") == "" {
			_ = os.RemoveAll(tmpDir)
		}
	})

	repo, err := NewGitRepo(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:  tmpDir,
		Repo: repo,
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// UpstreamMergeMessages are the messages UpstreamMergeSceneSetup gives its merges, oldest first.
var UpstreamMergeMessages = []string{
	"Merge branch 'main' into feature\n\n# Conflicts:\n#\tfile1.txt\n",
	"Merge branch 'main' into feature\n\n# Conflicts:\n#\tfile2.txt\n#\tfile1.txt\n",
	"merge\n",
}

// UpstreamMergeSceneSetup builds a feature branch that merged main once per
// UpstreamMergeMessages entry, leaving feature checked out:
//
//	root - main1 - main2 - main3        (main)
//	   \       \       \       \
//	    base -- m1 ---- m2 ---- m3      (feature, HEAD)
//
// The commit the chain starts from is tagged "base".
func UpstreamMergeSceneSetup(scene *Scene) error {
	repo := scene.Repo
	if err := repo.CreateChangeAndCommit("root", "root"); err != nil {
		return err
	}
	if err := repo.CreateAndCheckoutBranch("feature"); err != nil {
		return err
	}
	if err := repo.CreateChangeAndCommit("feature work", "feature"); err != nil {
		return err
	}
	if err := repo.Tag("base"); err != nil {
		return err
	}

	for i, message := range UpstreamMergeMessages {
		if err := repo.CheckoutBranch("main"); err != nil {
			return err
		}
		if err := repo.CreateChangeAndCommit(fmt.Sprintf("main %d", i+1), fmt.Sprintf("main%d", i+1)); err != nil {
			return err
		}
		if err := repo.CheckoutBranch("feature"); err != nil {
			return err
		}
		if err := repo.MergeWithMessage("main", message); err != nil {
			return err
		}
	}
	return nil
}
