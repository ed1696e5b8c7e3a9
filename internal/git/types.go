package git

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Signature identifies the author of a commit
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// IsZero reports whether the signature carries no identity
func (s Signature) IsZero() bool {
	return s.Name == "" && s.Email == "" && s.When.IsZero()
}

// Env returns the GIT_AUTHOR_* variables that make git record this signature.
func (s Signature) Env() []string {
	if s.IsZero() {
		return nil
	}
	env := []string{
		"GIT_AUTHOR_NAME=" + s.Name,
		"GIT_AUTHOR_EMAIL=" + s.Email,
	}
	if !s.When.IsZero() {
		env = append(env, fmt.Sprintf("GIT_AUTHOR_DATE=%d %s", s.When.Unix(), s.When.Format("-0700")))
	}
	return env
}

// Commit is an immutable commit object as seen by the collapse pipeline
type Commit struct {
	Hash    string
	Parents []string
	Tree    string
	Author  Signature
	Message string // raw message, byte for byte
}

// Subject returns the first line of the commit message
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return strings.TrimSpace(subject)
}

// ShortHash returns the abbreviated commit hash
func (c Commit) ShortHash() string {
	return ShortHash(c.Hash)
}

// ShortHash abbreviates a full hash to seven characters
func ShortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

// CommitTreeOptions describes a commit object to create without touching any ref
type CommitTreeOptions struct {
	Tree    string
	Parents []string
	Message string
	Author  Signature
}

// RefName returns the full reference a run operates on.
// An empty branch means HEAD.
func RefName(branch string) string {
	switch {
	case branch == "":
		return "HEAD"
	case strings.HasPrefix(branch, "refs/"):
		return branch
	default:
		return "refs/heads/" + branch
	}
}

// Runner is the narrow set of repository capabilities the collapse pipeline needs.
// The real implementation drives git; tests use an in-memory graph.
type Runner interface {
	// ResolveCommit resolves a revision expression to a full commit hash.
	ResolveCommit(ctx context.Context, rev string) (string, error)
	// ReadRef returns the commit a reference currently points at.
	ReadRef(ctx context.Context, name string) (string, error)
	// IsAncestor reports whether ancestor is reachable from descendant.
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
	// GetCommit loads a single commit by hash.
	GetCommit(ctx context.Context, hash string) (Commit, error)
	// AncestryPath lists commits on the ancestry path base..tip, topologically, tip first.
	AncestryPath(ctx context.Context, base, tip string) ([]Commit, error)
	// TreeOf returns the tree hash of a commit.
	TreeOf(ctx context.Context, commit string) (string, error)
	// Describe returns a one-line description of a commit.
	Describe(ctx context.Context, commit string) (string, error)
	// CommitTree creates a commit object and returns its hash.
	CommitTree(ctx context.Context, opts CommitTreeOptions) (string, error)
	// UpdateRef moves name from oldHash to newHash, failing if it no longer points at oldHash.
	UpdateRef(ctx context.Context, name, newHash, oldHash, reason string) error
}
