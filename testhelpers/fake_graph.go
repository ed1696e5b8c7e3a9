package testhelpers

import (
	"context"
	"crypto/sha1" //nolint:gosec // deterministic fake object ids, not security
	"encoding/hex"
	"fmt"
	"strings"

	mergefolderrors "mergefold.dev/mergefold/internal/errors"
	"mergefold.dev/mergefold/internal/git"
)

// FakeGraph is an in-memory commit graph implementing git.Runner.
// Commits are addressed by a name given at creation time as well as by hash.
type FakeGraph struct {
	commits map[string]git.Commit
	names   map[string]string
	refs    map[string]string

	// Created records every CommitTree call in order
	Created []git.CommitTreeOptions
	// Updates records every successful UpdateRef call as "name old->new (reason)"
	Updates []string
	// BeforeUpdateRef runs just before the compare-and-swap, to simulate another writer
	BeforeUpdateRef func(g *FakeGraph)
	// Fail makes the named method return this error
	Fail map[string]error
	// AncestorErrors makes IsAncestor fail when asked about this ancestor (name or hash)
	AncestorErrors map[string]error
}

// NewFakeGraph creates an empty graph
func NewFakeGraph() *FakeGraph {
	return &FakeGraph{
		commits: map[string]git.Commit{},
		names:   map[string]string{},
		refs:    map[string]string{},
		Fail:    map[string]error{},
	}
}

func fakeHash(seed string) string {
	sum := sha1.Sum([]byte(seed)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Commit adds a commit called name with the given message and parent names or hashes.
// Its tree is derived from name unless set later with SetTree.
func (g *FakeGraph) Commit(name, msg string, parents ...string) string {
	hash := fakeHash("commit:" + name)
	resolved := make([]string, 0, len(parents))
	for _, p := range parents {
		resolved = append(resolved, g.Hash(p))
	}
	g.commits[hash] = git.Commit{
		Hash:    hash,
		Parents: resolved,
		Tree:    fakeHash("tree:" + name),
		Author:  git.Signature{Name: "Test User", Email: "test@example.com"},
		Message: msg,
	}
	g.names[name] = hash
	return hash
}

// SetTree replaces the tree of the named commit
func (g *FakeGraph) SetTree(name, treeOf string) {
	c := g.commits[g.Hash(name)]
	c.Tree = g.commits[g.Hash(treeOf)].Tree
	g.commits[c.Hash] = c
}

// SetRef points a reference (HEAD or refs/heads/<name>) at a commit name or hash
func (g *FakeGraph) SetRef(ref, target string) {
	g.refs[ref] = g.Hash(target)
}

// Ref returns the current value of a reference
func (g *FakeGraph) Ref(ref string) string {
	return g.refs[ref]
}

// Hash returns the hash for a commit name, or s itself if it is not a known name
func (g *FakeGraph) Hash(s string) string {
	if h, ok := g.names[s]; ok {
		return h
	}
	return s
}

// Lookup returns a commit by name or hash
func (g *FakeGraph) Lookup(s string) (git.Commit, bool) {
	c, ok := g.commits[g.Hash(s)]
	return c, ok
}

func (g *FakeGraph) fail(method string) error {
	return g.Fail[method]
}

// ResolveCommit implements git.Runner
func (g *FakeGraph) ResolveCommit(_ context.Context, rev string) (string, error) {
	if err := g.fail("ResolveCommit"); err != nil {
		return "", err
	}
	if h, ok := g.refs[rev]; ok {
		return h, nil
	}
	if h, ok := g.refs["refs/heads/"+rev]; ok {
		return h, nil
	}
	if _, ok := g.commits[g.Hash(rev)]; ok {
		return g.Hash(rev), nil
	}
	return "", mergefolderrors.NewResolutionError(rev, nil)
}

// ReadRef implements git.Runner
func (g *FakeGraph) ReadRef(_ context.Context, name string) (string, error) {
	if err := g.fail("ReadRef"); err != nil {
		return "", err
	}
	h, ok := g.refs[name]
	if !ok {
		return "", mergefolderrors.NewResolutionError(name, nil)
	}
	return h, nil
}

// IsAncestor implements git.Runner
func (g *FakeGraph) IsAncestor(_ context.Context, ancestor, descendant string) (bool, error) {
	if err := g.fail("IsAncestor"); err != nil {
		return false, err
	}
	for name, err := range g.AncestorErrors {
		if g.Hash(name) == g.Hash(ancestor) {
			return false, err
		}
	}
	return g.reachable(g.Hash(ancestor), g.Hash(descendant)), nil
}

func (g *FakeGraph) reachable(ancestor, descendant string) bool {
	seen := map[string]bool{}
	stack := []string{descendant}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == ancestor {
			return true
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		stack = append(stack, g.commits[h].Parents...)
	}
	return false
}

// GetCommit implements git.Runner
func (g *FakeGraph) GetCommit(_ context.Context, hash string) (git.Commit, error) {
	if err := g.fail("GetCommit"); err != nil {
		return git.Commit{}, err
	}
	c, ok := g.commits[g.Hash(hash)]
	if !ok {
		return git.Commit{}, fmt.Errorf("unknown commit %s", hash)
	}
	return c, nil
}

// AncestryPath implements git.Runner. Commits are ordered so that every commit
// precedes its parents, starting from tip.
func (g *FakeGraph) AncestryPath(_ context.Context, base, tip string) ([]git.Commit, error) {
	if err := g.fail("AncestryPath"); err != nil {
		return nil, err
	}
	base, tip = g.Hash(base), g.Hash(tip)

	var postOrder []string
	visited := map[string]bool{}
	var visit func(h string)
	visit = func(h string) {
		if visited[h] {
			return
		}
		visited[h] = true
		for _, p := range g.commits[h].Parents {
			visit(p)
		}
		postOrder = append(postOrder, h)
	}
	visit(tip)

	var out []git.Commit
	for i := len(postOrder) - 1; i >= 0; i-- {
		h := postOrder[i]
		if h == base || g.reachable(h, base) || !g.reachable(base, h) {
			continue
		}
		out = append(out, g.commits[h])
	}
	return out, nil
}

// TreeOf implements git.Runner
func (g *FakeGraph) TreeOf(ctx context.Context, commit string) (string, error) {
	c, err := g.GetCommit(ctx, commit)
	if err != nil {
		return "", err
	}
	return c.Tree, nil
}

// Describe implements git.Runner
func (g *FakeGraph) Describe(ctx context.Context, commit string) (string, error) {
	c, err := g.GetCommit(ctx, commit)
	if err != nil {
		return "", err
	}
	return c.ShortHash() + " " + c.Subject(), nil
}

// CommitTree implements git.Runner
func (g *FakeGraph) CommitTree(_ context.Context, opts git.CommitTreeOptions) (string, error) {
	if err := g.fail("CommitTree"); err != nil {
		return "", err
	}
	g.Created = append(g.Created, opts)
	hash := fakeHash(fmt.Sprintf("created:%d", len(g.Created)))
	g.commits[hash] = git.Commit{
		Hash:    hash,
		Parents: append([]string{}, opts.Parents...),
		Tree:    opts.Tree,
		Author:  opts.Author,
		Message: opts.Message,
	}
	return hash, nil
}

// UpdateRef implements git.Runner with compare-and-swap semantics
func (g *FakeGraph) UpdateRef(_ context.Context, name, newHash, oldHash, reason string) error {
	if g.BeforeUpdateRef != nil {
		g.BeforeUpdateRef(g)
	}
	if err := g.fail("UpdateRef"); err != nil {
		return err
	}
	current := g.refs[name]
	if current != oldHash {
		return mergefolderrors.NewConcurrentModificationError(name, oldHash, current)
	}
	g.refs[name] = newHash
	g.Updates = append(g.Updates, fmt.Sprintf("%s %s->%s (%s)", name,
		git.ShortHash(oldHash), git.ShortHash(newHash), strings.TrimSpace(reason)))
	return nil
}

var _ git.Runner = (*FakeGraph)(nil)
