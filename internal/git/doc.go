// Package git provides the repository operations the collapse pipeline needs.
//
// Runner is the narrow capability interface used by the rest of the program:
//   - resolving revisions and reading references
//   - ancestry checks and ancestry-path enumeration
//   - reading commit parents, trees, authors and raw messages
//   - writing a commit object and moving a reference with compare-and-swap
//
// Plumbing that git does best (rev-parse, rev-list, commit-tree, update-ref) runs
// through the git binary; commit objects are read with go-git.
// This package should be the only place where direct git commands are executed.
package git
