// Package actions provides the collapse pipeline behind git-mergefold.
//
// A run resolves the target reference and the chain's lower bound, validates
// that everything between them is a chain of merges, audits which parents
// would drop out of history, consolidates the commit messages, and finally
// writes one replacement merge commit and moves the reference onto it.
//
// Key patterns:
//   - Actions accept runtime.Context which provides the git Runner and repository config
//   - Actions never print; warnings come back as Diagnostics for the caller to present
//   - Every read happens before the single write, so a failure leaves the reference untouched
package actions
