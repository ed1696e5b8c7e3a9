// Package runtime provides the execution context for git-mergefold commands.
//
// It encapsulates shared dependencies and configuration needed by actions,
// such as the git runner, logger, and repository config.
package runtime
