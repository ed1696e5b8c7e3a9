// Package config loads git-mergefold settings.
//
// It handles:
//   - The per-repository TOML file under the git directory
//   - Environment overrides for the log file location
package config
