package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the config file inside the git directory
const FileName = "mergefold.toml"

// DefaultReflogMessage is used for the reflog entry when none is configured.
// %s is replaced by the short hash of the chain's lower bound.
const DefaultReflogMessage = "mergefold: collapse merges onto %s"

// RepoConfig represents the repository configuration
type RepoConfig struct {
	LogFile       *string `toml:"log_file,omitempty"`
	ReflogMessage *string `toml:"reflog_message,omitempty"`

	gitDir string
}

// Load reads $GIT_DIR/mergefold.toml. A missing file yields the defaults.
func Load(gitDir string) (*RepoConfig, error) {
	cfg := &RepoConfig{gitDir: gitDir}
	if gitDir == "" {
		return cfg, nil
	}

	path := filepath.Join(gitDir, FileName)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// GetLogFilePath returns the log file path, or "" when file logging is off.
// MERGEFOLD_LOG_FILE takes precedence; relative paths resolve against the git directory.
func (c *RepoConfig) GetLogFilePath() string {
	path := os.Getenv("MERGEFOLD_LOG_FILE")
	if path == "" && c.LogFile != nil {
		path = *c.LogFile
	}
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) && c.gitDir != "" {
		path = filepath.Join(c.gitDir, path)
	}
	return path
}

// GetReflogMessage returns the reflog message for an update onto base
func (c *RepoConfig) GetReflogMessage(base string) string {
	format := DefaultReflogMessage
	if c.ReflogMessage != nil && *c.ReflogMessage != "" {
		format = *c.ReflogMessage
	}
	return strings.Replace(format, "%s", base, 1)
}
