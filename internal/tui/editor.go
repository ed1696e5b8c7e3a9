package tui

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	mergefolderrors "mergefold.dev/mergefold/internal/errors"
)

// ResolveEditor returns the editor command git would use in the repository at dir:
// GIT_EDITOR, then core.editor, then VISUAL, then EDITOR, then vi.
func ResolveEditor(dir string) string {
	if editor := os.Getenv("GIT_EDITOR"); editor != "" {
		return editor
	}
	args := []string{"config", "--get", "core.editor"}
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	output, err := exec.Command("git", args...).Output()
	if err == nil {
		if editor := strings.TrimSpace(string(output)); editor != "" {
			return editor
		}
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}

// NewMessageEditor returns an EditMessage bound to the repository at dir
func NewMessageEditor(dir string) func(string) (string, error) {
	return func(initial string) (string, error) {
		return EditMessage(dir, initial)
	}
}

// EditMessage opens the user's editor on initial and returns the edited text.
// An interrupted prompt or a blank result returns ErrEditAborted.
func EditMessage(dir, initial string) (string, error) {
	if !IsInteractive() {
		return "", fmt.Errorf("%w: editing the message needs a terminal", mergefolderrors.ErrEditAborted)
	}

	prompt := &survey.Editor{
		Message:       "Merge commit message",
		Default:       initial,
		HideDefault:   true,
		AppendDefault: true,
		Editor:        ResolveEditor(dir),
		FileName:      "MERGEFOLD_EDITMSG-*",
	}

	var edited string
	err := survey.AskOne(prompt, &edited, survey.WithStdio(os.Stdin, os.Stderr, os.Stderr))
	if err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", mergefolderrors.ErrEditAborted
		}
		return "", fmt.Errorf("editor failed: %w", err)
	}

	if strings.TrimSpace(edited) == "" {
		return "", fmt.Errorf("%w: empty message", mergefolderrors.ErrEditAborted)
	}
	return edited, nil
}
