package actions

import (
	"fmt"
)

// DiagnosticKind classifies a non-fatal finding
type DiagnosticKind int

const (
	// DiagSecondParentMismatch is a forced second-parent override whose tree differs
	DiagSecondParentMismatch DiagnosticKind = iota
	// DiagUnreachableParent is a parent that will no longer be reachable after the collapse
	DiagUnreachableParent
	// DiagAuditSkipped is a parent whose reachability could not be determined
	DiagAuditSkipped
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagSecondParentMismatch:
		return "second-parent-mismatch"
	case DiagUnreachableParent:
		return "unreachable-parent"
	case DiagAuditSkipped:
		return "audit-skipped"
	default:
		return fmt.Sprintf("diagnostic(%d)", int(k))
	}
}

// Diagnostic is a warning produced while planning a collapse
type Diagnostic struct {
	Kind    DiagnosticKind
	Commit  string
	Message string
}

func (d Diagnostic) String() string {
	return d.Message
}

// CollapseOptions are options for the collapse command
type CollapseOptions struct {
	// Commit is the revision of the chain's lower bound; it becomes the new first parent
	Commit string
	// Branch names the branch to rewrite; empty means HEAD
	Branch string
	// SecondParent overrides the new merge's second parent
	SecondParent string
	// OctopusParents are appended after the second parent as given
	OctopusParents []string
	// MessageCommit names a commit whose raw message is used verbatim
	MessageCommit string
	// Edit opens the consolidated message in Editor before committing
	Edit bool
	// Force downgrades a second-parent tree mismatch to a warning
	Force bool
	// DryRun creates the commit but leaves the reference alone
	DryRun bool
	// Editor edits a message interactively; required when Edit is set
	Editor func(message string) (string, error)
}

// CollapseResult describes a finished or planned collapse
type CollapseResult struct {
	Ref         string
	OldTip      string
	Base        string
	Merges      int
	NewCommit   string
	Message     string
	Updated     bool
	Diagnostics []Diagnostic
}
