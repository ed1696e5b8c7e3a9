// Package cli wires the git-mergefold command line onto the collapse action.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mergefold.dev/mergefold/internal/actions"
	"mergefold.dev/mergefold/internal/git"
	"mergefold.dev/mergefold/internal/runtime"
	"mergefold.dev/mergefold/internal/tui"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	var (
		opts    actions.CollapseOptions
		verbose int
		dir     string
	)

	rootCmd := &cobra.Command{
		Use:   "git-mergefold [options] <commit>",
		Short: "Collapse a chain of merge commits into a single merge",
		Long: `Replace the linear chain of merge commits between <commit> and the tip of
the current branch with one merge commit.

The new commit keeps the tip's tree and author. Its first parent is <commit>,
its second parent is the tip's second parent, and its message is the tip's
message with the "# Conflicts:" entries of every replaced merge combined.

Parents of replaced merges that cannot be reached from the new second parent
are reported as warnings, since they drop out of history.`,
		Example: `  git mergefold main@{1}
  git mergefold -n -b feature v1.2.0
  git mergefold --second-parent upstream/main --force HEAD~3`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Usage is only useful for argument errors
			cmd.SilenceUsage = true

			ctx, err := runtime.GetContext(cmd.Context(), runtime.Options{Dir: dir, Verbose: verbose})
			if err != nil {
				return err
			}
			defer func() { _ = ctx.Splog.Close() }()

			opts.Commit = args[0]
			if opts.Edit {
				opts.Editor = tui.NewMessageEditor(dir)
			}

			result, err := actions.CollapseAction(ctx, opts)
			if result != nil {
				printDiagnostics(ctx.Splog, result.Diagnostics)
			}
			if err != nil {
				return err
			}
			printResult(ctx.Splog, result, opts.DryRun)
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&opts.Edit, "edit", "e", false, "Edit the consolidated message before committing")
	flags.StringVarP(&opts.Branch, "branch", "b", "", "Operate on the named branch instead of HEAD")
	flags.StringVarP(&opts.SecondParent, "second-parent", "s", "", "Use this commit as the new merge's second parent")
	flags.StringArrayVarP(&opts.OctopusParents, "octopus-parent", "o", nil, "Append an additional parent (repeatable)")
	flags.StringVarP(&opts.MessageCommit, "message-commit", "m", "", "Use this commit's message verbatim")
	flags.BoolVarP(&opts.Force, "force", "f", false, "Continue when the second parent's tree differs from the tip's")
	flags.BoolVarP(&opts.DryRun, "dry-run", "n", false, "Create the commit and print its id without updating the reference")
	flags.CountVarP(&verbose, "verbose", "v", "Trace git invocations (repeat for output)")
	flags.StringVarP(&dir, "directory", "C", "", "Run as if started in this directory")

	rootCmd.SetVersionTemplate("git-mergefold {{.Version}}\n")

	return rootCmd
}

func printDiagnostics(splog *tui.Splog, diags []actions.Diagnostic) {
	for _, d := range diags {
		splog.Warn("%s", d.Message)
	}
}

func printResult(splog *tui.Splog, result *actions.CollapseResult, dryRun bool) {
	if dryRun {
		splog.Result(result.NewCommit)
		return
	}
	splog.Debug("Collapsed %d merge(s) onto %s: %s is now %s",
		result.Merges, splog.Hash(git.ShortHash(result.Base)), result.Ref, splog.Hash(git.ShortHash(result.NewCommit)))
}
