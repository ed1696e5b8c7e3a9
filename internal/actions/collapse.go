package actions

import (
	"fmt"

	"mergefold.dev/mergefold/internal/config"
	mergefolderrors "mergefold.dev/mergefold/internal/errors"
	"mergefold.dev/mergefold/internal/git"
	"mergefold.dev/mergefold/internal/message"
	"mergefold.dev/mergefold/internal/runtime"
)

// Plan is everything read from the repository before anything is written
type Plan struct {
	Ref     string
	OldTip  string
	Base    string
	Tip     git.Commit
	Chain   []git.Commit
	Parents []string
	Message string

	Diagnostics []Diagnostic
}

// CollapseAction replaces the chain of merges between opts.Commit and the target
// reference with a single merge commit. Diagnostics gathered before a failure are
// returned alongside the error.
func CollapseAction(ctx *runtime.Context, opts CollapseOptions) (*CollapseResult, error) {
	plan, err := BuildPlan(ctx, opts)
	if plan == nil {
		return nil, err
	}

	result := &CollapseResult{
		Ref:         plan.Ref,
		OldTip:      plan.OldTip,
		Base:        plan.Base,
		Merges:      len(plan.Chain),
		Message:     plan.Message,
		Diagnostics: plan.Diagnostics,
	}
	if err != nil {
		return result, err
	}

	if opts.Edit {
		if opts.Editor == nil {
			return result, fmt.Errorf("%w: no editor available", mergefolderrors.ErrEditAborted)
		}
		edited, err := opts.Editor(plan.Message)
		if err != nil {
			return result, err
		}
		plan.Message = edited
		result.Message = edited
	}

	newCommit, err := ctx.Runner.CommitTree(ctx, git.CommitTreeOptions{
		Tree:    plan.Tip.Tree,
		Parents: plan.Parents,
		Message: plan.Message,
		Author:  plan.Tip.Author,
	})
	if err != nil {
		return result, err
	}
	result.NewCommit = newCommit

	if opts.DryRun {
		return result, nil
	}

	reason := reflogMessage(ctx.Config, plan.Base)
	if err := ctx.Runner.UpdateRef(ctx, plan.Ref, newCommit, plan.OldTip, reason); err != nil {
		return result, err
	}
	result.Updated = true
	return result, nil
}

// BuildPlan performs every read and validation step of a collapse.
// It returns a nil plan when it fails before the chain is known, and a partial
// plan carrying diagnostics when a later step fails.
func BuildPlan(ctx *runtime.Context, opts CollapseOptions) (*Plan, error) {
	runner := ctx.Runner
	plan := &Plan{Ref: git.RefName(opts.Branch)}

	oldTip, err := runner.ReadRef(ctx, plan.Ref)
	if err != nil {
		return nil, err
	}
	plan.OldTip = oldTip

	base, err := runner.ResolveCommit(ctx, opts.Commit)
	if err != nil {
		return nil, err
	}
	plan.Base = base

	tip, err := runner.GetCommit(ctx, oldTip)
	if err != nil {
		return nil, err
	}
	plan.Tip = tip
	if len(tip.Parents) == 0 {
		return nil, mergefolderrors.NewNotAMergeError(tip.Hash, 0)
	}

	isAncestor, err := runner.IsAncestor(ctx, base, tip.Parents[0])
	if err != nil {
		return nil, err
	}
	if !isAncestor {
		return nil, mergefolderrors.NewAncestryError(base, tip.Hash)
	}

	chain, err := runner.AncestryPath(ctx, base, tip.Hash)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, mergefolderrors.NewEmptyRangeError(base, tip.Hash)
	}
	if chain[0].Hash != tip.Hash {
		return nil, fmt.Errorf("ancestry path %s..%s starts at %s instead of the tip",
			git.ShortHash(base), git.ShortHash(tip.Hash), git.ShortHash(chain[0].Hash))
	}
	if err := ValidateChain(chain); err != nil {
		return nil, err
	}
	plan.Chain = chain

	secondParent := tip.Parents[1]
	auditTarget := secondParent
	if opts.SecondParent != "" {
		override, err := runner.ResolveCommit(ctx, opts.SecondParent)
		if err != nil {
			return plan, err
		}
		consistent, diags, err := checkSecondParent(ctx, runner, override, secondParent, opts.Force)
		plan.Diagnostics = append(plan.Diagnostics, diags...)
		if err != nil {
			return plan, err
		}
		if consistent {
			auditTarget = override
		}
		secondParent = override
	}

	diags, err := AuditReachability(ctx, runner, chain, base, auditTarget)
	plan.Diagnostics = append(plan.Diagnostics, diags...)
	if err != nil {
		return plan, err
	}

	plan.Parents = append([]string{base, secondParent}, opts.OctopusParents...)

	plan.Message, err = planMessage(ctx, chain, opts.MessageCommit)
	if err != nil {
		return plan, err
	}
	return plan, nil
}

// planMessage returns the raw message of messageCommit when given, and otherwise
// the tip's message with the conflicts of the whole chain merged in.
func planMessage(ctx *runtime.Context, chain []git.Commit, messageCommit string) (string, error) {
	if messageCommit != "" {
		hash, err := ctx.Runner.ResolveCommit(ctx, messageCommit)
		if err != nil {
			return "", err
		}
		c, err := ctx.Runner.GetCommit(ctx, hash)
		if err != nil {
			return "", err
		}
		return c.Message, nil
	}

	// Without a conflicts block the result is the tip's body with trailing blank
	// lines removed and no final newline; commit-tree stores it as is.
	others := make([]string, 0, len(chain)-1)
	for _, c := range chain[1:] {
		others = append(others, c.Message)
	}
	return message.Consolidate(chain[0].Message, others...), nil
}

func reflogMessage(cfg *config.RepoConfig, base string) string {
	if cfg == nil {
		cfg = &config.RepoConfig{}
	}
	return cfg.GetReflogMessage(git.ShortHash(base))
}
