package actions

import (
	"context"
	"fmt"

	"mergefold.dev/mergefold/internal/git"
)

// AuditReachability reports every parent referenced by the chain that is neither
// in the chain nor the lower bound and cannot be reached from target. Those commits
// would silently vanish from history once the chain is replaced. A parent that
// cannot be checked, as in a shallow clone, is reported instead of failing the run;
// only cancellation of ctx is returned as an error.
func AuditReachability(ctx context.Context, runner git.Runner, chain []git.Commit, base, target string) ([]Diagnostic, error) {
	skip := map[string]bool{base: true}
	for _, c := range chain {
		skip[c.Hash] = true
	}

	var diags []Diagnostic
	for _, c := range chain {
		for _, parent := range c.Parents {
			if skip[parent] {
				continue
			}
			skip[parent] = true

			reachable, err := runner.IsAncestor(ctx, parent, target)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				diags = append(diags, Diagnostic{
					Kind:   DiagAuditSkipped,
					Commit: parent,
					Message: fmt.Sprintf("could not check whether parent %s of %s is reachable from %s: %v",
						git.ShortHash(parent), git.ShortHash(c.Hash), git.ShortHash(target), err),
				})
				continue
			}
			if reachable {
				continue
			}

			description, err := runner.Describe(ctx, parent)
			if err != nil {
				description = git.ShortHash(parent)
			}
			diags = append(diags, Diagnostic{
				Kind:   DiagUnreachableParent,
				Commit: parent,
				Message: fmt.Sprintf("parent of %s is not reachable from %s and will drop out of history: %s",
					git.ShortHash(c.Hash), git.ShortHash(target), description),
			})
		}
	}
	return diags, nil
}
