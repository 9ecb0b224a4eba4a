package main

import (
	"fmt"
	"strings"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
)

// parseRange splits a "<base>..<head>" range expression the way `git` itself
// accepts it on the command line.
func parseRange(spec string) (base, head string, err error) {
	parts := strings.SplitN(spec, "..", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid range %q; expected <base>..<head>", spec)
	}
	return parts[0], parts[1], nil
}

// printPlanPreview renders a plan without applying it, for `reorganize
// --dry-run`.
func printPlanPreview(plan *diffmodel.SavedPlan) {
	fmt.Printf("strategy: %s\n", plan.Strategy)
	fmt.Printf("range: %s..%s\n", shortSHA(plan.Base), shortSHA(plan.Head))
	fmt.Printf("%d planned commit(s) from %d source commit(s):\n\n", len(plan.Commits), len(plan.SourceCommits))
	for _, c := range plan.Commits {
		fmt.Printf("  - %s (%d change(s))\n", c.ShortDescription, len(c.Changes))
	}
}

func shortSHA(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
