package strategy

import "github.com/fumiya-kume/reorg/pkg/diffmodel"

// Absorb is a heuristic stand-in for the original's LLM-assisted absorb
// strategy (out of scope per this build's non-goals: no AI invocation).
// Rather than asking a model to judge ownership, it trusts each hunk's own
// strongest LikelySourceCommits candidate and names the resulting commit as
// a fixup targeting that source, mirroring git-absorb's own fixup!-commit
// convention. Hunks with no candidate land in one trailing "uncategorized"
// commit so nothing is silently dropped.
func Absorb(sourceCommits []diffmodel.SourceCommit, hunks []diffmodel.Hunk) ([]diffmodel.PlannedCommit, error) {
	if len(hunks) == 0 {
		return nil, noHunksErr()
	}

	shortByID := make(map[string]string, len(sourceCommits))
	for _, sc := range sourceCommits {
		shortByID[sc.ID] = sc.ShortMessage
	}

	hunksByOwner := make(map[string][]int)
	var owners []string
	var unassigned []int

	for _, h := range hunks {
		if len(h.LikelySourceCommits) == 0 {
			unassigned = append(unassigned, h.ID)
			continue
		}
		owner := h.LikelySourceCommits[0]
		if _, seen := hunksByOwner[owner]; !seen {
			owners = append(owners, owner)
		}
		hunksByOwner[owner] = append(hunksByOwner[owner], h.ID)
	}

	planned := make([]diffmodel.PlannedCommit, 0, len(owners)+1)
	for _, owner := range owners {
		target := shortByID[owner]
		if target == "" {
			target = owner
		}
		short := "fixup! " + target
		planned = append(planned, newPlannedCommit(len(planned), short, short, hunksByOwner[owner]))
	}

	if len(unassigned) > 0 {
		planned = append(planned, newPlannedCommit(len(planned), "Uncategorized changes", "Uncategorized changes\n\nHunks with no identifiable source commit.", unassigned))
	}

	return planned, nil
}
