package strategy

import "github.com/fumiya-kume/reorg/pkg/diffmodel"

// Preserve keeps the original commit structure: each source commit becomes a
// planned commit carrying the hunks most likely to have originated from it.
// A hunk with no matching source commit falls back to its first likely
// source, so no hunk is silently dropped.
func Preserve(sourceCommits []diffmodel.SourceCommit, hunks []diffmodel.Hunk) ([]diffmodel.PlannedCommit, error) {
	if len(hunks) == 0 {
		return nil, noHunksErr()
	}

	bySourceID := make(map[string]int, len(sourceCommits))
	for i, sc := range sourceCommits {
		bySourceID[sc.ID] = i
	}

	hunksByCommit := make(map[string][]int)
	for _, h := range hunks {
		owner := ""
		for _, sha := range h.LikelySourceCommits {
			if _, ok := bySourceID[sha]; ok {
				owner = sha
				break
			}
		}
		if owner == "" && len(h.LikelySourceCommits) > 0 {
			owner = h.LikelySourceCommits[0]
		}
		if owner == "" {
			continue
		}
		hunksByCommit[owner] = append(hunksByCommit[owner], h.ID)
	}

	planned := make([]diffmodel.PlannedCommit, 0, len(sourceCommits))
	for _, sc := range sourceCommits {
		ids, ok := hunksByCommit[sc.ID]
		if !ok {
			continue
		}
		planned = append(planned, newPlannedCommit(len(planned), sc.ShortMessage, sc.LongMessage, ids))
	}

	return planned, nil
}

// newPlannedCommit builds a PlannedCommit referencing existing hunks by id.
func newPlannedCommit(id int, short, long string, hunkIDs []int) diffmodel.PlannedCommit {
	changes := make([]diffmodel.PlannedChange, len(hunkIDs))
	for i, hid := range hunkIDs {
		changes[i] = diffmodel.ExistingChange(hid)
	}
	return diffmodel.PlannedCommit{
		ID:               id,
		ShortDescription: short,
		LongDescription:  long,
		Changes:          changes,
	}
}
