package vcs

import (
	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/fumiya-kume/reorg/pkg/patch"
)

// parseDiffInto runs the unified-diff text through the patch parser,
// attaching likelySourceCommits and starting hunk ids at startingHunkID.
func parseDiffInto(text string, likelySourceCommits []string, startingHunkID int) ([]diffmodel.Hunk, []diffmodel.FileChange, int, error) {
	result, err := patch.Parse(text, likelySourceCommits, startingHunkID)
	if err != nil {
		return nil, nil, startingHunkID, err
	}

	hunks := make([]diffmodel.Hunk, 0, len(result.Hunks))
	for _, h := range result.Hunks {
		hunks = append(hunks, *h)
	}

	fileChanges := make([]diffmodel.FileChange, 0, len(result.FileChanges))
	for _, fc := range result.FileChanges {
		fileChanges = append(fileChanges, *fc)
	}

	return hunks, fileChanges, result.NextHunkID, nil
}
