package strategy

import (
	"fmt"
	"strings"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
)

// Squash folds every hunk in the range into a single planned commit. With
// one source commit its description is kept verbatim; with more than one
// the short description summarizes the count and the long description lists
// each squashed commit's own short message.
func Squash(sourceCommits []diffmodel.SourceCommit, hunks []diffmodel.Hunk) ([]diffmodel.PlannedCommit, error) {
	if len(hunks) == 0 {
		return nil, noHunksErr()
	}

	ids := make([]int, len(hunks))
	for i, h := range hunks {
		ids[i] = h.ID
	}

	short := fmt.Sprintf("Squashed %d commits", len(sourceCommits))
	long := short
	if len(sourceCommits) == 1 {
		short = sourceCommits[0].ShortMessage
		long = sourceCommits[0].LongMessage
	} else if len(sourceCommits) > 1 {
		var b strings.Builder
		b.WriteString(short)
		b.WriteString("\n\nSquashed commits:\n")
		for _, sc := range sourceCommits {
			fmt.Fprintf(&b, "- %s\n", sc.ShortMessage)
		}
		long = b.String()
	}

	return []diffmodel.PlannedCommit{newPlannedCommit(0, short, long, ids)}, nil
}
