package strategy

import (
	"fmt"
	"path"
	"sort"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
)

// ByFile groups hunks by file path, one planned commit per file, sorted by
// path for a deterministic plan order across runs.
func ByFile(_ []diffmodel.SourceCommit, hunks []diffmodel.Hunk) ([]diffmodel.PlannedCommit, error) {
	if len(hunks) == 0 {
		return nil, noHunksErr()
	}

	hunksByFile := make(map[string][]int)
	for _, h := range hunks {
		hunksByFile[h.FilePath] = append(hunksByFile[h.FilePath], h.ID)
	}

	paths := make([]string, 0, len(hunksByFile))
	for p := range hunksByFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	planned := make([]diffmodel.PlannedCommit, 0, len(paths))
	for _, p := range paths {
		name := path.Base(p)
		short := fmt.Sprintf("Update %s", name)
		long := fmt.Sprintf("Update %s\n\nChanges to %s", name, p)
		planned = append(planned, newPlannedCommit(len(planned), short, long, hunksByFile[p]))
	}

	return planned, nil
}
