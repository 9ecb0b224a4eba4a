package patch

import (
	"sort"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
)

// Context encapsulates the most subtle correctness rule of the whole
// system: what the stored hunk geometry implies about a file's change type
// can be wrong at apply time, because earlier hunks in the plan have
// already mutated the index. It holds a snapshot of the range's
// FileChange[] keyed by file path, giving the range-level change type,
// modes, and binary flag for every affected file.
type Context struct {
	fileChanges map[string]*diffmodel.FileChange
	nextHunkID  int
}

// NewContext builds a Context from the range's file changes.
func NewContext(fileChanges []*diffmodel.FileChange, nextHunkID int) *Context {
	byPath := make(map[string]*diffmodel.FileChange, len(fileChanges))
	for _, fc := range fileChanges {
		byPath[fc.FilePath] = fc
	}
	return &Context{fileChanges: byPath, nextHunkID: nextHunkID}
}

// allocHunkID returns the next unused hunk id, for hunks synthesized by a
// transformation during execution.
func (c *Context) allocHunkID() int {
	id := c.nextHunkID
	c.nextHunkID++
	return id
}

// DetermineChangeType returns the ChangeType to use for patch headers,
// given whether the file currently exists in the index and the hunks about
// to be applied to it.
//
// Rules, in priority order:
//  1. every hunk has new_count == 0 and the file exists in the index -> Deleted
//  2. the file exists in the index -> Modified
//  3. the file does not exist in the index, and either the range marks it
//     Added or every hunk has old_count == 0 -> Added
//  4. otherwise (not in index, but hunks look like a modification) ->
//     Added, forced; the caller must transform the hunks via
//     CreateNewFileHunk.
func (c *Context) DetermineChangeType(path string, fileInIndex bool, hunks []*diffmodel.Hunk) diffmodel.ChangeType {
	if fileInIndex && allHunksDeleteOnly(hunks) {
		return diffmodel.ChangeDeleted
	}
	if fileInIndex {
		return diffmodel.ChangeModified
	}

	rangeAdded := false
	if fc, ok := c.fileChanges[path]; ok {
		rangeAdded = fc.ChangeType == diffmodel.ChangeAdded
	}
	if rangeAdded || allHunksCreateOnly(hunks) {
		return diffmodel.ChangeAdded
	}

	// Forced case: the plan reordered the original source such that content
	// edits on a newly-created file are scheduled before its creation hunk.
	return diffmodel.ChangeAdded
}

func allHunksDeleteOnly(hunks []*diffmodel.Hunk) bool {
	if len(hunks) == 0 {
		return false
	}
	for _, h := range hunks {
		if h.NewCount != 0 {
			return false
		}
	}
	return true
}

func allHunksCreateOnly(hunks []*diffmodel.Hunk) bool {
	if len(hunks) == 0 {
		return false
	}
	for _, h := range hunks {
		if h.OldCount != 0 {
			return false
		}
	}
	return true
}

// GenerateResult is the output of GeneratePatch.
type GenerateResult struct {
	PatchText  string
	ChangeType diffmodel.ChangeType
}

// GeneratePatch determines the change type for path, applies the matching
// synthetic transformation when the hunks need reshaping for that change
// type, and delegates to Write with the right mode metadata.
func (c *Context) GeneratePatch(path string, hunks []*diffmodel.Hunk, fileInIndex bool) GenerateResult {
	changeType := c.DetermineChangeType(path, fileInIndex, hunks)

	fc := c.fileChanges[path]
	opts := WriteOptions{}
	if fc != nil {
		opts.OldMode = fc.OldMode
		opts.NewMode = fc.NewMode
	}

	finalHunks := hunks
	switch changeType {
	case diffmodel.ChangeAdded:
		if !isAlreadyCreateShape(hunks) {
			finalHunks = []*diffmodel.Hunk{CreateNewFileHunk(path, hunks, c.allocHunkID())}
		}
	case diffmodel.ChangeDeleted:
		if !isAlreadyDeleteShape(hunks) {
			finalHunks = []*diffmodel.Hunk{CreateDeleteFileHunk(path, hunks, c.allocHunkID())}
		}
	}

	return GenerateResult{
		PatchText:  Write(path, finalHunks, changeType, opts),
		ChangeType: changeType,
	}
}

func isAlreadyCreateShape(hunks []*diffmodel.Hunk) bool {
	return allHunksCreateOnly(hunks)
}

func isAlreadyDeleteShape(hunks []*diffmodel.Hunk) bool {
	return allHunksDeleteOnly(hunks)
}

// AdjustHunksForCurrentIndex recomputes old_start for hunks about to be
// applied, given the hunks already applied so far (grouped by file). All
// planned hunks carry line numbers relative to the original pre-reorganize
// base; each previously applied hunk in the same file shifts subsequent
// hunks by delta = new_count - old_count. Returns adjusted copies; the
// inputs are left untouched.
func AdjustHunksForCurrentIndex(hunksForNextCommit []*diffmodel.Hunk, appliedHunksByFile map[string][]*diffmodel.Hunk) []*diffmodel.Hunk {
	adjusted := make([]*diffmodel.Hunk, len(hunksForNextCommit))

	for i, h := range hunksForNextCommit {
		cp := *h
		cp.Lines = append([]diffmodel.DiffLine(nil), h.Lines...)

		delta := 0
		for _, applied := range appliedHunksByFile[h.FilePath] {
			if applied.OldStart < h.OldStart {
				delta += applied.NewCount - applied.OldCount
			}
		}
		cp.OldStart += delta

		adjusted[i] = &cp
	}

	return adjusted
}

// SortHunksByOldStart sorts hunks in place by ascending OldStart, the order
// the executor must apply hunks of one file within one commit.
func SortHunksByOldStart(hunks []*diffmodel.Hunk) {
	sort.SliceStable(hunks, func(i, j int) bool {
		return hunks[i].OldStart < hunks[j].OldStart
	})
}

// GroupByFile groups hunks by FilePath, preserving encounter order of
// files.
func GroupByFile(hunks []*diffmodel.Hunk) (order []string, byFile map[string][]*diffmodel.Hunk) {
	byFile = make(map[string][]*diffmodel.Hunk)
	for _, h := range hunks {
		if _, ok := byFile[h.FilePath]; !ok {
			order = append(order, h.FilePath)
		}
		byFile[h.FilePath] = append(byFile[h.FilePath], h)
	}
	return order, byFile
}
