// Package diffmodel holds the typed representation of hunks, file changes,
// diff lines and commit-plan entries shared by the patch, executor and
// planstore packages.
package diffmodel

// DiffLineKind tags a single line of a hunk body.
type DiffLineKind int

const (
	// Context is a line unchanged between old and new sides.
	Context DiffLineKind = iota
	// Added is a line present only on the new side.
	Added
	// Removed is a line present only on the old side.
	Removed
)

// String returns a human-readable name for the line kind.
func (k DiffLineKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "context"
	}
}

// DiffLine is one line of a hunk body, tagged by how it participates in the
// change.
type DiffLine struct {
	Kind DiffLineKind `json:"kind"`
	Text string       `json:"text"`
}

// Hunk is a contiguous change in one file, identified by a stable integer id
// unique within one reorganize operation.
type Hunk struct {
	ID       int    `json:"id"`
	FilePath string `json:"file_path"`

	OldStart int `json:"old_start"`
	OldCount int `json:"old_count"`
	NewStart int `json:"new_start"`
	NewCount int `json:"new_count"`

	Lines []DiffLine `json:"lines"`

	OldMissingNewlineAtEOF bool `json:"old_missing_newline_at_eof"`
	NewMissingNewlineAtEOF bool `json:"new_missing_newline_at_eof"`

	LikelySourceCommits []string `json:"likely_source_commits,omitempty"`
}

// ContextAndRemovedCount returns the number of lines that participate in the
// old side of the hunk (Context + Removed), which must equal OldCount.
func (h *Hunk) ContextAndRemovedCount() int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind == Context || l.Kind == Removed {
			n++
		}
	}
	return n
}

// ContextAndAddedCount returns the number of lines that participate in the
// new side of the hunk (Context + Added), which must equal NewCount.
func (h *Hunk) ContextAndAddedCount() int {
	n := 0
	for _, l := range h.Lines {
		if l.Kind == Context || l.Kind == Added {
			n++
		}
	}
	return n
}

// ChangeType classifies a file-level change.
type ChangeType int

const (
	// ChangeAdded means the file does not exist on the old side.
	ChangeAdded ChangeType = iota
	// ChangeModified means the file exists on both sides.
	ChangeModified
	// ChangeDeleted means the file does not exist on the new side.
	ChangeDeleted
)

// String returns a human-readable name for the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeDeleted:
		return "deleted"
	default:
		return "modified"
	}
}

// FileChange carries metadata about a file-level change independent of its
// hunks.
type FileChange struct {
	FilePath        string     `json:"file_path"`
	ChangeType      ChangeType `json:"change_type"`
	OldMode         string     `json:"old_mode,omitempty"` // empty means absent
	NewMode         string     `json:"new_mode,omitempty"` // empty means absent
	IsBinary        bool       `json:"is_binary"`
	HasContentHunks bool       `json:"has_content_hunks"`

	LikelySourceCommits []string `json:"likely_source_commits,omitempty"`
}

// SourceCommit identifies one original commit in the range being
// reorganized.
type SourceCommit struct {
	ID           string `json:"id"`
	ShortMessage string `json:"short_message"`
	LongMessage  string `json:"long_message"`
}

// PlannedChangeKind tags whether a PlannedChange references an existing hunk
// or carries a synthesized one inline.
type PlannedChangeKind int

const (
	// ExistingHunk references a Hunk already present in the range by id.
	ExistingHunk PlannedChangeKind = iota
	// NewHunkChange carries a hunk synthesized by the strategy (a split or merge).
	NewHunkChange
)

// PlannedChange is a tagged union: either a reference to an existing Hunk by
// id, or an inline synthesized hunk.
type PlannedChange struct {
	Kind PlannedChangeKind `json:"kind"`

	// HunkID is valid when Kind == ExistingHunk.
	HunkID int `json:"hunk_id,omitempty"`

	// NewHunk is valid when Kind == NewHunkChange; it carries the full
	// payload of a hunk synthesized by the strategy.
	NewHunk *Hunk `json:"new_hunk,omitempty"`
}

// ExistingChange builds a PlannedChange referencing an existing hunk by id.
func ExistingChange(hunkID int) PlannedChange {
	return PlannedChange{Kind: ExistingHunk, HunkID: hunkID}
}

// NewChange builds a PlannedChange carrying a synthesized hunk inline.
func NewChange(h *Hunk) PlannedChange {
	return PlannedChange{Kind: NewHunkChange, NewHunk: h}
}

// SkippedSHA is the sentinel CreatedSHA value recorded for a planned commit
// whose changes were all already reflected in the index by an earlier
// commit in the same plan.
const SkippedSHA = "SKIPPED"

// PlannedCommit is one entry in the executor's input queue: a stable id, a
// commit description, an ordered list of changes, and optional
// prerequisites.
type PlannedCommit struct {
	ID int `json:"id"`

	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description,omitempty"`

	Changes []PlannedChange `json:"changes"`

	// Prerequisites holds ids of PlannedCommits that must appear earlier in
	// the ordered plan.
	Prerequisites []int `json:"prerequisites,omitempty"`

	// CreatedSHA transitions "" (pending) -> a commit id, or SkippedSHA,
	// exactly once.
	CreatedSHA string `json:"created_sha,omitempty"`
}

// IsPending reports whether this commit has not yet been applied or
// skipped.
func (pc *PlannedCommit) IsPending() bool {
	return pc.CreatedSHA == ""
}

// IsSkipped reports whether this commit was recorded as skipped.
func (pc *PlannedCommit) IsSkipped() bool {
	return pc.CreatedSHA == SkippedSHA
}

// SavedPlanVersion is the current on-disk schema version for SavedPlan.
// Bump when the document shape changes in a way old readers cannot ignore.
const SavedPlanVersion = 1

// SavedPlan is the complete on-disk representation of one in-progress or
// completed reorganize operation: everything the executor needs to resume
// after an interruption, constructed once at planning time and re-persisted
// after every commit.
type SavedPlan struct {
	Version int `json:"version"`

	Strategy string `json:"strategy"`
	Base     string `json:"base"`
	Head     string `json:"head"`

	Commits []PlannedCommit `json:"commits"`

	Hunks       []Hunk       `json:"hunks"`
	FileChanges []FileChange `json:"file_changes"`

	SourceCommits []SourceCommit `json:"source_commits"`

	NextCommitIndex int `json:"next_commit_index"`
}

// IsComplete reports whether every planned commit has been applied or
// skipped.
func (p *SavedPlan) IsComplete() bool {
	return p.NextCommitIndex >= len(p.Commits)
}
