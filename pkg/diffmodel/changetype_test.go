package diffmodel

import "testing"

func TestChangeTypeFromHunk(t *testing.T) {
	cases := []struct {
		name     string
		oldCount int
		newCount int
		want     ChangeType
	}{
		{"pure insertion", 0, 3, ChangeAdded},
		{"pure deletion", 3, 0, ChangeDeleted},
		{"mixed edit", 2, 4, ChangeModified},
		{"zero both", 0, 0, ChangeModified},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := &Hunk{OldCount: c.oldCount, NewCount: c.newCount}
			if got := ChangeTypeFromHunk(h); got != c.want {
				t.Errorf("ChangeTypeFromHunk(%+v) = %v, want %v", h, got, c.want)
			}
		})
	}
}

func TestChangeTypeFromHunks(t *testing.T) {
	h1 := &Hunk{OldCount: 0, NewCount: 2}
	h2 := &Hunk{OldCount: 1, NewCount: 1}

	if got := ChangeTypeFromHunks([]*Hunk{h1, h2}); got != ChangeAdded {
		t.Errorf("expected first hunk's type (Added), got %v", got)
	}

	if got := ChangeTypeFromHunks(nil); got != ChangeModified {
		t.Errorf("expected Modified for empty hunk list, got %v", got)
	}
}

func TestHunkLineCounts(t *testing.T) {
	h := &Hunk{
		Lines: []DiffLine{
			{Kind: Context, Text: "a"},
			{Kind: Removed, Text: "b"},
			{Kind: Added, Text: "c"},
			{Kind: Added, Text: "d"},
		},
	}

	if got := h.ContextAndRemovedCount(); got != 2 {
		t.Errorf("ContextAndRemovedCount() = %d, want 2", got)
	}
	if got := h.ContextAndAddedCount(); got != 3 {
		t.Errorf("ContextAndAddedCount() = %d, want 3", got)
	}
}

func TestPlannedCommitState(t *testing.T) {
	pc := &PlannedCommit{ID: 0}
	if !pc.IsPending() {
		t.Error("expected fresh planned commit to be pending")
	}
	if pc.IsSkipped() {
		t.Error("fresh planned commit should not be skipped")
	}

	pc.CreatedSHA = SkippedSHA
	if pc.IsPending() {
		t.Error("expected skipped commit not to be pending")
	}
	if !pc.IsSkipped() {
		t.Error("expected IsSkipped to report true")
	}

	pc.CreatedSHA = "abc123"
	if pc.IsPending() || pc.IsSkipped() {
		t.Error("expected committed commit to be neither pending nor skipped")
	}
}

func TestPlannedChangeConstructors(t *testing.T) {
	existing := ExistingChange(7)
	if existing.Kind != ExistingHunk || existing.HunkID != 7 {
		t.Errorf("ExistingChange(7) = %+v", existing)
	}

	h := &Hunk{ID: 99}
	fresh := NewChange(h)
	if fresh.Kind != NewHunkChange || fresh.NewHunk != h {
		t.Errorf("NewChange(h) = %+v", fresh)
	}
}
