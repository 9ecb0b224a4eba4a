package patch

import (
	"testing"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
)

func TestParseSimpleModifiedHunk(t *testing.T) {
	text := "diff --git a/f.txt b/f.txt\n" +
		"--- a/f.txt\n" +
		"+++ b/f.txt\n" +
		"@@ -2,1 +2,2 @@\n" +
		" b\n" +
		"+c\n"

	result, err := Parse(text, []string{"c1"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(result.Hunks))
	}
	h := result.Hunks[0]
	if h.ID != 0 || h.FilePath != "f.txt" {
		t.Errorf("unexpected hunk identity: %+v", h)
	}
	if h.OldStart != 2 || h.OldCount != 1 || h.NewStart != 2 || h.NewCount != 2 {
		t.Errorf("unexpected hunk geometry: %+v", h)
	}
	if len(h.Lines) != 2 || h.Lines[0].Kind != diffmodel.Context || h.Lines[1].Kind != diffmodel.Added {
		t.Errorf("unexpected hunk lines: %+v", h.Lines)
	}
	if result.NextHunkID != 1 {
		t.Errorf("expected NextHunkID 1, got %d", result.NextHunkID)
	}

	// No mode info and not binary: file-level record is suppressed.
	if len(result.FileChanges) != 0 {
		t.Errorf("expected no file changes, got %+v", result.FileChanges)
	}
}

func TestParseNewFileMode(t *testing.T) {
	text := "diff --git a/new.rs b/new.rs\n" +
		"new file mode 100644\n" +
		"--- /dev/null\n" +
		"+++ b/new.rs\n" +
		"@@ -0,0 +1,2 @@\n" +
		"+A\n" +
		"+B\n"

	result, err := Parse(text, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.FileChanges) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(result.FileChanges))
	}
	fc := result.FileChanges[0]
	if fc.ChangeType != diffmodel.ChangeAdded || fc.NewMode != "100644" {
		t.Errorf("unexpected file change: %+v", fc)
	}
	if fc.FilePath != "new.rs" {
		t.Errorf("expected path new.rs, got %s", fc.FilePath)
	}
	if len(result.Hunks) != 1 || result.Hunks[0].ID != 5 {
		t.Errorf("expected hunk id to start at 5, got %+v", result.Hunks)
	}
}

func TestParseDeletedFile(t *testing.T) {
	text := "diff --git a/gone.txt b/gone.txt\n" +
		"deleted file mode 100644\n" +
		"--- a/gone.txt\n" +
		"+++ /dev/null\n" +
		"@@ -1,2 +0,0 @@\n" +
		"-x\n" +
		"-y\n"

	result, err := Parse(text, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.FileChanges) != 1 || result.FileChanges[0].ChangeType != diffmodel.ChangeDeleted {
		t.Fatalf("expected a Deleted file change, got %+v", result.FileChanges)
	}
	if result.FileChanges[0].FilePath != "gone.txt" {
		t.Errorf("expected path gone.txt, got %s", result.FileChanges[0].FilePath)
	}
}

func TestParseBinaryFile(t *testing.T) {
	text := "diff --git a/image.png b/image.png\n" +
		"index abc123..def456 100644\n" +
		"Binary files a/image.png and b/image.png differ\n"

	result, err := Parse(text, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.FileChanges) != 1 || !result.FileChanges[0].IsBinary {
		t.Fatalf("expected a binary file change, got %+v", result.FileChanges)
	}
}

func TestParseMissingNewlineAtEOF(t *testing.T) {
	text := "diff --git a/f.txt b/f.txt\n" +
		"--- a/f.txt\n" +
		"+++ b/f.txt\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-old\n" +
		"\\ No newline at end of file\n" +
		"+new\n" +
		"\\ No newline at end of file\n"

	result, err := Parse(text, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := result.Hunks[0]
	if !h.OldMissingNewlineAtEOF {
		t.Error("expected OldMissingNewlineAtEOF to be set")
	}
	if !h.NewMissingNewlineAtEOF {
		t.Error("expected NewMissingNewlineAtEOF to be set")
	}
}

func TestParseInvalidHunkHeaderFails(t *testing.T) {
	text := "diff --git a/f.txt b/f.txt\n" +
		"--- a/f.txt\n" +
		"+++ b/f.txt\n" +
		"@@ -a,b +1,2 @@\n" +
		" x\n"

	_, err := Parse(text, nil, 0)
	if err == nil {
		t.Fatal("expected parse error for non-numeric hunk header")
	}
}

func TestParseModeChangeOnly(t *testing.T) {
	text := "diff --git a/script.sh b/script.sh\n" +
		"old mode 100644\n" +
		"new mode 100755\n"

	result, err := Parse(text, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.FileChanges) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(result.FileChanges))
	}
	fc := result.FileChanges[0]
	if fc.OldMode != "100644" || fc.NewMode != "100755" {
		t.Errorf("unexpected modes: %+v", fc)
	}
	if fc.HasContentHunks {
		t.Error("expected HasContentHunks false for a mode-only change")
	}
}
