package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
)

func TestDiscoverRootFindsRepositoryFromNestedDirectory(t *testing.T) {
	root := t.TempDir()
	if _, err := git.PlainInit(root, false); err != nil {
		t.Fatalf("PlainInit failed: %v", err)
	}

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	got, err := DiscoverRoot(nested)
	if err != nil {
		t.Fatalf("DiscoverRoot failed: %v", err)
	}

	wantAbs, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	gotAbs, err := filepath.EvalSymlinks(got)
	if err != nil {
		t.Fatalf("EvalSymlinks failed: %v", err)
	}
	if gotAbs != wantAbs {
		t.Errorf("expected root %q, got %q", wantAbs, gotAbs)
	}
}

func TestDiscoverRootFailsOutsideRepository(t *testing.T) {
	dir := t.TempDir()
	if _, err := DiscoverRoot(dir); err == nil {
		t.Error("expected an error discovering a repository outside any git working tree")
	}
}
