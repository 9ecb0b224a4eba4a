package reorg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/fumiya-kume/reorg/pkg/config"
	"github.com/fumiya-kume/reorg/pkg/executor"
)

func run(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// newTestRepo builds a repository with a base commit and two further
// commits on top, each touching f.txt, and returns the directory and the
// id of the base commit.
func newTestRepo(t *testing.T) (dir, base string) {
	t.Helper()
	dir = t.TempDir()

	run(t, dir, "init", "--initial-branch=main")
	run(t, dir, "config", "commit.gpgsign", "false")

	writeFile(t, dir, "f.txt", "a\nb\n")
	run(t, dir, "add", "-A")
	run(t, dir, "commit", "-m", "initial")

	out, err := exec.Command("git", "-C", dir, "rev-parse", "HEAD").Output()
	if err != nil {
		t.Fatalf("rev-parse HEAD: %v", err)
	}
	base = string(out)
	base = base[:len(base)-1]

	writeFile(t, dir, "f.txt", "a\nB\n")
	run(t, dir, "add", "-A")
	run(t, dir, "commit", "-m", "uppercase b")

	writeFile(t, dir, "g.txt", "new file\n")
	run(t, dir, "add", "-A")
	run(t, dir, "commit", "-m", "add g")

	return dir, base
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Reorg.Strategy = "preserve"
	cfg.Reorg.NoEditor = true
	cfg.Reorg.NoVerify = true
	cfg.Reorg.KeepSafetyRef = false
	cfg.GitHub.UseCLI = false
	cfg.Editor.Timeout = 10 * time.Second
	return cfg
}

func TestPlanPreservesSourceCommitStructure(t *testing.T) {
	dir, base := newTestRepo(t)
	ctx := context.Background()

	o, err := Open(ctx, testConfig(), dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	plan, err := o.Plan(ctx, base, "HEAD")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Commits) != 2 {
		t.Fatalf("expected 2 planned commits, got %d", len(plan.Commits))
	}
	if len(plan.SourceCommits) != 2 {
		t.Fatalf("expected 2 source commits, got %d", len(plan.SourceCommits))
	}
}

func TestSaveResumeStatusAbortLifecycle(t *testing.T) {
	dir, base := newTestRepo(t)
	ctx := context.Background()
	cfg := testConfig()

	o, err := Open(ctx, cfg, dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	plan, err := o.Plan(ctx, base, "HEAD")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if err := o.Save(ctx, plan); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	status, err := o.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status == nil || len(status.Commits) != len(plan.Commits) {
		t.Fatalf("expected a saved plan with %d commits, got %+v", len(plan.Commits), status)
	}

	opts := executor.Options{NoVerify: cfg.Reorg.NoVerify, NoEditor: cfg.Reorg.NoEditor}
	applied, err := o.Resume(ctx, opts)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if !applied.IsComplete() {
		t.Fatalf("expected the plan to complete, got %+v", applied)
	}

	out, err := exec.Command("git", "-C", dir, "rev-list", "--count", base+"..HEAD").Output()
	if err != nil {
		t.Fatalf("rev-list --count: %v", err)
	}
	if got := string(out[:len(out)-1]); got != "2" {
		t.Fatalf("expected 2 commits between base and HEAD after resume, got %s", got)
	}

	f, err := os.ReadFile(filepath.Join(dir, "f.txt"))
	if err != nil {
		t.Fatalf("read f.txt: %v", err)
	}
	if string(f) != "a\nB\n" {
		t.Fatalf("expected f.txt to read \"a\\nB\\n\" after resume, got %q", f)
	}
	g, err := os.ReadFile(filepath.Join(dir, "g.txt"))
	if err != nil {
		t.Fatalf("read g.txt: %v", err)
	}
	if string(g) != "new file\n" {
		t.Fatalf("expected g.txt to read \"new file\\n\" after resume, got %q", g)
	}

	if err := o.Abort(ctx); err == nil {
		t.Fatal("expected Abort to fail when KeepSafetyRef is disabled and no ref was ever recorded")
	}
}

func TestAbortRestoresPreOpHead(t *testing.T) {
	dir, base := newTestRepo(t)
	ctx := context.Background()
	cfg := testConfig()
	cfg.Reorg.KeepSafetyRef = true

	o, err := Open(ctx, cfg, dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	plan, err := o.Plan(ctx, base, "HEAD")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	preAbortHead, err := o.backend.GetHead(ctx)
	if err != nil {
		t.Fatalf("GetHead failed: %v", err)
	}
	if err := o.Save(ctx, plan); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := o.Abort(ctx); err != nil {
		t.Fatalf("Abort failed: %v", err)
	}

	head, err := o.backend.GetHead(ctx)
	if err != nil {
		t.Fatalf("GetHead failed: %v", err)
	}
	if head != preAbortHead {
		t.Errorf("expected HEAD restored to %s, got %s", preAbortHead, head)
	}

	status, err := o.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != nil {
		t.Errorf("expected no saved plan after abort, got %+v", status)
	}
}

func TestResumeWithoutSavedPlanFails(t *testing.T) {
	dir, _ := newTestRepo(t)
	ctx := context.Background()

	o, err := Open(ctx, testConfig(), dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := o.Resume(ctx, executor.Options{}); err == nil {
		t.Fatal("expected Resume to fail without a saved plan")
	}
}

func TestShowFallsBackToLocalCommitsWithoutGitHub(t *testing.T) {
	dir, base := newTestRepo(t)
	ctx := context.Background()

	o, err := Open(ctx, testConfig(), dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	entries, err := o.Show(ctx, base, "HEAD")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Commit.ShortMessage != "uppercase b" || entries[1].Commit.ShortMessage != "add g" {
		t.Errorf("unexpected commit order/messages: %+v", entries)
	}
	if entries[0].ReferenceTitle != "" {
		t.Errorf("expected no reference title with GitHub disabled, got %q", entries[0].ReferenceTitle)
	}

	rendered := Render(entries)
	if rendered == "" {
		t.Error("expected a non-empty render")
	}
}
