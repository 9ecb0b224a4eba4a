// Package vcs implements the backing version-control operations the
// executor relies on (spec §6): reading the commit range, querying and
// mutating the index, and committing. The implementation shells out to the
// system git binary.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/fumiya-kume/reorg/pkg/errors"
)

// Backend is the collaborator surface the executor and the range resolver
// depend on. A single implementation (Git) is provided; the interface
// exists so executor tests can substitute a fake.
type Backend interface {
	GetHead(ctx context.Context) (string, error)
	ResolveRef(ctx context.Context, ref string) (string, error)
	FindMergeBase(ctx context.Context, branch string) (string, error)

	ReadCommits(ctx context.Context, base, head string) ([]diffmodel.SourceCommit, error)
	ReadHunks(ctx context.Context, commit string, startingHunkID int) ([]diffmodel.Hunk, []diffmodel.FileChange, int, error)

	GetFilesChangedInCommit(ctx context.Context, commit string) ([]string, error)
	GetNewFilesInCommit(ctx context.Context, commit string) ([]string, error)

	GetWorkingTreeDiff(ctx context.Context) (string, error)
	DiffTrees(ctx context.Context, left, right string) (string, error)

	FileInIndex(ctx context.Context, path string) (bool, error)

	ApplyPatchToIndex(ctx context.Context, patchText string) error
	ApplyBinaryFile(ctx context.Context, fc diffmodel.FileChange) error

	StageAll(ctx context.Context) error
	StageFiles(ctx context.Context, paths []string) error

	Commit(ctx context.Context, message string, noVerify bool) (string, error)

	ResetTo(ctx context.Context, ref string) error
	ResetHard(ctx context.Context, ref string) error

	SavePreOpHead(ctx context.Context, refName string) error
	GetPreOpHead(ctx context.Context, refName string) (string, error)
	HasPreOpHead(ctx context.Context, refName string) (bool, error)
	ClearPreOpHead(ctx context.Context, refName string) error

	CurrentBranchName(ctx context.Context) (string, error)
	GitDir(ctx context.Context) (string, error)
}

// Git is the Backend implementation backed by the system git binary.
type Git struct {
	repoPath string
	gitPath  string
}

// New returns a Git backend rooted at repoPath, invoking the binary at
// gitPath (typically "git", resolved via PATH).
func New(repoPath, gitPath string) *Git {
	if gitPath == "" {
		gitPath = "git"
	}
	return &Git{repoPath: repoPath, gitPath: gitPath}
}

// run executes git with args against the repository and returns stdout.
func (g *Git) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", g.repoPath}, args...)
	cmd := exec.CommandContext(ctx, g.gitPath, full...) // #nosec G204 -- gitPath is operator configuration, args are constructed internally
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.GitError(strings.Join(args, " "), fmt.Errorf("%s", msg))
	}
	return out, nil
}

// runWithStdin is like run but feeds stdin to the process, for commands
// like `apply` that read a patch body.
func (g *Git) runWithStdin(ctx context.Context, stdin string, args ...string) error {
	full := append([]string{"-C", g.repoPath}, args...)
	cmd := exec.CommandContext(ctx, g.gitPath, full...) // #nosec G204 -- gitPath is operator configuration, args are constructed internally
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return errors.GitError(strings.Join(args, " "), fmt.Errorf("%s", msg))
	}
	return nil
}

func (g *Git) runLines(ctx context.Context, args ...string) ([]string, error) {
	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSuffix(string(out), "\n")
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// GetHead returns the commit id HEAD points at.
func (g *Git) GetHead(ctx context.Context) (string, error) {
	return g.ResolveRef(ctx, "HEAD")
}

// ResolveRef resolves any ref expression to a commit id.
func (g *Git) ResolveRef(ctx context.Context, ref string) (string, error) {
	out, err := g.run(ctx, "rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// FindMergeBase returns the merge base of HEAD and branch.
func (g *Git) FindMergeBase(ctx context.Context, branch string) (string, error) {
	out, err := g.run(ctx, "merge-base", "HEAD", branch)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

const logFieldSep = "\x1f"
const logRecordSep = "\x1e"

// ReadCommits returns the commits in (base, head], oldest first.
func (g *Git) ReadCommits(ctx context.Context, base, head string) ([]diffmodel.SourceCommit, error) {
	format := "%H" + logFieldSep + "%s" + logFieldSep + "%b" + logRecordSep
	out, err := g.run(ctx, "log", "--reverse", "--format="+format, base+".."+head)
	if err != nil {
		return nil, err
	}

	var commits []diffmodel.SourceCommit
	for _, rec := range strings.Split(string(out), logRecordSep) {
		rec = strings.Trim(rec, "\n")
		if rec == "" {
			continue
		}
		fields := strings.SplitN(rec, logFieldSep, 3)
		if len(fields) < 2 {
			continue
		}
		sc := diffmodel.SourceCommit{ID: fields[0], ShortMessage: fields[1]}
		if len(fields) == 3 {
			sc.LongMessage = strings.TrimSpace(fields[2])
		}
		commits = append(commits, sc)
	}
	return commits, nil
}

// ReadHunks runs `git diff` for commit against its first parent, with
// rename detection disabled, and parses the result via pkg/patch.
func (g *Git) ReadHunks(ctx context.Context, commit string, startingHunkID int) ([]diffmodel.Hunk, []diffmodel.FileChange, int, error) {
	out, err := g.run(ctx, "diff", "--no-renames", "--unified=3", commit+"^", commit)
	if err != nil {
		return nil, nil, startingHunkID, err
	}
	return parseDiffInto(string(out), []string{commit}, startingHunkID)
}

// GetFilesChangedInCommit lists every file touched by commit.
func (g *Git) GetFilesChangedInCommit(ctx context.Context, commit string) ([]string, error) {
	return g.runLines(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", "--no-renames", commit)
}

// GetNewFilesInCommit lists files created by commit.
func (g *Git) GetNewFilesInCommit(ctx context.Context, commit string) ([]string, error) {
	out, err := g.runLines(ctx, "diff-tree", "--no-commit-id", "--name-status", "-r", "--no-renames", commit)
	if err != nil {
		return nil, err
	}
	var created []string
	for _, line := range out {
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) == 2 && fields[0] == "A" {
			created = append(created, fields[1])
		}
	}
	return created, nil
}

// GetWorkingTreeDiff returns the unstaged diff, rename detection disabled.
func (g *Git) GetWorkingTreeDiff(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "diff", "--no-renames")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DiffTrees diffs two tree-ish identifiers, rename detection disabled.
func (g *Git) DiffTrees(ctx context.Context, left, right string) (string, error) {
	out, err := g.run(ctx, "diff", "--no-renames", left, right)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FileInIndex reports whether path currently exists in the index.
func (g *Git) FileInIndex(ctx context.Context, path string) (bool, error) {
	_, err := g.run(ctx, "ls-files", "--error-unmatch", "--", path)
	if err != nil {
		return false, nil //nolint:nilerr -- git ls-files exits non-zero precisely to mean "not in index"
	}
	return true, nil
}

// ApplyPatchToIndex applies patchText to the index only.
func (g *Git) ApplyPatchToIndex(ctx context.Context, patchText string) error {
	if strings.TrimSpace(patchText) == "" {
		return nil
	}
	return g.runWithStdin(ctx, patchText, "apply", "--cached", "--unidiff-zero", "-")
}

// ApplyBinaryFile stages or removes a binary file according to its change
// type.
func (g *Git) ApplyBinaryFile(ctx context.Context, fc diffmodel.FileChange) error {
	if fc.ChangeType == diffmodel.ChangeDeleted {
		_, err := g.run(ctx, "rm", "--cached", "--", fc.FilePath)
		return err
	}
	_, err := g.run(ctx, "add", "--", fc.FilePath)
	return err
}

// StageAll stages every working-tree change.
func (g *Git) StageAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", "-A")
	return err
}

// StageFiles stages the given paths.
func (g *Git) StageFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := g.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit creates a commit from the current index and returns its id.
func (g *Git) Commit(ctx context.Context, message string, noVerify bool) (string, error) {
	args := []string{"commit", "--message", message}
	if noVerify {
		args = append(args, "--no-verify")
	}
	if _, err := g.run(ctx, args...); err != nil {
		return "", err
	}
	return g.GetHead(ctx)
}

// ResetTo moves HEAD and the index to ref, leaving the working tree
// untouched (a mixed `reset`), putting the index back at the range's base
// so the executor can stage each planned commit's hunks against it in turn.
func (g *Git) ResetTo(ctx context.Context, ref string) error {
	_, err := g.run(ctx, "reset", ref)
	return err
}

// ResetHard discards all working-tree and index state back to ref.
func (g *Git) ResetHard(ctx context.Context, ref string) error {
	_, err := g.run(ctx, "reset", "--hard", ref)
	return err
}

// SavePreOpHead records the current HEAD under refName, a full ref name
// such as refs/reorg/pre-op-head/<branch>.
func (g *Git) SavePreOpHead(ctx context.Context, refName string) error {
	head, err := g.GetHead(ctx)
	if err != nil {
		return err
	}
	_, err = g.run(ctx, "update-ref", refName, head)
	return err
}

// GetPreOpHead reads the commit id saved under refName.
func (g *Git) GetPreOpHead(ctx context.Context, refName string) (string, error) {
	return g.ResolveRef(ctx, refName)
}

// HasPreOpHead reports whether refName currently exists.
func (g *Git) HasPreOpHead(ctx context.Context, refName string) (bool, error) {
	_, err := g.run(ctx, "show-ref", "--verify", "--quiet", refName)
	if err != nil {
		return false, nil //nolint:nilerr -- git show-ref exits non-zero precisely to mean "ref absent"
	}
	return true, nil
}

// ClearPreOpHead deletes refName. A no-op if it does not exist.
func (g *Git) ClearPreOpHead(ctx context.Context, refName string) error {
	has, err := g.HasPreOpHead(ctx, refName)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}
	_, err = g.run(ctx, "update-ref", "-d", refName)
	return err
}

// CurrentBranchName returns the checked-out branch name, or "" in a
// detached-HEAD state.
func (g *Git) CurrentBranchName(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", nil //nolint:nilerr -- detached HEAD is a normal state, not a failure
	}
	return strings.TrimSpace(string(out)), nil
}

// GitDir returns the repository's private metadata directory.
func (g *Git) GitDir(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ValidateRangeForReorg checks the preconditions a reorganize operation
// requires before planning even begins: the range is non-empty, base is an
// ancestor of head, and the working tree is clean (a destructive reset to
// base is coming).
func (g *Git) ValidateRangeForReorg(ctx context.Context, base, head string) error {
	commits, err := g.ReadCommits(ctx, base, head)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		return errors.NewError(errors.ErrorTypeValidation).
			WithMessage("the selected range contains no commits").
			Build()
	}

	if _, err := g.run(ctx, "merge-base", "--is-ancestor", base, head); err != nil {
		return errors.NewError(errors.ErrorTypeValidation).
			WithMessagef("base %s is not an ancestor of head %s", base, head).
			WithCause(err).
			Build()
	}

	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(out)) != "" {
		return errors.NewError(errors.ErrorTypeValidation).
			WithMessage("working tree is not clean; commit or stash changes before reorganizing").
			Build()
	}

	return nil
}
