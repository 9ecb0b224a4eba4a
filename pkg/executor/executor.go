// Package executor implements the Plan Executor (spec §4.E): the resumable
// state machine that drains a SavedPlan one planned commit at a time,
// staging content hunks, binary files and mode changes through the Patch
// Context, and persisting progress after every commit.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/fumiya-kume/reorg/pkg/cancel"
	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/fumiya-kume/reorg/pkg/editor"
	"github.com/fumiya-kume/reorg/pkg/errors"
	"github.com/fumiya-kume/reorg/pkg/patch"
	"github.com/fumiya-kume/reorg/pkg/planstore"
	"github.com/fumiya-kume/reorg/pkg/vcs"
)

// Options carries the per-run flags the contract names.
type Options struct {
	NoVerify bool
	NoEditor bool
}

// Executor drives one SavedPlan to completion (or to the next interruption).
type Executor struct {
	backend vcs.Backend
	store   *planstore.Store
	editCfg editor.Config
	opts    Options

	plan *diffmodel.SavedPlan

	hunksByID  map[int]*diffmodel.Hunk
	fileByPath map[string]*diffmodel.FileChange

	appliedHunksByFile  map[string][]*diffmodel.Hunk
	extraChangesApplied bool
}

// New builds an Executor for plan, wiring it to backend for version-control
// operations, store for persistence, and editCfg for composing commit
// messages when opts.NoEditor is false.
func New(backend vcs.Backend, store *planstore.Store, editCfg editor.Config, opts Options, plan *diffmodel.SavedPlan) *Executor {
	e := &Executor{
		backend:             backend,
		store:               store,
		editCfg:             editCfg,
		opts:                opts,
		plan:                plan,
		hunksByID:           make(map[int]*diffmodel.Hunk, len(plan.Hunks)),
		fileByPath:          make(map[string]*diffmodel.FileChange, len(plan.FileChanges)),
		appliedHunksByFile:  make(map[string][]*diffmodel.Hunk),
		extraChangesApplied: plan.NextCommitIndex > 0,
	}

	for i := range plan.Hunks {
		h := &plan.Hunks[i]
		e.hunksByID[h.ID] = h
	}
	for i := range plan.FileChanges {
		fc := &plan.FileChanges[i]
		e.fileByPath[fc.FilePath] = fc
	}

	e.replayAppliedHunks()

	return e
}

// replayAppliedHunks reconstructs appliedHunksByFile from every commit
// before NextCommitIndex, so line-number adjustment for the first resumed
// commit accounts for everything already on disk.
func (e *Executor) replayAppliedHunks() {
	for i := 0; i < e.plan.NextCommitIndex && i < len(e.plan.Commits); i++ {
		for _, hunk := range e.resolveChanges(e.plan.Commits[i].Changes) {
			e.appliedHunksByFile[hunk.FilePath] = append(e.appliedHunksByFile[hunk.FilePath], hunk)
		}
	}
}

// resolveChanges turns a commit's PlannedChange[] into concrete *Hunk
// values (step 2 of the main loop).
func (e *Executor) resolveChanges(changes []diffmodel.PlannedChange) []*diffmodel.Hunk {
	hunks := make([]*diffmodel.Hunk, 0, len(changes))
	for _, c := range changes {
		switch c.Kind {
		case diffmodel.ExistingHunk:
			if h, ok := e.hunksByID[c.HunkID]; ok {
				hunks = append(hunks, h)
			}
		case diffmodel.NewHunkChange:
			if c.NewHunk != nil {
				hunks = append(hunks, c.NewHunk)
			}
		}
	}
	return hunks
}

// Run drains every pending commit starting at plan.NextCommitIndex. It
// returns on the first error (including Cancelled), leaving the SavedPlan
// consistent on disk at the last completed step boundary.
func (e *Executor) Run(ctx context.Context) error {
	for e.plan.NextCommitIndex < len(e.plan.Commits) {
		if err := e.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// step executes the main-loop body for exactly one commit at
// plan.NextCommitIndex.
func (e *Executor) step(ctx context.Context) error {
	// 1. Cancellation check.
	if cancel.IsCancelled() {
		return errors.CancelledError()
	}

	i := e.plan.NextCommitIndex
	entry := &e.plan.Commits[i]

	// 2. Resolve.
	resolved := e.resolveChanges(entry.Changes)

	// 3. Adjust line numbers.
	patch.SortHunksByOldStart(resolved)
	adjusted := patch.AdjustHunksForCurrentIndex(resolved, e.appliedHunksByFile)

	hasPendingExtra := !e.extraChangesApplied && e.hasExtraChanges()

	// 5. Skip decision.
	if len(adjusted) == 0 && !hasPendingExtra {
		entry.CreatedSHA = diffmodel.SkippedSHA
		e.plan.NextCommitIndex++
		if err := e.store.Save(e.plan); err != nil {
			return err
		}
		return nil
	}

	// 4. Compose the editor message.
	message, err := e.composeMessage(entry, adjusted)
	if err != nil {
		return err
	}

	// 6. Stage hunks.
	if err := e.stageHunks(ctx, adjusted); err != nil {
		return err
	}

	// 7. Apply extra changes (once).
	if !e.extraChangesApplied {
		if err := e.applyExtraChanges(ctx); err != nil {
			return err
		}
		e.extraChangesApplied = true
	}

	// 8. Commit.
	sha, err := e.backend.Commit(ctx, message, e.opts.NoVerify)
	if err != nil {
		return err
	}
	entry.CreatedSHA = sha
	e.plan.NextCommitIndex++
	if err := e.store.Save(e.plan); err != nil {
		return err
	}

	// 9. Record.
	for _, h := range resolved {
		e.appliedHunksByFile[h.FilePath] = append(e.appliedHunksByFile[h.FilePath], h)
	}

	return nil
}

// hasExtraChanges reports whether any binary file or mode-only change is
// still pending application.
func (e *Executor) hasExtraChanges() bool {
	for _, fc := range e.fileByPath {
		if fc.IsBinary {
			return true
		}
		if !fc.HasContentHunks && fc.OldMode != "" && fc.NewMode != "" && fc.OldMode != fc.NewMode {
			return true
		}
	}
	return false
}

// composeMessage builds the commit message: verbatim from the plan when
// NoEditor, else via the editor collaborator.
func (e *Executor) composeMessage(entry *diffmodel.PlannedCommit, hunks []*diffmodel.Hunk) (string, error) {
	if e.opts.NoEditor {
		return joinDescription(entry.ShortDescription, entry.LongDescription), nil
	}

	initial := joinDescription(entry.ShortDescription, entry.LongDescription)
	help := e.helpLines(hunks)

	body, err := editor.Edit(e.editCfg, initial, help)
	if err != nil {
		return "", err
	}
	return body, nil
}

func (e *Executor) helpLines(hunks []*diffmodel.Hunk) []string {
	files := map[string]bool{}
	sources := map[string]bool{}
	var sourceOrder []string
	for _, h := range hunks {
		files[h.FilePath] = true
		for _, sc := range h.LikelySourceCommits {
			if !sources[sc] {
				sources[sc] = true
				sourceOrder = append(sourceOrder, sc)
			}
		}
	}

	lines := []string{
		"Please enter the commit message. Lines starting with '#' are ignored.",
		fmt.Sprintf("Files: %d, Hunks: %d", len(files), len(hunks)),
	}
	if len(sourceOrder) > 0 {
		lines = append(lines, "Source commits: "+strings.Join(sourceOrder, ", "))
	}
	return lines
}

func joinDescription(short, long string) string {
	if long == "" {
		return short
	}
	return short + "\n\n" + long
}

// stageHunks groups adjusted hunks by file, sorts each group by old_start,
// and stages each file's patch via the Patch Context and the backing apply
// operation.
func (e *Executor) stageHunks(ctx context.Context, adjusted []*diffmodel.Hunk) error {
	order, byFile := patch.GroupByFile(adjusted)
	patchCtx := patch.NewContext(e.plan.FileChanges, e.nextHunkID())

	for _, path := range order {
		hunks := byFile[path]
		patch.SortHunksByOldStart(hunks)

		inIndex, err := e.backend.FileInIndex(ctx, path)
		if err != nil {
			return err
		}

		result := patchCtx.GeneratePatch(path, hunks, inIndex)
		if err := patch.ValidateStructure(result.PatchText); err != nil {
			return err
		}
		if err := e.backend.ApplyPatchToIndex(ctx, result.PatchText); err != nil {
			return err
		}
	}

	return nil
}

func (e *Executor) nextHunkID() int {
	maxID := -1
	for id := range e.hunksByID {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// applyExtraChanges stages every binary file and every mode-only change not
// tied to the current commit's content hunks.
func (e *Executor) applyExtraChanges(ctx context.Context) error {
	for _, fc := range e.plan.FileChanges {
		if fc.IsBinary {
			if err := e.backend.ApplyBinaryFile(ctx, fc); err != nil {
				return err
			}
			continue
		}
		if !fc.HasContentHunks && fc.OldMode != "" && fc.NewMode != "" && fc.OldMode != fc.NewMode {
			modePatch := fmt.Sprintf("diff --git a/%s b/%s\nold mode %s\nnew mode %s\n", fc.FilePath, fc.FilePath, fc.OldMode, fc.NewMode)
			if err := e.backend.ApplyPatchToIndex(ctx, modePatch); err != nil {
				return err
			}
		}
	}
	return nil
}
