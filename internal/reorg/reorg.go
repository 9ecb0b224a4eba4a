// Package reorg is the thin external orchestration layer spec.md §1 calls
// for: it resolves the repository and the commit range, drives the core
// packages (pkg/strategy, pkg/planstore, pkg/executor) to do the actual
// work, and owns the one piece of process-wide state the core itself
// doesn't: the safety ref used to undo an in-progress reorganize.
package reorg

import (
	"context"

	"github.com/fumiya-kume/reorg/pkg/config"
	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/fumiya-kume/reorg/pkg/editor"
	"github.com/fumiya-kume/reorg/pkg/errors"
	"github.com/fumiya-kume/reorg/pkg/executor"
	"github.com/fumiya-kume/reorg/pkg/logger"
	"github.com/fumiya-kume/reorg/pkg/planstore"
	"github.com/fumiya-kume/reorg/pkg/strategy"
	"github.com/fumiya-kume/reorg/pkg/vcs"
)

const safetyRefPrefix = "refs/reorg/pre-op-head/"

// Orchestrator wires one repository's backing Git state to the core
// packages. The core itself stays unaware of the CLI and of where its
// inputs came from; the orchestrator stays unaware of hunk-level geometry.
type Orchestrator struct {
	cfg       *config.Config
	backend   *vcs.Git
	store     *planstore.Store
	safetyRef string
}

// Open resolves the repository containing startDir and prepares (without
// loading) its plan store namespace, scoped to the currently checked-out
// branch so concurrent reorganizes on different branches never collide.
func Open(ctx context.Context, cfg *config.Config, startDir string) (*Orchestrator, error) {
	root, err := vcs.DiscoverRoot(startDir)
	if err != nil {
		return nil, err
	}
	backend := vcs.New(root, cfg.Reorg.GitPath)

	gitDir, err := backend.GitDir(ctx)
	if err != nil {
		return nil, err
	}
	branch, err := backend.CurrentBranchName(ctx)
	if err != nil {
		return nil, err
	}

	namespace := planstore.SanitizeBranchNamespace(branch, branch == "")
	return &Orchestrator{
		cfg:       cfg,
		backend:   backend,
		store:     planstore.New(gitDir, cfg.Reorg.Namespace, namespace),
		safetyRef: safetyRefPrefix + namespace,
	}, nil
}

// Plan validates the requested range, reads its source commits and hunks,
// runs the configured strategy and returns the resulting plan unsaved. It
// never touches the working tree or the index.
func (o *Orchestrator) Plan(ctx context.Context, base, headRef string) (*diffmodel.SavedPlan, error) {
	strat, err := strategy.Lookup(o.cfg.Reorg.Strategy)
	if err != nil {
		return nil, err
	}

	head, err := o.backend.ResolveRef(ctx, headRef)
	if err != nil {
		return nil, err
	}
	baseID, err := o.backend.ResolveRef(ctx, base)
	if err != nil {
		return nil, err
	}

	if err := o.backend.ValidateRangeForReorg(ctx, baseID, head); err != nil {
		return nil, err
	}

	sourceCommits, err := o.backend.ReadCommits(ctx, baseID, head)
	if err != nil {
		return nil, err
	}

	var hunks []diffmodel.Hunk
	var fileChanges []diffmodel.FileChange
	nextHunkID := 0
	for _, sc := range sourceCommits {
		h, fc, next, err := o.backend.ReadHunks(ctx, sc.ID, nextHunkID)
		if err != nil {
			return nil, err
		}
		hunks = append(hunks, h...)
		fileChanges = append(fileChanges, fc...)
		nextHunkID = next
	}

	planned, err := strat(sourceCommits, hunks)
	if err != nil {
		return nil, err
	}
	for i := range planned {
		planned[i].ID = i
	}

	logger.Info("planned %d commits from %d source commits using strategy %q", len(planned), len(sourceCommits), o.cfg.Reorg.Strategy)

	return &diffmodel.SavedPlan{
		Version:       diffmodel.SavedPlanVersion,
		Strategy:      o.cfg.Reorg.Strategy,
		Base:          baseID,
		Head:          head,
		Commits:       planned,
		Hunks:         hunks,
		FileChanges:   fileChanges,
		SourceCommits: sourceCommits,
	}, nil
}

// Save persists plan and, unless the configuration disables it, records the
// current HEAD under the safety ref so Abort can restore it later.
func (o *Orchestrator) Save(ctx context.Context, plan *diffmodel.SavedPlan) error {
	if o.cfg.Reorg.KeepSafetyRef {
		if err := o.backend.SavePreOpHead(ctx, o.safetyRef); err != nil {
			return err
		}
	}
	if err := o.store.Save(plan); err != nil {
		return err
	}
	logger.Info("plan saved with %d commits pending", len(plan.Commits))
	return nil
}

// Resume loads the saved plan, resetting the branch to its base the first
// time it runs so the executor starts from a clean index, then runs the
// executor to completion or the next interruption, returning the (possibly
// partially applied) plan.
func (o *Orchestrator) Resume(ctx context.Context, opts executor.Options) (*diffmodel.SavedPlan, error) {
	plan, err := o.store.Load()
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.NewError(errors.ErrorTypePlan).
			WithMessage("no saved plan for this branch; run reorganize first").
			WithSuggestion("run `reorg reorganize <base>..<head>` to create one").
			Build()
	}

	if plan.NextCommitIndex == 0 {
		if err := o.backend.ResetTo(ctx, plan.Base); err != nil {
			return nil, err
		}
	}

	ed := o.cfg.Editor
	editCfg := editor.Config{Command: ed.Command, Args: ed.Args, Timeout: ed.Timeout}

	run := executor.New(o.backend, o.store, editCfg, opts, plan)
	runErr := run.Run(ctx)

	if plan.IsComplete() && !o.cfg.Reorg.KeepSafetyRef {
		_ = o.backend.ClearPreOpHead(ctx, o.safetyRef)
	}
	logger.Info("resumed plan: %d/%d commits applied", plan.NextCommitIndex, len(plan.Commits))
	return plan, runErr
}

// Status loads and returns the saved plan without executing anything. A nil
// plan with a nil error means no reorganize is in progress on this branch.
func (o *Orchestrator) Status(_ context.Context) (*diffmodel.SavedPlan, error) {
	return o.store.Load()
}

// WatchStatus reloads and emits the saved plan once immediately, then again
// every time it's rewritten, until stop is closed. Used by
// `reorg status --watch` to report progress without polling.
func (o *Orchestrator) WatchStatus(stop <-chan struct{}) (<-chan *diffmodel.SavedPlan, error) {
	events, err := o.store.WatchPlan(stop)
	if err != nil {
		return nil, err
	}

	plans := make(chan *diffmodel.SavedPlan, 1)
	go func() {
		defer close(plans)
		if plan, err := o.store.Load(); err == nil {
			plans <- plan
		}
		for range events {
			plan, err := o.store.Load()
			if err != nil {
				continue
			}
			select {
			case plans <- plan:
			default:
			}
		}
	}()
	return plans, nil
}

// Abort discards the in-progress plan: it resets the branch hard back to
// the pre-op safety ref, then clears both the ref and the saved plan.
func (o *Orchestrator) Abort(ctx context.Context) error {
	has, err := o.backend.HasPreOpHead(ctx, o.safetyRef)
	if err != nil {
		return err
	}
	if !has {
		return errors.NewError(errors.ErrorTypePlan).
			WithMessage("no safety ref recorded for this branch; nothing to abort").
			Build()
	}

	preOp, err := o.backend.GetPreOpHead(ctx, o.safetyRef)
	if err != nil {
		return err
	}
	if err := o.backend.ResetHard(ctx, preOp); err != nil {
		return err
	}
	if err := o.backend.ClearPreOpHead(ctx, o.safetyRef); err != nil {
		return err
	}
	if err := o.store.Delete(); err != nil {
		return err
	}
	logger.Info("aborted reorganize, restored HEAD to %s", preOp)
	return nil
}
