// Package planstore implements the Plan Store (spec §4.F): the versioned
// JSON on-disk representation of a SavedPlan, namespaced per branch so
// concurrent reorganizes on different branches of the same repository do
// not collide, and rewritten atomically between commits.
package planstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/fumiya-kume/reorg/pkg/errors"
)

const planFileName = "plan.json"

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SanitizeBranchNamespace turns a branch name into the path-safe namespace
// component: non-alphanumerics become "-", the result is lowercased;
// detached HEAD uses the literal "detached"; an empty sanitized result
// falls back to "branch".
func SanitizeBranchNamespace(branchName string, detached bool) string {
	if detached {
		return "detached"
	}
	sanitized := strings.ToLower(nonAlphanumeric.ReplaceAllString(branchName, "-"))
	sanitized = strings.Trim(sanitized, "-")
	if sanitized == "" {
		return "branch"
	}
	return sanitized
}

// Store reads and writes one branch namespace's SavedPlan under
// <repoMetadataDir>/<toolNamespace>/<branchNamespace>/plan.json.
type Store struct {
	dir string
}

// New builds a Store rooted at repoMetadataDir (typically the repository's
// private metadata directory, e.g. the path returned by `git rev-parse
// --git-dir`), scoped to toolNamespace and branchNamespace.
func New(repoMetadataDir, toolNamespace, branchNamespace string) *Store {
	return &Store{dir: filepath.Join(repoMetadataDir, toolNamespace, branchNamespace)}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, planFileName)
}

// Exists reports whether a SavedPlan is present for this namespace.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// Load reads the SavedPlan for this namespace. Returns (nil, nil) when no
// plan file exists (the "NoPlan" case); any other failure is a
// PersistenceError.
func (s *Store) Load() (*diffmodel.SavedPlan, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.PersistenceError("load plan", err)
	}

	var plan diffmodel.SavedPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, errors.PersistenceError("decode plan", err)
	}
	if plan.Version > diffmodel.SavedPlanVersion {
		return nil, errors.NewError(errors.ErrorTypePlan).
			WithMessagef("plan file version %d is newer than this build supports (%d)", plan.Version, diffmodel.SavedPlanVersion).
			Build()
	}
	if err := validateStructure(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Save writes the SavedPlan for this namespace, atomically: the document is
// written to a temp file in the same directory, then renamed into place, so
// a concurrent reader never observes a partially written file.
func (s *Store) Save(plan *diffmodel.SavedPlan) error {
	if plan.Version == 0 {
		plan.Version = diffmodel.SavedPlanVersion
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.PersistenceError("create plan directory", err)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return errors.PersistenceError("encode plan", err)
	}

	tmp, err := os.CreateTemp(s.dir, "plan-*.json.tmp")
	if err != nil {
		return errors.PersistenceError("create temp plan file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.PersistenceError("write temp plan file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.PersistenceError("close temp plan file", err)
	}

	if err := os.Rename(tmpPath, s.path()); err != nil {
		os.Remove(tmpPath)
		return errors.PersistenceError("rename plan file into place", err)
	}

	return nil
}

// Delete removes the SavedPlan for this namespace. Safe to call when no
// plan file exists.
func (s *Store) Delete() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return errors.PersistenceError("delete plan", err)
	}
	return nil
}

// WatchPlan reports a notification each time this namespace's plan file is
// written, for a caller (e.g. `reorg status --watch`) that wants to report
// progress without polling. The returned channel is closed, and the watcher
// stopped, when stop is closed.
func (s *Store) WatchPlan(stop <-chan struct{}) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.PersistenceError("create plan watcher", err)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		watcher.Close()
		return nil, errors.PersistenceError("create plan directory", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, errors.PersistenceError("watch plan directory", err)
	}

	events := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(events)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != planFileName {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case events <- struct{}{}:
				default:
				}
			case <-watcher.Errors:
				return
			case <-stop:
				return
			}
		}
	}()

	return events, nil
}

// validateStructure checks the structural integrity invariants a loaded
// SavedPlan must satisfy (spec §7 "InvalidPlan").
func validateStructure(plan *diffmodel.SavedPlan) error {
	if plan.NextCommitIndex < 0 || plan.NextCommitIndex > len(plan.Commits) {
		return errors.NewError(errors.ErrorTypePlan).
			WithMessagef("invalid plan: next_commit_index %d out of range [0,%d]", plan.NextCommitIndex, len(plan.Commits)).
			Build()
	}

	seen := make(map[int]bool, len(plan.Commits))
	for i, c := range plan.Commits {
		if seen[c.ID] {
			return errors.NewError(errors.ErrorTypePlan).
				WithMessagef("invalid plan: duplicate commit id %d", c.ID).
				Build()
		}
		seen[c.ID] = true

		for _, prereq := range c.Prerequisites {
			if !seen[prereq] {
				return errors.NewError(errors.ErrorTypePlan).
					WithMessagef("invalid plan: commit %d at index %d has prerequisite %d not satisfied by an earlier commit", c.ID, i, prereq).
					Build()
			}
		}

		if i < plan.NextCommitIndex && c.CreatedSHA == "" {
			return errors.NewError(errors.ErrorTypePlan).
				WithMessagef("invalid plan: commit %d at index %d precedes next_commit_index but has no created_sha", c.ID, i).
				Build()
		}
	}

	return nil
}
