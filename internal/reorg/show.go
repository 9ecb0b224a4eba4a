package reorg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/fumiya-kume/reorg/pkg/github"
	"github.com/fumiya-kume/reorg/pkg/logger"
)

var referencePattern = regexp.MustCompile(`#(\d+)`)

// RangeEntry is one line of a `reorg show` render: a source commit plus the
// title of whichever pull request or issue its message references, when one
// could be resolved.
type RangeEntry struct {
	Commit         diffmodel.SourceCommit
	ReferenceTitle string // empty when unresolved or none referenced
}

// Show reads the source commits in (base, head] and renders them, enriched
// with referenced PR/issue titles when the current repository resolves to a
// GitHub remote and the GitHub integration is enabled. A missing or
// unauthenticated GitHub integration falls back to plain SourceCommit data
// rather than failing the render.
func (o *Orchestrator) Show(ctx context.Context, base, headRef string) ([]RangeEntry, error) {
	head, err := o.backend.ResolveRef(ctx, headRef)
	if err != nil {
		return nil, err
	}
	baseID, err := o.backend.ResolveRef(ctx, base)
	if err != nil {
		return nil, err
	}

	commits, err := o.backend.ReadCommits(ctx, baseID, head)
	if err != nil {
		return nil, err
	}

	entries := make([]RangeEntry, len(commits))
	for i, c := range commits {
		entries[i] = RangeEntry{Commit: c}
	}

	if !o.cfg.GitHub.UseCLI {
		return entries, nil
	}

	svc, err := github.NewService()
	if err != nil {
		logger.Debug("show: GitHub integration unavailable: %v", err)
		return entries, nil
	}
	defer svc.Close() //nolint:errcheck -- best-effort cleanup, nothing to report

	owner, repo, err := svc.CurrentRepository(ctx)
	if err != nil {
		logger.Debug("show: not a GitHub repository: %v", err)
		return entries, nil
	}

	for i := range entries {
		number, ok := firstReference(entries[i].Commit.LongMessage)
		if !ok {
			continue
		}
		title, err := svc.ReferenceTitle(ctx, owner, repo, number)
		if err != nil || title == "" {
			continue
		}
		entries[i].ReferenceTitle = title
	}

	return entries, nil
}

// firstReference returns the first "#NNN" issue/PR reference in message, if
// any.
func firstReference(message string) (int, bool) {
	m := referencePattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Render formats entries as the human-readable lines `reorg show` prints.
func Render(entries []RangeEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s", shortSHA(e.Commit.ID), e.Commit.ShortMessage)
		if e.ReferenceTitle != "" {
			fmt.Fprintf(&b, "  (%s)", e.ReferenceTitle)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func shortSHA(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
