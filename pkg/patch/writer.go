package patch

import (
	"fmt"
	"strings"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
)

// WriteOptions carries the optional mode/binary metadata accompanying a
// writer call.
type WriteOptions struct {
	OldMode string
	NewMode string
}

// Write produces a complete unified-diff patch for one file, given an
// explicit change type and the hunks to emit. The hunks must already be in
// the shape appropriate for changeType (callers needing a transformation
// should run CreateNewFileHunk/CreateDeleteFileHunk first).
func Write(path string, hunks []*diffmodel.Hunk, changeType diffmodel.ChangeType, opts WriteOptions) string {
	var b strings.Builder

	if opts.OldMode != "" || opts.NewMode != "" {
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
		switch changeType {
		case diffmodel.ChangeAdded:
			fmt.Fprintf(&b, "new file mode %s\n", opts.NewMode)
		case diffmodel.ChangeDeleted:
			fmt.Fprintf(&b, "deleted file mode %s\n", opts.OldMode)
		default:
			if opts.OldMode != "" && opts.NewMode != "" && opts.OldMode != opts.NewMode {
				fmt.Fprintf(&b, "old mode %s\nnew mode %s\n", opts.OldMode, opts.NewMode)
			}
		}
	}

	switch changeType {
	case diffmodel.ChangeAdded:
		fmt.Fprintf(&b, "--- /dev/null\n")
		fmt.Fprintf(&b, "+++ b/%s\n", path)
	case diffmodel.ChangeDeleted:
		fmt.Fprintf(&b, "--- a/%s\n", path)
		fmt.Fprintf(&b, "+++ /dev/null\n")
	default:
		fmt.Fprintf(&b, "--- a/%s\n", path)
		fmt.Fprintf(&b, "+++ b/%s\n", path)
	}

	for _, h := range hunks {
		writeHunk(&b, h)
	}

	return b.String()
}

// writeHunk emits one hunk's header and body, placing the "\ No newline at
// end of file" marker after the last line contributing to each affected
// side.
func writeHunk(b *strings.Builder, h *diffmodel.Hunk) {
	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)

	lastOldIdx, lastNewIdx := -1, -1
	for i, l := range h.Lines {
		if l.Kind == diffmodel.Context || l.Kind == diffmodel.Removed {
			lastOldIdx = i
		}
		if l.Kind == diffmodel.Context || l.Kind == diffmodel.Added {
			lastNewIdx = i
		}
	}

	// A Context line sits on both sides; if both EOF flags are set and the
	// last line is Context, the two checks below land on the same index and
	// the marker is emitted once.
	emittedAt := -1
	for i, l := range h.Lines {
		var prefix string
		switch l.Kind {
		case diffmodel.Added:
			prefix = "+"
		case diffmodel.Removed:
			prefix = "-"
		default:
			prefix = " "
		}
		fmt.Fprintf(b, "%s%s\n", prefix, l.Text)

		if h.OldMissingNewlineAtEOF && i == lastOldIdx && emittedAt != i {
			fmt.Fprintln(b, prefixNoNewline)
			emittedAt = i
		}
		if h.NewMissingNewlineAtEOF && i == lastNewIdx && emittedAt != i {
			fmt.Fprintln(b, prefixNoNewline)
			emittedAt = i
		}
	}
}

// CreateNewFileHunk concatenates all Added and Context lines from the
// inputs, re-tagging each as Added, and drops all Removed lines. Used when
// the target file must end up created from scratch even though the hunks
// originally described a modification.
func CreateNewFileHunk(path string, hunks []*diffmodel.Hunk, id int) *diffmodel.Hunk {
	var lines []diffmodel.DiffLine
	var sources []string
	seen := map[string]bool{}

	var firstMissingOld, lastMissingNew bool
	for i, h := range hunks {
		for _, l := range h.Lines {
			if l.Kind == diffmodel.Removed {
				continue
			}
			lines = append(lines, diffmodel.DiffLine{Kind: diffmodel.Added, Text: l.Text})
		}
		for _, sc := range h.LikelySourceCommits {
			if !seen[sc] {
				seen[sc] = true
				sources = append(sources, sc)
			}
		}
		if i == 0 {
			firstMissingOld = h.OldMissingNewlineAtEOF
		}
		if i == len(hunks)-1 {
			lastMissingNew = h.NewMissingNewlineAtEOF
		}
	}

	newStart := 0
	if len(lines) > 0 {
		newStart = 1
	}

	return &diffmodel.Hunk{
		ID:                     id,
		FilePath:               path,
		OldStart:               0,
		OldCount:               0,
		NewStart:               newStart,
		NewCount:               len(lines),
		Lines:                  lines,
		OldMissingNewlineAtEOF: firstMissingOld,
		NewMissingNewlineAtEOF: lastMissingNew,
		LikelySourceCommits:    sources,
	}
}

// CreateDeleteFileHunk concatenates all Removed and Context lines from the
// inputs, re-tagging each as Removed, and drops all Added lines. Symmetric
// to CreateNewFileHunk.
func CreateDeleteFileHunk(path string, hunks []*diffmodel.Hunk, id int) *diffmodel.Hunk {
	var lines []diffmodel.DiffLine
	var sources []string
	seen := map[string]bool{}

	var firstMissingOld, lastMissingNew bool
	for i, h := range hunks {
		for _, l := range h.Lines {
			if l.Kind == diffmodel.Added {
				continue
			}
			lines = append(lines, diffmodel.DiffLine{Kind: diffmodel.Removed, Text: l.Text})
		}
		for _, sc := range h.LikelySourceCommits {
			if !seen[sc] {
				seen[sc] = true
				sources = append(sources, sc)
			}
		}
		if i == 0 {
			firstMissingOld = h.OldMissingNewlineAtEOF
		}
		if i == len(hunks)-1 {
			lastMissingNew = h.NewMissingNewlineAtEOF
		}
	}

	oldStart := 0
	if len(lines) > 0 {
		oldStart = 1
	}

	return &diffmodel.Hunk{
		ID:                     id,
		FilePath:               path,
		OldStart:               oldStart,
		OldCount:               len(lines),
		NewStart:               0,
		NewCount:               0,
		Lines:                  lines,
		OldMissingNewlineAtEOF: firstMissingOld,
		NewMissingNewlineAtEOF: lastMissingNew,
		LikelySourceCommits:    sources,
	}
}
