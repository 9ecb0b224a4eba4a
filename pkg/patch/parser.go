// Package patch implements the unified-diff parser and writer, the
// synthetic hunk transformations, and the patch-application context that
// decides, per file and per step of execution, which change type and hunk
// shape to hand to the backing version-control apply operation.
package patch

import (
	"strconv"
	"strings"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/fumiya-kume/reorg/pkg/errors"
)

const (
	prefixDiffGit    = "diff --git "
	prefixNewMode    = "new file mode "
	prefixDeletedMod = "deleted file mode "
	prefixOldMode    = "old mode "
	prefixNewModeOnl = "new mode "
	prefixOldPath    = "--- "
	prefixNewPath    = "+++ "
	prefixBinary     = "Binary files "
	prefixIndex      = "index "
	prefixSimilarity = "similarity"
	prefixRenameFrom = "rename from"
	prefixRenameTo   = "rename to"
	prefixHunkHeader = "@@ "
	prefixNoNewline  = "\\ No newline at end of file"
)

// ParseResult is the output of parsing one unified-diff text blob.
type ParseResult struct {
	Hunks       []*diffmodel.Hunk
	FileChanges []*diffmodel.FileChange
	NextHunkID  int
}

// fileBuilder accumulates file-level state while a `diff --git` block is
// being parsed.
type fileBuilder struct {
	path            string
	changeType      diffmodel.ChangeType
	changeTypeKnown bool
	oldMode         string
	newMode         string
	isBinary        bool
	hasContentHunks bool
}

// hunkBuilder accumulates lines for the hunk currently being parsed.
type hunkBuilder struct {
	hunk        *diffmodel.Hunk
	lastLineOld diffmodel.DiffLineKind
	lastLineNew diffmodel.DiffLineKind
	sawAnyLine  bool
}

// Parse parses a unified-diff text blob into hunks and file changes. The
// likelySourceCommits slice is attached to every hunk and file change
// produced, and startingHunkID is the first id to assign (ids increase by
// one per hunk encountered, in document order).
func Parse(text string, likelySourceCommits []string, startingHunkID int) (*ParseResult, error) {
	result := &ParseResult{NextHunkID: startingHunkID}

	var curFile *fileBuilder
	var curHunk *hunkBuilder

	finalizeHunk := func() {
		if curHunk == nil {
			return
		}
		result.Hunks = append(result.Hunks, curHunk.hunk)
		curHunk = nil
	}

	finalizeFile := func() {
		finalizeHunk()
		if curFile == nil {
			return
		}
		// A file is emitted into file_changes only if it carries mode
		// information or is binary; files with only content hunks are
		// represented solely by their hunks.
		if curFile.oldMode != "" || curFile.newMode != "" || curFile.isBinary {
			ct := curFile.changeType
			if !curFile.changeTypeKnown {
				ct = diffmodel.ChangeModified
			}
			result.FileChanges = append(result.FileChanges, &diffmodel.FileChange{
				FilePath:            curFile.path,
				ChangeType:          ct,
				OldMode:             curFile.oldMode,
				NewMode:             curFile.newMode,
				IsBinary:            curFile.isBinary,
				HasContentHunks:     curFile.hasContentHunks,
				LikelySourceCommits: append([]string(nil), likelySourceCommits...),
			})
		}
		curFile = nil
	}

	lines := splitLinesKeepEmpty(text)
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, prefixDiffGit):
			finalizeFile()
			curFile = &fileBuilder{}

		case strings.HasPrefix(line, prefixNewMode):
			if curFile == nil {
				return nil, errors.ParseError("new file mode before diff --git", nil)
			}
			curFile.changeType = diffmodel.ChangeAdded
			curFile.changeTypeKnown = true
			curFile.newMode = strings.TrimSpace(strings.TrimPrefix(line, prefixNewMode))

		case strings.HasPrefix(line, prefixDeletedMod):
			if curFile == nil {
				return nil, errors.ParseError("deleted file mode before diff --git", nil)
			}
			curFile.changeType = diffmodel.ChangeDeleted
			curFile.changeTypeKnown = true
			curFile.oldMode = strings.TrimSpace(strings.TrimPrefix(line, prefixDeletedMod))

		case strings.HasPrefix(line, prefixOldMode):
			if curFile == nil {
				return nil, errors.ParseError("old mode before diff --git", nil)
			}
			curFile.oldMode = strings.TrimSpace(strings.TrimPrefix(line, prefixOldMode))

		case strings.HasPrefix(line, prefixNewModeOnl):
			if curFile == nil {
				return nil, errors.ParseError("new mode before diff --git", nil)
			}
			curFile.newMode = strings.TrimSpace(strings.TrimPrefix(line, prefixNewModeOnl))

		case strings.HasPrefix(line, prefixOldPath):
			if curFile == nil {
				// Without a "diff --git" line (Write omits it when no mode
				// metadata is given), the "---" header begins the file.
				curFile = &fileBuilder{}
			}
			if curFile.changeTypeKnown && curFile.changeType == diffmodel.ChangeDeleted {
				curFile.path = trimDiffPath(strings.TrimPrefix(line, prefixOldPath))
			}

		case strings.HasPrefix(line, prefixNewPath):
			if curFile == nil {
				return nil, errors.ParseError("+++ line before diff --git", nil)
			}
			if p := trimDiffPath(strings.TrimPrefix(line, prefixNewPath)); p != "/dev/null" {
				curFile.path = p
			}

		case strings.HasPrefix(line, prefixBinary):
			if curFile == nil {
				return nil, errors.ParseError("binary marker before diff --git", nil)
			}
			curFile.isBinary = true

		case strings.HasPrefix(line, prefixIndex),
			strings.HasPrefix(line, prefixSimilarity),
			strings.HasPrefix(line, prefixRenameFrom),
			strings.HasPrefix(line, prefixRenameTo):
			// Ignored: rename detection is disabled, similarity/index lines
			// carry no semantic content this model needs.

		case strings.HasPrefix(line, prefixHunkHeader):
			finalizeHunk()
			if curFile == nil {
				return nil, errors.ParseError("hunk header before diff --git", nil)
			}
			curFile.hasContentHunks = true
			h, err := parseHunkHeader(line, result.NextHunkID, curFile.path, likelySourceCommits)
			if err != nil {
				return nil, err
			}
			result.NextHunkID++
			curHunk = &hunkBuilder{hunk: h}

		case strings.HasPrefix(line, prefixNoNewline):
			if curHunk == nil {
				continue
			}
			applyNoNewlineMarker(curHunk)

		case line == "":
			if curHunk != nil {
				appendLine(curHunk, diffmodel.Context, "")
			}

		case strings.HasPrefix(line, " "):
			if curHunk != nil {
				appendLine(curHunk, diffmodel.Context, line[1:])
			}

		case strings.HasPrefix(line, "+"):
			if curHunk != nil {
				appendLine(curHunk, diffmodel.Added, line[1:])
			}

		case strings.HasPrefix(line, "-"):
			if curHunk != nil {
				appendLine(curHunk, diffmodel.Removed, line[1:])
			}

		default:
			return nil, errors.ParseError("unrecognized line: "+truncate(line, 80), nil)
		}
	}

	finalizeFile()

	return result, nil
}

func appendLine(hb *hunkBuilder, kind diffmodel.DiffLineKind, text string) {
	hb.hunk.Lines = append(hb.hunk.Lines, diffmodel.DiffLine{Kind: kind, Text: text})
	hb.sawAnyLine = true
	if kind == diffmodel.Context || kind == diffmodel.Removed {
		hb.lastLineOld = kind
	}
	if kind == diffmodel.Context || kind == diffmodel.Added {
		hb.lastLineNew = kind
	}
}

// applyNoNewlineMarker marks the appropriate side(s) missing a trailing
// newline, based on the kind of the most recently appended line.
func applyNoNewlineMarker(hb *hunkBuilder) {
	if len(hb.hunk.Lines) == 0 {
		return
	}
	last := hb.hunk.Lines[len(hb.hunk.Lines)-1]
	switch last.Kind {
	case diffmodel.Context:
		hb.hunk.OldMissingNewlineAtEOF = true
		hb.hunk.NewMissingNewlineAtEOF = true
	case diffmodel.Added:
		hb.hunk.NewMissingNewlineAtEOF = true
	case diffmodel.Removed:
		hb.hunk.OldMissingNewlineAtEOF = true
	}
}

// parseHunkHeader parses a "@@ -a,b +c,d @@" line, tolerating the
// shorthand where an absent ",b"/",d" means count=1.
func parseHunkHeader(line string, id int, path string, likelySourceCommits []string) (*diffmodel.Hunk, error) {
	body := strings.TrimPrefix(line, prefixHunkHeader)
	if idx := strings.Index(body, "@@"); idx >= 0 {
		body = body[:idx]
	}
	fields := strings.Fields(body)
	if len(fields) < 2 {
		return nil, errors.NewError(errors.ErrorTypeParse).
			WithMessagef("invalid hunk header: %q", line).
			Build()
	}

	oldStart, oldCount, err := parseRange(fields[0], "-")
	if err != nil {
		return nil, err
	}
	newStart, newCount, err := parseRange(fields[1], "+")
	if err != nil {
		return nil, err
	}

	return &diffmodel.Hunk{
		ID:                  id,
		FilePath:            path,
		OldStart:            oldStart,
		OldCount:            oldCount,
		NewStart:            newStart,
		NewCount:            newCount,
		LikelySourceCommits: append([]string(nil), likelySourceCommits...),
	}, nil
}

// parseRange parses one side of a hunk header, e.g. "-2,1" or "+3".
func parseRange(field, sign string) (start, count int, err error) {
	if !strings.HasPrefix(field, sign) {
		return 0, 0, errors.NewError(errors.ErrorTypeParse).
			WithMessagef("invalid hunk header range %q: missing %q prefix", field, sign).
			Build()
	}
	body := field[len(sign):]

	parts := strings.SplitN(body, ",", 2)
	start, e := strconv.Atoi(parts[0])
	if e != nil || start < 0 {
		return 0, 0, errors.NewError(errors.ErrorTypeParse).
			WithMessagef("invalid hunk header start %q", parts[0]).
			WithCause(e).
			Build()
	}

	if len(parts) == 1 {
		return start, 1, nil
	}

	count, e = strconv.Atoi(parts[1])
	if e != nil || count < 0 {
		return 0, 0, errors.NewError(errors.ErrorTypeParse).
			WithMessagef("invalid hunk header count %q", parts[1]).
			WithCause(e).
			Build()
	}

	return start, count, nil
}

// trimDiffPath strips a leading "a/" or "b/" prefix and trailing
// whitespace/tab-appended timestamps some diff producers emit.
func trimDiffPath(p string) string {
	p = strings.TrimRight(p, "\n")
	if tab := strings.IndexByte(p, '\t'); tab >= 0 {
		p = p[:tab]
	}
	p = strings.TrimSpace(p)
	if p == "/dev/null" {
		return p
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

// splitLinesKeepEmpty splits on "\n", keeping empty lines inside the text
// (a blank context line) but dropping the empty element after a final
// newline, since a diff's last line is usually newline-terminated.
func splitLinesKeepEmpty(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
