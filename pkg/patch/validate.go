package patch

import (
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/fumiya-kume/reorg/pkg/errors"
)

// ValidateStructure is a post-write sanity check on writer output: it feeds
// the emitted text back through go-diff's multi-file parser as a
// structural well-formedness double-check before the text is handed to the
// backing apply operation.
//
// go-diff has no notion of mode-only changes, binary markers, or this
// package's stable hunk ids, so it cannot serve as the primary parser (see
// Parse); it is, however, an apt secondary check for the one concern it
// does cover well: is the emitted text syntactically a unified diff.
func ValidateStructure(patchText string) error {
	if strings.TrimSpace(patchText) == "" {
		return nil
	}

	reader := godiff.NewMultiFileDiffReader(strings.NewReader(patchText))
	if _, err := reader.ReadAllFiles(); err != nil {
		return errors.NewError(errors.ErrorTypeParse).
			WithMessage("writer produced a structurally invalid unified diff").
			WithCause(err).
			WithSeverity(errors.SeverityHigh).
			WithContext("patch_preview", truncate(patchText, 200)).
			Build()
	}

	return nil
}
