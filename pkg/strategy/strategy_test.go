package strategy

import (
	"testing"

	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hunk(id int, file string, sources ...string) diffmodel.Hunk {
	return diffmodel.Hunk{
		ID:                  id,
		FilePath:            file,
		OldStart:            1,
		OldCount:            1,
		NewStart:            1,
		NewCount:            1,
		Lines:               []diffmodel.DiffLine{{Kind: diffmodel.Added, Text: "x"}},
		LikelySourceCommits: sources,
	}
}

func TestLookupResolvesRegisteredNames(t *testing.T) {
	for _, name := range []string{"preserve", "by-file", "squash", "absorb"} {
		s, err := Lookup(name)
		require.NoError(t, err)
		require.NotNil(t, s)
	}
}

func TestLookupRejectsUnknownName(t *testing.T) {
	_, err := Lookup("rebase")
	assert.Error(t, err)
}

func TestPreserveGroupsByOwningSourceCommit(t *testing.T) {
	commits := []diffmodel.SourceCommit{
		{ID: "abc", ShortMessage: "First"},
		{ID: "def", ShortMessage: "Second"},
	}
	hunks := []diffmodel.Hunk{
		hunk(0, "a.txt", "abc"),
		hunk(1, "b.txt", "def"),
		hunk(2, "a.txt", "abc"),
	}

	planned, err := Preserve(commits, hunks)
	require.NoError(t, err)
	require.Len(t, planned, 2)
	assert.Equal(t, "First", planned[0].ShortDescription)
	assert.Len(t, planned[0].Changes, 2)
	assert.Equal(t, "Second", planned[1].ShortDescription)
	assert.Len(t, planned[1].Changes, 1)
}

func TestPreserveSkipsLikelySourcesOutsideRange(t *testing.T) {
	commits := []diffmodel.SourceCommit{{ID: "abc", ShortMessage: "Only"}}
	hunks := []diffmodel.Hunk{hunk(0, "a.txt", "zzz", "abc")}

	planned, err := Preserve(commits, hunks)
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Equal(t, "Only", planned[0].ShortDescription)
}

func TestPreserveRejectsEmptyHunks(t *testing.T) {
	_, err := Preserve(nil, nil)
	assert.Error(t, err)
}

func TestByFileGroupsByPathInSortedOrder(t *testing.T) {
	hunks := []diffmodel.Hunk{
		hunk(0, "src/main.go"),
		hunk(1, "src/lib.go"),
		hunk(2, "src/main.go"),
		hunk(3, "tests/test.go"),
	}

	planned, err := ByFile(nil, hunks)
	require.NoError(t, err)
	require.Len(t, planned, 3)

	assert.Contains(t, planned[0].ShortDescription, "lib.go")
	assert.Contains(t, planned[1].ShortDescription, "main.go")
	assert.Len(t, planned[1].Changes, 2)
	assert.Contains(t, planned[2].ShortDescription, "test.go")
}

func TestByFileRejectsEmptyHunks(t *testing.T) {
	_, err := ByFile(nil, nil)
	assert.Error(t, err)
}

func TestSquashWithSingleSourceKeepsItsMessage(t *testing.T) {
	commits := []diffmodel.SourceCommit{{ID: "abc", ShortMessage: "Fix bug"}}
	hunks := []diffmodel.Hunk{hunk(0, "a.txt"), hunk(1, "a.txt")}

	planned, err := Squash(commits, hunks)
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Equal(t, "Fix bug", planned[0].ShortDescription)
	assert.Len(t, planned[0].Changes, 2)
}

func TestSquashWithMultipleSourcesSummarizes(t *testing.T) {
	commits := []diffmodel.SourceCommit{
		{ID: "abc", ShortMessage: "First"},
		{ID: "def", ShortMessage: "Second"},
	}
	hunks := []diffmodel.Hunk{hunk(0, "a.txt"), hunk(1, "b.txt"), hunk(2, "a.txt")}

	planned, err := Squash(commits, hunks)
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Contains(t, planned[0].ShortDescription, "Squashed 2 commits")
	assert.Contains(t, planned[0].LongDescription, "- First")
	assert.Contains(t, planned[0].LongDescription, "- Second")
	assert.Len(t, planned[0].Changes, 3)
}

func TestSquashRejectsEmptyHunks(t *testing.T) {
	_, err := Squash(nil, nil)
	assert.Error(t, err)
}

func TestAbsorbGroupsByStrongestLikelySourceAndNamesAsFixup(t *testing.T) {
	commits := []diffmodel.SourceCommit{{ID: "abc", ShortMessage: "Add feature"}}
	hunks := []diffmodel.Hunk{
		hunk(0, "a.txt", "abc"),
		hunk(1, "b.txt", "abc"),
		hunk(2, "c.txt"),
	}

	planned, err := Absorb(commits, hunks)
	require.NoError(t, err)
	require.Len(t, planned, 2)
	assert.Equal(t, "fixup! Add feature", planned[0].ShortDescription)
	assert.Len(t, planned[0].Changes, 2)
	assert.Equal(t, "Uncategorized changes", planned[1].ShortDescription)
	assert.Len(t, planned[1].Changes, 1)
}

func TestAbsorbFallsBackToShaWhenSourceUnknown(t *testing.T) {
	hunks := []diffmodel.Hunk{hunk(0, "a.txt", "zzz")}

	planned, err := Absorb(nil, hunks)
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Equal(t, "fixup! zzz", planned[0].ShortDescription)
}

func TestAbsorbRejectsEmptyHunks(t *testing.T) {
	_, err := Absorb(nil, nil)
	assert.Error(t, err)
}
