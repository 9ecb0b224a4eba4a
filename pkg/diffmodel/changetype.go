package diffmodel

// ChangeTypeFromHunk derives a ChangeType from a single hunk's geometry
// alone: old_count==0 && new_count>0 is Added; old_count>0 && new_count==0
// is Deleted; anything else is Modified. This description reflects only
// what the hunk's geometry says; the patch context may override it with
// live index state.
func ChangeTypeFromHunk(h *Hunk) ChangeType {
	switch {
	case h.OldCount == 0 && h.NewCount > 0:
		return ChangeAdded
	case h.OldCount > 0 && h.NewCount == 0:
		return ChangeDeleted
	default:
		return ChangeModified
	}
}

// ChangeTypeFromHunks derives a ChangeType from a list of hunks for one
// file: the type of the first hunk. In a well-formed diff all hunks for one
// file agree.
func ChangeTypeFromHunks(hs []*Hunk) ChangeType {
	if len(hs) == 0 {
		return ChangeModified
	}
	return ChangeTypeFromHunk(hs[0])
}
