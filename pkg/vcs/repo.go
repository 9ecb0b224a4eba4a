package vcs

import (
	"github.com/go-git/go-git/v5"

	"github.com/fumiya-kume/reorg/pkg/errors"
)

// DiscoverRoot resolves the repository root containing startDir, walking up
// through parent directories the same way a bare `git` invocation would.
// Used once at startup so the exec-backed Git backend always runs with an
// absolute repository path rather than relying on the process's current
// directory staying put.
func DiscoverRoot(startDir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(startDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", errors.GitError("discover repository root", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.GitError("resolve worktree", err)
	}
	return wt.Filesystem.Root(), nil
}
