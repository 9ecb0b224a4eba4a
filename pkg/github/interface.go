package github

import "context"

// RangeRenderer is what `reorg show` needs from GitHub: which repository the
// working tree's remote points at, and the title of a pull request or issue
// referenced by a source commit's trailer.
type RangeRenderer interface {
	CurrentRepository(ctx context.Context) (owner, repo string, err error)
	ReferenceTitle(ctx context.Context, owner, repo string, number int) (string, error)
}

// Ensure our Client implements the interface.
var _ RangeRenderer = (*Client)(nil)
