package github

import (
	"context"
	"fmt"

	"github.com/fumiya-kume/reorg/pkg/errors"
)

// Service provides the high-level GitHub operations behind `reorg show`.
type Service struct {
	client RangeRenderer
}

// NewService creates a new GitHub service
func NewService() (*Service, error) {
	client, err := NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	return &Service{
		client: client,
	}, nil
}

// CurrentRepository resolves the owner/repo the working tree points at.
func (s *Service) CurrentRepository(ctx context.Context) (owner, repo string, err error) {
	return s.client.CurrentRepository(ctx)
}

// ReferenceTitle fetches one PR/issue title through
// errors.RetryGitHubOperation, which retries only errors of ErrorTypeGitHub;
// Client.ReferenceTitle returns plain wrapped errors, so a failed lookup is
// not retried. Any lookup failure, not only a not-found, yields ("", nil),
// so a commit trailer referencing a stale or cross-repository number does
// not fail the whole `reorg show` render.
func (s *Service) ReferenceTitle(ctx context.Context, owner, repo string, number int) (string, error) {
	var title string
	retryErr := errors.RetryGitHubOperation(ctx, func() error {
		var err error
		title, err = s.client.ReferenceTitle(ctx, owner, repo, number)
		return err
	})
	if retryErr != nil {
		return "", nil
	}
	return title, nil
}

// Close closes the GitHub service and cleans up resources
func (s *Service) Close() error {
	return nil
}
