// Package github provides the thin, optional GitHub integration used by
// `reorg show` to render a range summary enriched with PR/issue titles.
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gogh "github.com/cli/go-gh/v2"
	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/google/go-github/v60/github"
)

// Client wraps the GitHub REST API, rate-limited to 5000 requests per hour.
// Its requests carry no credentials (see authTransport).
type Client struct {
	apiClient   *github.Client
	rateLimiter *RateLimiter
}

// NewClient creates a new GitHub client. It fails when the GitHub CLI REST
// client cannot be created, but does not use that client's credentials.
func NewClient() (*Client, error) {
	// Create GitHub CLI REST client (handles auth automatically)
	ghClient, err := api.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub CLI client: %w", err)
	}

	// Create GitHub API client; authTransport adds no credentials
	httpClient := &http.Client{
		Transport: &authTransport{ghClient: ghClient},
		Timeout:   30 * time.Second,
	}

	apiClient := github.NewClient(httpClient)

	// Create rate limiter (GitHub allows 5000 requests/hour for authenticated users)
	rateLimiter := NewRateLimiter(5000, time.Hour)

	return &Client{
		apiClient:   apiClient,
		rateLimiter: rateLimiter,
	}, nil
}

// authTransport implements http.RoundTripper by passing each request to
// http.DefaultTransport unchanged; no Authorization header is added.
type authTransport struct {
	ghClient *api.RESTClient
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// ghClient is not consulted; the request goes out unauthenticated.
	return http.DefaultTransport.RoundTrip(req)
}

// CurrentRepository resolves owner/repo from the working tree's remote, the
// same way `gh` itself infers the repository for an unqualified command.
func (c *Client) CurrentRepository(ctx context.Context) (owner, repo string, err error) {
	repository, err := gogh.CurrentRepository()
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve the current GitHub repository: %w", err)
	}
	return repository.Owner(), repository.Name(), nil
}

// ReferenceTitle fetches the title of whichever of a pull request or issue
// owns number, trying pull requests first since merged PR numbers and issue
// numbers share one counter on GitHub.
func (c *Client) ReferenceTitle(ctx context.Context, owner, repo string, number int) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	if pr, _, err := c.apiClient.PullRequests.Get(ctx, owner, repo, number); err == nil {
		return pr.GetTitle(), nil
	}

	issue, _, err := c.apiClient.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		if ghErr, ok := err.(*github.ErrorResponse); ok && ghErr.Response.StatusCode == 404 {
			return "", fmt.Errorf("no pull request or issue #%d in %s/%s", number, owner, repo)
		}
		return "", fmt.Errorf("failed to look up #%d in %s/%s: %w", number, owner, repo, err)
	}

	return issue.GetTitle(), nil
}

// IsAuthenticated checks if the client is properly authenticated
func (c *Client) IsAuthenticated(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	_, _, err := c.apiClient.Users.Get(ctx, "")
	if err != nil {
		if ghErr, ok := err.(*github.ErrorResponse); ok && ghErr.Response.StatusCode == 401 {
			return fmt.Errorf("not authenticated - run 'gh auth login' to authenticate")
		}
		return fmt.Errorf("authentication check failed: %w", err)
	}

	return nil
}

// GetRateLimit returns the current rate limit status
func (c *Client) GetRateLimit(ctx context.Context) (*github.RateLimits, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	rateLimits, _, err := c.apiClient.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limit: %w", err)
	}

	return rateLimits, nil
}
