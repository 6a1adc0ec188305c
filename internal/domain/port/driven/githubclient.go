package driven

import (
	"context"

	"github.com/ericfisherdev/prototypehub/internal/domain/model"
)

// GitHubClient defines the driven port for reading pull request activity from
// the GitHub API. All methods are read-only.
type GitHubClient interface {
	// FetchRateLimit returns the current core API quota.
	FetchRateLimit(ctx context.Context) (model.RateLimit, error)
	// FetchRecentPullRequests returns at most limit pull requests in any state,
	// newest first by creation time. Only the first page is requested.
	FetchRecentPullRequests(ctx context.Context, repoFullName string, limit int) ([]model.PullRequest, error)
	// FetchIssueComments returns the full PR-level comment thread in thread order.
	FetchIssueComments(ctx context.Context, repoFullName string, prNumber int) ([]model.IssueComment, error)
	// FetchPullRequestDiff returns the unified diff of a pull request.
	FetchPullRequestDiff(ctx context.Context, repoFullName string, prNumber int) (string, error)
}
