// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/prototypehub/internal/domain/model"
	"github.com/ericfisherdev/prototypehub/internal/domain/port/driven"
	"github.com/ericfisherdev/prototypehub/internal/metrics"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Operation names used for logging and metrics labels.
const (
	opRateLimit     = "rate_limit"
	opListPulls     = "list_pulls"
	opIssueComments = "issue_comments"
	opPullDiff      = "pull_diff"
)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchRateLimit returns the core REST API quota for the authenticated token.
func (c *Client) FetchRateLimit(ctx context.Context) (model.RateLimit, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	observe(opRateLimit, err)
	if err != nil {
		return model.RateLimit{}, fmt.Errorf("fetching rate limit: %w", translateRateLimit(err))
	}

	core := limits.GetCore()
	if core == nil {
		return model.RateLimit{}, errors.New("fetching rate limit: response has no core quota")
	}

	return model.RateLimit{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}

// FetchRecentPullRequests retrieves the newest pull requests of a repository in
// any state, sorted by creation time. Only the first page of size limit is read.
func (c *Client) FetchRecentPullRequests(ctx context.Context, repoFullName string, limit int) ([]model.PullRequest, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListOptions{
		State:     "all",
		Sort:      "created",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			PerPage: limit,
		},
	}

	prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
	observe(opListPulls, err)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests for %s: %w", repoFullName, translateRateLimit(err))
	}

	logRateLimit(resp, repoFullName+"/pulls", 0, len(prs))

	result := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, mapPullRequest(pr))
	}

	return result, nil
}

// FetchIssueComments retrieves all general PR-level comments (from the Issues API) for a pull request.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) FetchIssueComments(ctx context.Context, repoFullName string, prNumber int) ([]model.IssueComment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	allComments := []model.IssueComment{}

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, prNumber, opts)
		observe(opIssueComments, err)
		if err != nil {
			return nil, fmt.Errorf("listing issue comments for %s#%d (page %d): %w", repoFullName, prNumber, opts.Page, translateRateLimit(err))
		}

		logRateLimit(resp, fmt.Sprintf("%s#%d/comments", repoFullName, prNumber), opts.Page, len(comments))

		for _, comment := range comments {
			allComments = append(allComments, mapIssueComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// FetchPullRequestDiff retrieves the unified diff of a pull request by asking
// the API for the diff media type instead of the JSON representation.
func (c *Client) FetchPullRequestDiff(ctx context.Context, repoFullName string, prNumber int) (string, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return "", err
	}

	diff, resp, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, prNumber, gh.RawOptions{Type: gh.Diff})
	observe(opPullDiff, err)
	if err != nil {
		return "", fmt.Errorf("fetching diff for %s#%d: %w", repoFullName, prNumber, translateRateLimit(err))
	}

	logRateLimit(resp, fmt.Sprintf("%s#%d/diff", repoFullName, prNumber), 0, 1)

	return diff, nil
}

// mapPullRequest converts a go-github PullRequest to a domain model PullRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapPullRequest(pr *gh.PullRequest) model.PullRequest {
	state := model.PRStateOpen
	if !pr.GetMergedAt().IsZero() {
		state = model.PRStateMerged
	} else if pr.GetState() == "closed" {
		state = model.PRStateClosed
	}

	return model.PullRequest{
		ID:        pr.GetID(),
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		URL:       pr.GetHTMLURL(),
		State:     state,
		Author:    pr.GetUser().GetLogin(),
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
	}
}

// mapIssueComment converts a go-github IssueComment to a domain model IssueComment.
// A missing body maps to the empty string.
func mapIssueComment(c *gh.IssueComment) model.IssueComment {
	return model.IssueComment{
		ID:        c.GetID(),
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
	}
}

// translateRateLimit converts go-github's primary rate limit error into the
// domain error so callers can tell quota exhaustion from other failures.
// go-github returns it without a round trip once it knows the quota is spent.
func translateRateLimit(err error) error {
	var rlErr *gh.RateLimitError
	if errors.As(err, &rlErr) {
		return &model.RateLimitError{Reset: rlErr.Rate.Reset.Time}
	}
	return err
}

// observe counts one API call in the github_requests_total metric.
func observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	var rlErr *gh.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		outcome = metrics.OutcomeRateLimited
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveGitHubRequest(operation, outcome)
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
