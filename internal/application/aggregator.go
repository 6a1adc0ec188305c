// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/prototypehub/internal/domain/model"
	"github.com/ericfisherdev/prototypehub/internal/domain/port/driven"
	"github.com/ericfisherdev/prototypehub/internal/metrics"
)

const (
	// RepoFullName is the repository whose review history is shown.
	RepoFullName = "BeomHui-Lee/prototypehub"
	// PageSize is the number of most recent pull requests aggregated per call.
	PageSize = 10
	// ReviewMarker identifies comments posted by the automated reviewer.
	ReviewMarker = "## 🤖 AI 코드 리뷰"
	// UnknownAuthor replaces the author of pull requests without a user.
	UnknownAuthor = "unknown"
)

// ReviewAggregator assembles the code review history: the most recent pull
// requests of RepoFullName with their AI review comments and diffs.
type ReviewAggregator struct {
	client         driven.GitHubClient
	logger         *slog.Logger
	checkRateLimit bool
}

// AggregatorOption configures a ReviewAggregator.
type AggregatorOption func(*ReviewAggregator)

// WithLogger sets the logger used for warnings and failures.
func WithLogger(logger *slog.Logger) AggregatorOption {
	return func(a *ReviewAggregator) {
		a.logger = logger
	}
}

// WithRateLimitCheck toggles the quota pre-check made before any other call.
func WithRateLimitCheck(enabled bool) AggregatorOption {
	return func(a *ReviewAggregator) {
		a.checkRateLimit = enabled
	}
}

// NewReviewAggregator creates a ReviewAggregator reading through client.
// The rate limit pre-check is enabled unless disabled by an option.
func NewReviewAggregator(client driven.GitHubClient, opts ...AggregatorOption) *ReviewAggregator {
	a := &ReviewAggregator{
		client:         client,
		logger:         slog.Default(),
		checkRateLimit: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch returns one record per pull request of the listing call, in listing
// order. Comment fetch failures fail the whole call; diff fetch failures are
// logged and leave the diff empty. A *model.RateLimitError is returned when
// the core quota is exhausted.
func (a *ReviewAggregator) Fetch(ctx context.Context) ([]model.PullRequest, error) {
	start := time.Now()

	prs, err := a.fetch(ctx)

	outcome := metrics.OutcomeSuccess
	var rlErr *model.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		outcome = metrics.OutcomeRateLimited
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveAggregation(outcome, time.Since(start))

	return prs, err
}

func (a *ReviewAggregator) fetch(ctx context.Context) ([]model.PullRequest, error) {
	if a.checkRateLimit {
		rl, err := a.client.FetchRateLimit(ctx)
		if err != nil {
			return nil, err
		}
		if rl.Exhausted() {
			a.logger.Warn("github rate limit exhausted",
				"limit", rl.Limit,
				"reset", rl.Reset.UTC().Format(time.RFC3339),
			)
			return nil, &model.RateLimitError{Reset: rl.Reset}
		}
	}

	prs, err := a.client.FetchRecentPullRequests(ctx, RepoFullName, PageSize)
	if err != nil {
		return nil, err
	}

	comments := make([][]model.IssueComment, len(prs))
	diffs := make([]string, len(prs))

	g, gctx := errgroup.WithContext(ctx)
	for i, pr := range prs {
		g.Go(recoverTask(pr.Number, func() error {
			thread, err := a.client.FetchIssueComments(gctx, RepoFullName, pr.Number)
			if err != nil {
				return fmt.Errorf("pull request #%d: %w", pr.Number, err)
			}
			comments[i] = thread
			return nil
		}))
		g.Go(recoverTask(pr.Number, func() error {
			diffs[i] = a.fetchDiff(gctx, pr.Number)
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]model.PullRequest, 0, len(prs))
	for i, pr := range prs {
		if pr.Author == "" {
			pr.Author = UnknownAuthor
		}
		pr.Reviews = ExtractReviews(comments[i])
		pr.Diff = diffs[i]
		result = append(result, pr)
	}

	return result, nil
}

// recoverTask turns a panic in a fan-out task into an error of that task.
// Tasks run on their own goroutines, out of reach of the HTTP recovery middleware.
func recoverTask(number int, task func() error) func() error {
	return func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				err = fmt.Errorf("pull request #%d: panic: %v", number, v)
			}
		}()
		return task()
	}
}

// fetchDiff returns the diff of a pull request, or "" when it cannot be fetched.
// A diff abandoned by a cancelled aggregation is neither logged nor counted.
func (a *ReviewAggregator) fetchDiff(ctx context.Context, number int) string {
	diff, err := a.client.FetchPullRequestDiff(ctx, RepoFullName, number)
	if err != nil {
		if ctx.Err() != nil {
			return ""
		}
		a.logger.Warn("failed to fetch pull request diff",
			"pr_number", number,
			"operation", "pull_diff",
			"error", err,
		)
		metrics.IncDiffFallback()
		return ""
	}
	return diff
}

// IsReviewComment reports whether a comment body was posted by the automated
// reviewer, i.e. contains ReviewMarker verbatim.
func IsReviewComment(body string) bool {
	return strings.Contains(body, ReviewMarker)
}

// ExtractReviews keeps the review comments of a thread, in thread order.
// The result is never nil.
func ExtractReviews(comments []model.IssueComment) []model.Review {
	reviews := make([]model.Review, 0, len(comments))
	for _, c := range comments {
		if !IsReviewComment(c.Body) {
			continue
		}
		reviews = append(reviews, model.Review{
			ID:        c.ID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	return reviews
}
