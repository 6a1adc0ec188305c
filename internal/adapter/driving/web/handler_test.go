package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prototypehub/internal/application"
	"github.com/ericfisherdev/prototypehub/internal/domain/model"
)

type stubGitHubClient struct {
	rateLimit model.RateLimit
	prs       []model.PullRequest
	listErr   error
	comments  map[int][]model.IssueComment
	diffs     map[int]string
}

func (s *stubGitHubClient) FetchRateLimit(_ context.Context) (model.RateLimit, error) {
	return s.rateLimit, nil
}

func (s *stubGitHubClient) FetchRecentPullRequests(_ context.Context, _ string, _ int) ([]model.PullRequest, error) {
	return s.prs, s.listErr
}

func (s *stubGitHubClient) FetchIssueComments(_ context.Context, _ string, n int) ([]model.IssueComment, error) {
	return s.comments[n], nil
}

func (s *stubGitHubClient) FetchPullRequestDiff(_ context.Context, _ string, n int) (string, error) {
	d, ok := s.diffs[n]
	if !ok {
		return "", errors.New("no diff")
	}
	return d, nil
}

var testTime = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func newTestMux(client *stubGitHubClient) *http.ServeMux {
	agg := application.NewReviewAggregator(client)
	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandler(agg, slog.Default()))
	return mux
}

func serve(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHistory_RendersPullRequests(t *testing.T) {
	client := &stubGitHubClient{
		rateLimit: model.RateLimit{Limit: 5000, Remaining: 10},
		prs: []model.PullRequest{
			{ID: 1, Number: 12, Title: "Add <Lab> page", URL: "https://github.com/BeomHui-Lee/prototypehub/pull/12", State: model.PRStateMerged, Author: "beomhui", CreatedAt: testTime},
			{ID: 2, Number: 11, Title: "Tweak nav", State: model.PRStateClosed, CreatedAt: testTime},
		},
		comments: map[int][]model.IssueComment{
			12: {
				{ID: 5, Body: "## 🤖 AI 코드 리뷰\n\n**Nice** work", CreatedAt: testTime},
				{ID: 6, Body: "human comment should not render", CreatedAt: testTime},
			},
		},
		diffs: map[int]string{12: "@@ -1 +1 @@\n-<div>\n+<section>\n"},
	}

	rec := serve(t, newTestMux(client), "/code-reviews")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>AI 코드 리뷰 히스토리</title>")
	assert.Contains(t, body, "Add &lt;Lab&gt; page")
	assert.Contains(t, body, `class="state state-merged"`)
	assert.Contains(t, body, `class="state state-closed"`)
	assert.Contains(t, body, "PR #12 • beomhui • 2026-02-10")
	assert.Contains(t, body, "PR #11 • unknown • 2026-02-10")
	assert.Contains(t, body, "<strong>Nice</strong>")
	assert.NotContains(t, body, "human comment should not render")
	assert.Contains(t, body, `<span class="diff-del">-&lt;div&gt;</span>`)
	assert.Contains(t, body, `<span class="diff-add">+&lt;section&gt;</span>`)
	assert.Contains(t, body, "No AI review for this pull request.")
	assert.Contains(t, body, "Diff unavailable.")
}

func TestHistory_RootServesSamePage(t *testing.T) {
	client := &stubGitHubClient{rateLimit: model.RateLimit{Remaining: 1}}

	rec := serve(t, newTestMux(client), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No pull requests yet.")
}

func TestHistory_RateLimited(t *testing.T) {
	client := &stubGitHubClient{
		rateLimit: model.RateLimit{Remaining: 0, Reset: time.Date(2026, 2, 10, 9, 5, 0, 0, time.UTC)},
	}

	rec := serve(t, newTestMux(client), "/code-reviews")

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "09:05:00 UTC")
}

func TestHistory_UpstreamFailure(t *testing.T) {
	client := &stubGitHubClient{
		rateLimit: model.RateLimit{Remaining: 100},
		listErr:   errors.New("internal detail"),
	}

	rec := serve(t, newTestMux(client), "/code-reviews")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to fetch code reviews")
	assert.NotContains(t, rec.Body.String(), "internal detail")
}

func TestStaticStylesheet(t *testing.T) {
	rec := serve(t, newTestMux(&stubGitHubClient{}), "/static/history.css")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".diff-add")
}

func TestStateClass(t *testing.T) {
	assert.Equal(t, "state-merged", stateClass(model.PRStateMerged))
	assert.Equal(t, "state-closed", stateClass(model.PRStateClosed))
	assert.Equal(t, "state-open", stateClass(model.PRStateOpen))
	assert.Equal(t, "state-open", stateClass(""))
}
