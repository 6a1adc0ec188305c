package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	httphandler "github.com/ericfisherdev/prototypehub/internal/adapter/driving/http"
	"github.com/ericfisherdev/prototypehub/internal/application"
	"github.com/ericfisherdev/prototypehub/internal/domain/model"
	"github.com/ericfisherdev/prototypehub/internal/domain/port/driven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockGitHubClient struct {
	rateLimit   model.RateLimit
	prs         []model.PullRequest
	listErr     error
	comments    map[int][]model.IssueComment
	commentErrs map[int]error
	diffs       map[int]string
	diffErrs    map[int]error

	listCalls int32
}

func (m *mockGitHubClient) FetchRateLimit(_ context.Context) (model.RateLimit, error) {
	return m.rateLimit, nil
}

func (m *mockGitHubClient) FetchRecentPullRequests(_ context.Context, _ string, _ int) ([]model.PullRequest, error) {
	atomic.AddInt32(&m.listCalls, 1)
	return m.prs, m.listErr
}

func (m *mockGitHubClient) FetchIssueComments(_ context.Context, _ string, n int) ([]model.IssueComment, error) {
	return m.comments[n], m.commentErrs[n]
}

func (m *mockGitHubClient) FetchPullRequestDiff(_ context.Context, _ string, n int) (string, error) {
	if err := m.diffErrs[n]; err != nil {
		return "", err
	}
	return m.diffs[n], nil
}

// panicGitHubClient panics on the request goroutine to exercise the recovery middleware.
type panicGitHubClient struct{ mockGitHubClient }

func (p *panicGitHubClient) FetchRateLimit(_ context.Context) (model.RateLimit, error) {
	panic("boom")
}

// panicDiffGitHubClient panics inside a fan-out task, off the request goroutine.
type panicDiffGitHubClient struct{ mockGitHubClient }

func (p *panicDiffGitHubClient) FetchPullRequestDiff(_ context.Context, _ string, _ int) (string, error) {
	panic("diff boom")
}

// --- Test helpers ---

var (
	testTime    = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	testTimeStr = "2026-02-10T12:00:00Z"
	openQuota   = model.RateLimit{Limit: 5000, Remaining: 4000, Reset: testTime.Add(time.Hour)}
)

const reviewBody = "## 🤖 AI 코드 리뷰\n\n- consider renaming `x`"

// setupMux creates the API handler with a real ReviewAggregator backed by client.
func setupMux(client driven.GitHubClient) http.Handler {
	agg := application.NewReviewAggregator(client, application.WithLogger(slog.Default()))
	h := httphandler.NewHandler(agg, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	return httphandler.ApplyMiddleware(mux, slog.Default())
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	err := json.NewDecoder(rec.Body).Decode(v)
	require.NoError(t, err)
}

func getCodeReviews(handler http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/code-reviews", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestListCodeReviews_Success(t *testing.T) {
	client := &mockGitHubClient{
		rateLimit: openQuota,
		prs: []model.PullRequest{
			{
				ID:        9001,
				Number:    1,
				Title:     "Add playground page",
				URL:       "https://github.com/BeomHui-Lee/prototypehub/pull/1",
				State:     model.PRStateMerged,
				Author:    "beomhui",
				CreatedAt: testTime,
				UpdatedAt: testTime,
			},
			{
				ID:        9002,
				Number:    2,
				Title:     "Fix footer",
				State:     model.PRStateOpen,
				CreatedAt: testTime,
				UpdatedAt: testTime,
			},
		},
		comments: map[int][]model.IssueComment{
			1: {
				{ID: 77, Body: reviewBody, CreatedAt: testTime},
				{ID: 78, Body: "thanks", CreatedAt: testTime},
			},
		},
		diffs:    map[int]string{1: "diff --git a/a b/a\n+x\n"},
		diffErrs: map[int]error{2: errors.New("not available")},
	}

	rec := getCodeReviews(setupMux(client))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))

	var body []map[string]any
	decodeJSON(t, rec, &body)
	require.Len(t, body, 2)

	first := body[0]
	assert.Equal(t, float64(9001), first["id"])
	assert.Equal(t, float64(1), first["number"])
	assert.Equal(t, "Add playground page", first["title"])
	assert.Equal(t, "https://github.com/BeomHui-Lee/prototypehub/pull/1", first["url"])
	assert.Equal(t, testTimeStr, first["createdAt"])
	assert.Equal(t, testTimeStr, first["updatedAt"])
	assert.Equal(t, "merged", first["state"])
	assert.Equal(t, "beomhui", first["author"])
	assert.Equal(t, "diff --git a/a b/a\n+x\n", first["diff"])

	reviews, ok := first["reviews"].([]any)
	require.True(t, ok)
	require.Len(t, reviews, 1)
	review := reviews[0].(map[string]any)
	assert.Equal(t, float64(77), review["id"])
	assert.Equal(t, reviewBody, review["body"])
	assert.Equal(t, testTimeStr, review["createdAt"])

	second := body[1]
	assert.Equal(t, "unknown", second["author"])
	assert.Equal(t, "open", second["state"])
	assert.Equal(t, "", second["diff"])
	secondReviews, ok := second["reviews"].([]any)
	require.True(t, ok, "reviews must be an array, not null")
	assert.Empty(t, secondReviews)
}

func TestListCodeReviews_EmptyListIsArray(t *testing.T) {
	rec := getCodeReviews(setupMux(&mockGitHubClient{rateLimit: openQuota}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListCodeReviews_RateLimited(t *testing.T) {
	client := &mockGitHubClient{
		rateLimit: model.RateLimit{Limit: 5000, Remaining: 0, Reset: time.Date(2026, 2, 10, 13, 45, 0, 0, time.UTC)},
		prs:       []model.PullRequest{{Number: 1}},
	}

	rec := getCodeReviews(setupMux(client))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))

	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Contains(t, body["error"], "rate limit exceeded")
	assert.Contains(t, body["error"], "13:45:00 UTC")
	assert.Equal(t, int32(0), client.listCalls)
}

func TestListCodeReviews_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *mockGitHubClient
	}{
		{
			name:   "listing fails",
			client: &mockGitHubClient{rateLimit: openQuota, listErr: errors.New("502 from upstream with secret detail")},
		},
		{
			name: "comment thread fails",
			client: &mockGitHubClient{
				rateLimit:   openQuota,
				prs:         []model.PullRequest{{Number: 3}},
				commentErrs: map[int]error{3: errors.New("secret detail")},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := getCodeReviews(setupMux(tc.client))

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))

			var body map[string]string
			decodeJSON(t, rec, &body)
			assert.Equal(t, "Failed to fetch code reviews", body["error"])
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestListCodeReviews_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/code-reviews", nil)
	rec := httptest.NewRecorder()

	setupMux(&mockGitHubClient{rateLimit: openQuota}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListCodeReviews_PanicRecovered(t *testing.T) {
	rec := getCodeReviews(setupMux(&panicGitHubClient{}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Equal(t, "internal server error", body["error"])
}

func TestListCodeReviews_FanOutPanicIsUpstreamFailure(t *testing.T) {
	client := &panicDiffGitHubClient{mockGitHubClient{
		rateLimit: openQuota,
		prs:       []model.PullRequest{{Number: 4}},
	}}

	rec := getCodeReviews(setupMux(client))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Equal(t, "Failed to fetch code reviews", body["error"])
	assert.NotContains(t, rec.Body.String(), "diff boom")
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	setupMux(&mockGitHubClient{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["time"])
	assert.NoError(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := setupMux(&mockGitHubClient{rateLimit: openQuota})
	getCodeReviews(handler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prototypehub_aggregation_duration_seconds")
}
