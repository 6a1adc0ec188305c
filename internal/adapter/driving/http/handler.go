// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/prototypehub/internal/application"
	"github.com/ericfisherdev/prototypehub/internal/domain/model"
)

// codeReviewsFailure is the only failure detail ever shown to API clients.
const codeReviewsFailure = "Failed to fetch code reviews"

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	aggregator *application.ReviewAggregator
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(aggregator *application.ReviewAggregator, logger *slog.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     logger,
	}
}

// RegisterAPIRoutes registers the JSON API, health, and metrics routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/code-reviews", h.ListCodeReviews)
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// ListCodeReviews returns the recent pull requests of the showcased repository
// with their AI review comments and diffs. Responses are never cacheable.
func (h *Handler) ListCodeReviews(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", noStoreCacheControl)

	prs, err := h.aggregator.Fetch(r.Context())
	if err != nil {
		var rlErr *model.RateLimitError
		if errors.As(err, &rlErr) {
			h.logger.Warn("code reviews rate limited", "reset", rlErr.Reset.UTC().Format(time.RFC3339))
			writeError(w, http.StatusTooManyRequests, rlErr.Error())
			return
		}

		h.logger.Error("failed to fetch code reviews", "error", err)
		writeError(w, http.StatusInternalServerError, codeReviewsFailure)
		return
	}

	resp := make([]PullRequestResponse, 0, len(prs))
	for _, pr := range prs {
		resp = append(resp, toPullRequestResponse(pr))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
