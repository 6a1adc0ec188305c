// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/prototypehub/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/prototypehub/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/prototypehub/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/prototypehub/internal/application"
	"github.com/ericfisherdev/prototypehub/internal/domain/model"
)

const pageTitle = "AI 코드 리뷰 히스토리"

// Handler is the web GUI driving adapter that serves HTML via templ components.
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

// History renders the code review history page. Like the JSON API, the page
// is rebuilt on every request and never cached.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

	prs, err := h.aggregator.Fetch(r.Context())
	if err != nil {
		var rlErr *model.RateLimitError
		if errors.As(err, &rlErr) {
			h.render(w, r, http.StatusTooManyRequests, pages.ErrorPage(vm.ErrorViewModel{
				Status:  http.StatusTooManyRequests,
				Message: rlErr.Error(),
			}))
			return
		}

		h.logger.Error("failed to fetch code reviews for history page", "error", err)
		h.render(w, r, http.StatusInternalServerError, pages.ErrorPage(vm.ErrorViewModel{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch code reviews",
		}))
		return
	}

	h.render(w, r, http.StatusOK, pages.History(toHistoryViewModel(prs)))
}

// render wraps component in the layout and writes it with the given status.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := templates.Layout(pageTitle, component).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render history page", "error", err)
	}
}
