package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/prototypehub/internal/domain/model"
)

// noStoreCacheControl disables every cache between the API and the browser.
const noStoreCacheControl = "no-store, no-cache, must-revalidate, max-age=0"

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// PullRequestResponse is the JSON representation of a pull request in the
// code review history.
type PullRequestResponse struct {
	ID        int64            `json:"id"`
	Number    int              `json:"number"`
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
	State     string           `json:"state"`
	Author    string           `json:"author"`
	Reviews   []ReviewResponse `json:"reviews"`
	Diff      string           `json:"diff"`
}

// ReviewResponse is the JSON representation of a single AI review comment.
type ReviewResponse struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toPullRequestResponse converts a domain PullRequest to its JSON response representation.
// Reviews is always a JSON array, never null.
func toPullRequestResponse(pr model.PullRequest) PullRequestResponse {
	reviews := make([]ReviewResponse, 0, len(pr.Reviews))
	for _, r := range pr.Reviews {
		reviews = append(reviews, toReviewResponse(r))
	}

	return PullRequestResponse{
		ID:        pr.ID,
		Number:    pr.Number,
		Title:     pr.Title,
		URL:       pr.URL,
		CreatedAt: pr.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: pr.UpdatedAt.UTC().Format(time.RFC3339),
		State:     string(pr.State),
		Author:    pr.Author,
		Reviews:   reviews,
		Diff:      pr.Diff,
	}
}

// toReviewResponse converts a domain Review to its JSON response representation.
func toReviewResponse(r model.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		Body:      r.Body,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
