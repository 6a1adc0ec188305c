// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// HistoryViewModel holds the data for the code review history page.
type HistoryViewModel struct {
	Repository    string
	RepositoryURL string
	PullRequests  []PRCardViewModel
}

// PRCardViewModel holds presentation-ready data for one pull request card.
type PRCardViewModel struct {
	ID         int64
	Number     int
	Title      string
	URL        string
	Author     string
	CreatedOn  string // "2006-01-02"
	State      string
	StateClass string // CSS class: state-merged, state-closed, state-open
	Reviews    []ReviewViewModel
	DiffHTML   string // Pre-rendered, escaped diff lines.
}

// ReviewViewModel holds presentation-ready data for a single AI review.
type ReviewViewModel struct {
	ID        int64
	BodyHTML  string // Sanitized HTML rendered from markdown.
	CreatedAt string
}

// ErrorViewModel holds the status and message shown when the history
// cannot be loaded.
type ErrorViewModel struct {
	Status  int
	Message string
}
