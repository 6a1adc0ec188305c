package model

import "time"

// PullRequest is one entry of the code-review history: a pull request of the
// showcased repository together with its AI review comments and diff.
type PullRequest struct {
	ID        int64
	Number    int
	Title     string
	URL       string
	State     PRState
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Populated by the aggregator after the listing call.
	Reviews []Review
	Diff    string
}
