package model

import "time"

// IssueComment represents a PR-level general comment (from the GitHub Issues API,
// not the Pull Requests review comments API).
type IssueComment struct {
	ID        int64
	Body      string
	CreatedAt time.Time
}
