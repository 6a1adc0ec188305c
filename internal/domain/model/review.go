package model

import "time"

// Review is an automated review comment posted on a pull request thread.
type Review struct {
	ID        int64
	Body      string
	CreatedAt time.Time
}
