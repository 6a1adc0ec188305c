package model

import (
	"fmt"
	"time"
)

// RateLimit is the GitHub core API quota at the time of the call.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Exhausted reports whether no calls remain in the current window.
func (r RateLimit) Exhausted() bool {
	return r.Remaining <= 0
}

// RateLimitError is returned when the GitHub core quota is exhausted.
// Reset is when the quota window starts over.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded; limit resets at %s", e.Reset.UTC().Format("15:04:05 MST"))
}
