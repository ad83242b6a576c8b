package models

import (
	"time"
)

// Policy bounds how many requests a key may make within a sliding window.
type Policy struct {
	Limit  int
	Window time.Duration
}

func (p Policy) Enabled() bool { return p.Limit > 0 && p.Window > 0 }

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set only when denied
}

type ExceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"`
}
