package models

import "time"

// RateLimitState: attempt counter for one identifier (email or ip:<addr>).
// WindowStart is set on the first attempt and never moves forward.
type RateLimitState struct {
	Attempts    int       `json:"attempts"`
	WindowStart time.Time `json:"window_start"`
}
