package models

import "time"

// EmailVerification: one row per email (upsert on re-issue).
// Verified stays true after a successful check as an audit marker.
type EmailVerification struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (v *EmailVerification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
