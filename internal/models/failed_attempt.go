package models

import "time"

// FailedAttempt: append-only audit row for rejected purchase attempts.
type FailedAttempt struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	DNI       string    `json:"dni"`
	Reason    string    `json:"reason"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}
