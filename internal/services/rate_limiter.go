package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"ticketera/internal/cache"
	"ticketera/internal/models"
)

const (
	defaultAttemptLimit  = 5
	defaultAttemptWindow = 15 * time.Minute
	rateLimitKeyPrefix   = "rate_limit:"
)

// RateDecision: result of CanAttempt.
type RateDecision struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
	Message    string        `json:"message,omitempty"`
}

// RateLimiter: attempts per identifier in a window that starts at the first
// attempt and does not slide forward.
type RateLimiter struct {
	Store  cache.Store
	Limit  int
	Window time.Duration

	now func() time.Time
}

func NewRateLimiter(store cache.Store, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = defaultAttemptLimit
	}
	if window <= 0 {
		window = defaultAttemptWindow
	}
	return &RateLimiter{Store: store, Limit: limit, Window: window, now: time.Now}
}

func (l *RateLimiter) load(ctx context.Context, id string) (*models.RateLimitState, error) {
	var st models.RateLimitState
	err := l.Store.Get(ctx, rateLimitKeyPrefix+id, &st)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CanAttempt never touches the counter except to drop an elapsed window.
// Storage errors deny the attempt.
func (l *RateLimiter) CanAttempt(ctx context.Context, id string) RateDecision {
	st, err := l.load(ctx, id)
	if err != nil {
		log.Printf("[ratelimit] load %s failed: %v", id, err)
		return RateDecision{Allowed: false, Message: "attempt limit check unavailable, try again later"}
	}
	if st == nil {
		return RateDecision{Allowed: true, Remaining: l.Limit}
	}

	elapsed := l.now().Sub(st.WindowStart)
	if elapsed > l.Window {
		if err := l.Store.Delete(ctx, rateLimitKeyPrefix+id); err != nil {
			log.Printf("[ratelimit] reset %s failed: %v", id, err)
		}
		return RateDecision{Allowed: true, Remaining: l.Limit}
	}

	if st.Attempts >= l.Limit {
		left := l.Window - elapsed
		minutes := int(math.Ceil(left.Minutes()))
		if minutes < 1 {
			minutes = 1
		}
		return RateDecision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: left,
			Message:    fmt.Sprintf("too many attempts, try again in %d minutes", minutes),
		}
	}
	return RateDecision{Allowed: true, Remaining: l.Limit - st.Attempts}
}

// RecordAttempt creates the window on first use and keeps its start afterwards.
// TODO: use INCR + EXPIRE on the redis store; concurrent submits for the same
// id can lose an increment with this read-modify-write.
func (l *RateLimiter) RecordAttempt(ctx context.Context, id string) error {
	st, err := l.load(ctx, id)
	if err != nil {
		return err
	}
	now := l.now()
	if st == nil {
		st = &models.RateLimitState{Attempts: 1, WindowStart: now}
	} else {
		st.Attempts++
	}
	// keep the key a bit past the window so CanAttempt sees and resets it
	ttl := st.WindowStart.Add(l.Window).Sub(now) + time.Minute
	return l.Store.Set(ctx, rateLimitKeyPrefix+id, st, ttl)
}

// Clear: after a successful verification only.
func (l *RateLimiter) Clear(ctx context.Context, id string) error {
	return l.Store.Delete(ctx, rateLimitKeyPrefix+id)
}
