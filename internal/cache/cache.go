// Package cache is a small JSON key-value store with per-key TTL, used for
// rate-limit counters and checkout sessions.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: key not found")

type Store interface {
	// Get decodes the value into dst; returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string, dst any) error
	// Set stores the value; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
