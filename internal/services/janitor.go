package services

import (
	"context"
	"log"
	"time"
)

const defaultJanitorInterval = 5 * time.Minute

type ExpiredVerificationSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type cacheSweeper interface {
	Sweep() int
}

// Janitor periodically drops expired unverified codes and in-memory cache entries.
type Janitor struct {
	Verifications ExpiredVerificationSweeper
	Cache         cacheSweeper // nil with the redis store
	Interval      time.Duration

	now func() time.Time
}

func NewJanitor(v ExpiredVerificationSweeper, c cacheSweeper, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	return &Janitor{Verifications: v, Cache: c, Interval: interval, now: time.Now}
}

// SweepOnce returns the number of verification rows and cache entries removed.
func (j *Janitor) SweepOnce(ctx context.Context) (int64, int, error) {
	var cached int
	if j.Cache != nil {
		cached = j.Cache.Sweep()
	}
	rows, err := j.Verifications.DeleteExpired(ctx, j.now())
	if err != nil {
		return 0, cached, err
	}
	return rows, cached, nil
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	t := time.NewTicker(j.Interval)
	defer t.Stop()
	log.Printf("[janitor] started interval=%s", j.Interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[janitor] stopped")
			return
		case <-t.C:
			rows, cached, err := j.SweepOnce(ctx)
			if err != nil {
				log.Printf("[janitor] sweep failed: %v", err)
				continue
			}
			if rows > 0 || cached > 0 {
				log.Printf("[janitor] removed verifications=%d cache_entries=%d", rows, cached)
			}
		}
	}
}
