package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

type payload struct {
	N int    `json:"n"`
	S string `json:"s"`
}

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	var got payload
	if err := s.Get(ctx, "missing", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "k", payload{N: 3, S: "x"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != (payload{N: 3, S: "x"}) {
		t.Fatalf("got %+v", got)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Get(ctx, "k", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete err = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory().WithClock(func() time.Time { return now })
	ctx := context.Background()

	_ = m.Set(ctx, "a", payload{N: 1}, time.Minute)
	_ = m.Set(ctx, "b", payload{N: 2}, time.Hour)
	_ = m.Set(ctx, "c", payload{N: 3}, 0)

	now = now.Add(2 * time.Minute)
	var got payload
	if err := m.Get(ctx, "a", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired key still readable: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep dropped %d, want 1", n)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (no-TTL key kept)", m.Len())
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedis(client, "test:")
	exercise(t, s)

	ctx := context.Background()
	if err := s.Set(ctx, "ttl", payload{N: 9}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:ttl") {
		t.Fatal("prefixed key not written")
	}
	mr.FastForward(2 * time.Minute)
	var got payload
	if err := s.Get(ctx, "ttl", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired redis key err = %v", err)
	}
}
