package services

import (
	"context"
	"errors"
	"testing"
)

func TestCatalogGetEvent(t *testing.T) {
	s := NewCatalogService(newFakeCatalog())
	ctx := context.Background()

	if ev, err := s.GetEvent(ctx, "ev-1"); err != nil || ev.Name != "Rock Fest" {
		t.Fatalf("ev-1: %v %v", ev, err)
	}
	for _, id := range []string{"ev-2", "missing", "", "ev|1", "ev:1", "ev 1"} {
		if _, err := s.GetEvent(ctx, id); !errors.Is(err, ErrEventNotFound) {
			t.Errorf("GetEvent(%q) = %v, want ErrEventNotFound", id, err)
		}
	}
}

func TestCatalogTicketTypes(t *testing.T) {
	s := NewCatalogService(newFakeCatalog())
	ctx := context.Background()

	tts, err := s.ListTicketTypes(ctx, "ev-1")
	if err != nil || len(tts) != 2 {
		t.Fatalf("got %d types, %v", len(tts), err)
	}
	if _, err := s.ListTicketTypes(ctx, "ev-2"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("inactive event: %v", err)
	}
	if _, err := s.GetTicketType(ctx, "nope"); !errors.Is(err, ErrTicketTypeNotFound) {
		t.Fatalf("missing type: %v", err)
	}
}
