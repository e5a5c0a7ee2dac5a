package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticketera/internal/models"
)

func newTestCheckouts(f *composerFixture) *CheckoutService {
	s := NewCheckoutService(f.kv, NewCatalogService(newFakeCatalog()), f.composer, time.Hour)
	s.now = f.clock.Now
	s.newID = func() string { return "co-1" }
	return s
}

func TestCheckoutStartUnknownEvent(t *testing.T) {
	s := newTestCheckouts(newComposerFixture())
	for _, id := range []string{"nope", "ev-2"} {
		if _, err := s.Start(context.Background(), id); !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("%s: got %v", id, err)
		}
	}
}

func TestCheckoutCart(t *testing.T) {
	ctx := context.Background()
	s := newTestCheckouts(newComposerFixture())

	co, err := s.Start(ctx, "ev-1")
	if err != nil {
		t.Fatal(err)
	}
	if co.Phase != models.PhaseForm {
		t.Fatalf("phase = %s", co.Phase)
	}

	if _, err := s.AddItem(ctx, co.ID, "vip"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddItem(ctx, co.ID, "vip"); err != nil {
		t.Fatal(err)
	}
	co, err = s.AddItem(ctx, co.ID, "general")
	if err != nil {
		t.Fatal(err)
	}
	if len(co.Cart.Items) != 2 || co.Cart.Items[0].Quantity != 2 || co.Cart.Items[0].ColorTag != "#FFD700" {
		t.Fatalf("cart = %+v", co.Cart.Items)
	}
	if got := co.Cart.Total().StringFixed(2); got != "290.00" {
		t.Fatalf("total = %s", got)
	}

	if _, err := s.AddItem(ctx, co.ID, "other"); !errors.Is(err, ErrTicketTypeNotFound) {
		t.Fatalf("ticket type of another event: %v", err)
	}
	if _, err := s.IncrementItem(ctx, co.ID, "missing"); !errors.Is(err, ErrItemNotInCart) {
		t.Fatalf("increment missing: %v", err)
	}

	co, _ = s.DecrementItem(ctx, co.ID, "general")
	if len(co.Cart.Items) != 1 {
		t.Fatalf("decrement at 1 should drop the line: %+v", co.Cart.Items)
	}
	co, _ = s.RemoveItem(ctx, co.ID, "vip")
	if !co.Cart.IsEmpty() {
		t.Fatal("cart should be empty")
	}

	// state survives a reload from the store
	loaded, err := s.Get(ctx, co.ID)
	if err != nil || !loaded.Cart.IsEmpty() {
		t.Fatalf("reload: %+v %v", loaded, err)
	}
}

func TestCheckoutExpires(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture()
	s := newTestCheckouts(f)
	co, _ := s.Start(ctx, "ev-1")

	f.clock.Advance(2 * time.Hour)
	if _, err := s.Get(ctx, co.ID); !errors.Is(err, ErrCheckoutNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestCheckoutFullFlow(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture()
	s := newTestCheckouts(f)

	co, _ := s.Start(ctx, "ev-1")
	_, _ = s.AddItem(ctx, co.ID, "vip")
	_, _ = s.IncrementItem(ctx, co.ID, "vip")

	co, err := s.SubmitContact(ctx, co.ID, juanContact(), "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if co.Phase != models.PhaseVerification {
		t.Fatalf("phase = %s", co.Phase)
	}
	if _, err := s.ResendCode(ctx, co.ID, "10.0.0.1"); err != nil {
		t.Fatal(err)
	}
	if len(f.sender.sent) != 2 {
		t.Fatalf("sent = %d", len(f.sender.sent))
	}
	if _, err := s.SubmitCode(ctx, co.ID, f.sender.last()); err != nil {
		t.Fatal(err)
	}

	order, err := s.SubmitPurchase(ctx, co.ID, &Voucher{FileName: "voucher.png", Data: []byte("png")})
	if err != nil {
		t.Fatal(err)
	}
	if order.TotalAmount.StringFixed(2) != "240.00" || order.EventID != "ev-1" {
		t.Fatalf("order = %+v", order)
	}

	co, _ = s.Get(ctx, co.ID)
	if co.Phase != models.PhaseForm || !co.Cart.IsEmpty() {
		t.Fatalf("checkout not reset after purchase: %+v", co)
	}
}

func TestCheckoutFailedStepIsNotSaved(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture()
	f.orders.pendingEmails["juan@example.com"] = true
	s := newTestCheckouts(f)
	co, _ := s.Start(ctx, "ev-1")

	if _, err := s.SubmitContact(ctx, co.ID, juanContact(), ""); kindOf(t, err) != KindDuplicate {
		t.Fatalf("got %v", err)
	}
	co, _ = s.Get(ctx, co.ID)
	if co.Phase != models.PhaseForm || co.Contact != nil {
		t.Fatalf("checkout changed: %+v", co)
	}
}
