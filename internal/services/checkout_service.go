package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ticketera/internal/cache"
	"ticketera/internal/models"
)

var (
	ErrCheckoutNotFound = errors.New("checkout not found or expired")
	ErrItemNotInCart    = errors.New("ticket type is not in the cart")
)

const (
	defaultCheckoutTTL = 2 * time.Hour
	checkoutKeyPrefix  = "checkout:"
)

// CheckoutService keeps checkouts in the cache store and runs the purchase
// steps on them. Every successful mutation refreshes the TTL.
type CheckoutService struct {
	Store    cache.Store
	Catalog  *CatalogService
	Composer *PurchaseComposer
	TTL      time.Duration

	now   func() time.Time
	newID func() string
}

func NewCheckoutService(store cache.Store, catalog *CatalogService, composer *PurchaseComposer, ttl time.Duration) *CheckoutService {
	if ttl <= 0 {
		ttl = defaultCheckoutTTL
	}
	return &CheckoutService{
		Store:    store,
		Catalog:  catalog,
		Composer: composer,
		TTL:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *CheckoutService) save(ctx context.Context, co *models.Checkout) error {
	co.UpdatedAt = s.now()
	if err := s.Store.Set(ctx, checkoutKeyPrefix+co.ID, co, s.TTL); err != nil {
		return fmt.Errorf("checkout save: %w", err)
	}
	return nil
}

func (s *CheckoutService) Start(ctx context.Context, eventID string) (*models.Checkout, error) {
	if _, err := s.Catalog.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	now := s.now()
	co := &models.Checkout{
		ID:        s.newID(),
		EventID:   eventID,
		Phase:     models.PhaseForm,
		Cart:      models.Cart{Items: []models.CartItem{}},
		CreatedAt: now,
	}
	if err := s.save(ctx, co); err != nil {
		return nil, err
	}
	return co, nil
}

func (s *CheckoutService) Get(ctx context.Context, id string) (*models.Checkout, error) {
	var co models.Checkout
	err := s.Store.Get(ctx, checkoutKeyPrefix+id, &co)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checkout load: %w", err)
	}
	return &co, nil
}

// mutate loads the checkout, applies fn and saves it if fn succeeded.
func (s *CheckoutService) mutate(ctx context.Context, id string, fn func(co *models.Checkout) error) (*models.Checkout, error) {
	co, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(co); err != nil {
		return co, err
	}
	if err := s.save(ctx, co); err != nil {
		return nil, err
	}
	return co, nil
}

// AddItem snapshots name, price and color of the ticket type into the cart.
func (s *CheckoutService) AddItem(ctx context.Context, id, ticketTypeID string) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(co *models.Checkout) error {
		tt, err := s.Catalog.GetTicketType(ctx, ticketTypeID)
		if err != nil {
			return err
		}
		if tt.EventID != co.EventID {
			return ErrTicketTypeNotFound
		}
		co.Cart.Add(models.CartItem{
			TicketTypeID: tt.ID,
			Name:         tt.Name,
			UnitPrice:    tt.Price,
			ColorTag:     tt.ColorHex,
		})
		return nil
	})
}

func (s *CheckoutService) IncrementItem(ctx context.Context, id, ticketTypeID string) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(co *models.Checkout) error {
		if !co.Cart.Increment(ticketTypeID) {
			return ErrItemNotInCart
		}
		return nil
	})
}

func (s *CheckoutService) DecrementItem(ctx context.Context, id, ticketTypeID string) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(co *models.Checkout) error {
		if !co.Cart.Decrement(ticketTypeID) {
			return ErrItemNotInCart
		}
		return nil
	})
}

func (s *CheckoutService) RemoveItem(ctx context.Context, id, ticketTypeID string) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(co *models.Checkout) error {
		if !co.Cart.Remove(ticketTypeID) {
			return ErrItemNotInCart
		}
		return nil
	})
}

func (s *CheckoutService) SubmitContact(ctx context.Context, id string, raw models.ContactInfo, ip string) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(co *models.Checkout) error {
		return s.Composer.SubmitContact(ctx, co, raw, ip)
	})
}

func (s *CheckoutService) ResendCode(ctx context.Context, id, ip string) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(co *models.Checkout) error {
		return s.Composer.ResendCode(ctx, co, ip)
	})
}

func (s *CheckoutService) SubmitCode(ctx context.Context, id, code string) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(co *models.Checkout) error {
		return s.Composer.SubmitCode(ctx, co, code)
	})
}

func (s *CheckoutService) Back(ctx context.Context, id string) (*models.Checkout, error) {
	return s.mutate(ctx, id, s.Composer.Back)
}

// SubmitPurchase: the order is already committed when saving the reset
// checkout fails, so that failure is only logged.
func (s *CheckoutService) SubmitPurchase(ctx context.Context, id string, v *Voucher) (*models.Order, error) {
	co, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.Composer.SubmitPurchase(ctx, co, v)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, co); err != nil {
		log.Printf("[checkout][purchase] order=%s stored, checkout %s not reset: %v", order.ID, co.ID, err)
	}
	return order, nil
}
