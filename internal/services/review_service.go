package services

import (
	"context"
	"errors"
	"log"
	"time"

	"ticketera/internal/models"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPending = errors.New("order has already been reviewed")
	ErrInvalidAction   = errors.New("action must be approve or reject")
	ErrUnknownStatus   = errors.New("unknown validation status")
)

const (
	ReviewApprove = "approve"
	ReviewReject  = "reject"

	defaultListLimit = 50
	maxListLimit     = 200
)

type OrderReviewStore interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Order, error)
	UpdateValidationStatus(ctx context.Context, id, from, to, reviewer string, at time.Time) (bool, error)
}

// OrderMailer: buyer notifications after review.
type OrderMailer interface {
	SendOrderApproved(o *models.Order) error
	SendOrderRejected(o *models.Order) error
}

type ReviewService struct {
	Orders OrderReviewStore
	Mailer OrderMailer

	now func() time.Time
}

func NewReviewService(orders OrderReviewStore, mailer OrderMailer) *ReviewService {
	return &ReviewService{Orders: orders, Mailer: mailer, now: time.Now}
}

func (s *ReviewService) ListOrders(ctx context.Context, status string, limit, offset int) ([]*models.Order, error) {
	switch status {
	case "", models.ValidationPending, models.ValidationApproved, models.ValidationRejected:
	default:
		return nil, ErrUnknownStatus
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Orders.List(ctx, status, limit, offset)
}

func (s *ReviewService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// Review moves a pending order to approved or rejected. The buyer email is
// best-effort and never undoes the status change.
func (s *ReviewService) Review(ctx context.Context, id, action, reviewer string) (*models.Order, error) {
	var to string
	switch action {
	case ReviewApprove:
		to = models.ValidationApproved
	case ReviewReject:
		to = models.ValidationRejected
	default:
		return nil, ErrInvalidAction
	}

	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(o.ValidationStatus, to, OrderTransitions) {
		return nil, ErrOrderNotPending
	}

	at := s.now()
	ok, err := s.Orders.UpdateValidationStatus(ctx, id, o.ValidationStatus, to, reviewer, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		// someone else reviewed it in between
		return nil, ErrOrderNotPending
	}
	o.ValidationStatus = to
	o.ReviewedAt = &at
	o.ReviewedBy = &reviewer
	log.Printf("[review] order=%s %s by %s", o.ID, to, reviewer)

	if s.Mailer != nil {
		var mErr error
		if to == models.ValidationApproved {
			mErr = s.Mailer.SendOrderApproved(o)
		} else {
			mErr = s.Mailer.SendOrderRejected(o)
		}
		if mErr != nil {
			log.Printf("[review][mail] order=%s email=%s err=%v", o.ID, o.Email, mErr)
		}
	}
	return o, nil
}
