package services

import "context"

// PendingOrderLookup answers "is there a pending order for this email/dni".
type PendingOrderLookup interface {
	HasPendingByEmail(ctx context.Context, email string) (bool, error)
	HasPendingByDNI(ctx context.Context, dni string) (bool, error)
}

// DuplicateGuard: read-only; lookup errors are returned, never treated as "no duplicate".
type DuplicateGuard struct {
	Orders PendingOrderLookup
}

func NewDuplicateGuard(orders PendingOrderLookup) *DuplicateGuard {
	return &DuplicateGuard{Orders: orders}
}

func (g *DuplicateGuard) EmailHasPendingOrder(ctx context.Context, email string) (bool, error) {
	return g.Orders.HasPendingByEmail(ctx, email)
}

func (g *DuplicateGuard) DNIHasPendingOrder(ctx context.Context, dni string) (bool, error) {
	return g.Orders.HasPendingByDNI(ctx, dni)
}
