package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusVoucherUploaded = "voucher_uploaded"

	ValidationPending  = "pending"
	ValidationApproved = "approved"
	ValidationRejected = "rejected"
)

// Order: header of a purchase. TotalAmount/TotalTickets are a snapshot
// taken at creation and never recomputed.
type Order struct {
	ID               string          `json:"id"`
	EventID          string          `json:"event_id"`
	FullName         string          `json:"full_name"`
	DNI              string          `json:"dni"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	VoucherURL       string          `json:"voucher_url"`
	PaymentReference string          `json:"payment_reference"`
	PaymentStatus    string          `json:"payment_status"`
	ValidationStatus string          `json:"validation_status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalTickets     int             `json:"total_tickets"`
	CreatedAt        time.Time       `json:"created_at"`
	ReviewedAt       *time.Time      `json:"reviewed_at,omitempty"`
	ReviewedBy       *string         `json:"reviewed_by,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      string          `json:"order_id"`
	TicketTypeID string          `json:"ticket_type_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}
