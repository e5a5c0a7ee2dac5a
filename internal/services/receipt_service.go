package services

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"ticketera/internal/models"
	"ticketera/internal/pdf"
)

type OrderReader interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
}

// ReceiptService renders buyer-facing documents for stored orders.
type ReceiptService struct {
	Orders    OrderReader
	Catalog   CatalogStore
	Generator pdf.Generator
}

func NewReceiptService(orders OrderReader, catalog CatalogStore, gen pdf.Generator) *ReceiptService {
	return &ReceiptService{Orders: orders, Catalog: catalog, Generator: gen}
}

func (s *ReceiptService) load(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ReceiptData resolves event and ticket type names. Entries deleted from the
// catalog fall back to their ids.
func (s *ReceiptService) ReceiptData(ctx context.Context, id string) (*pdf.ReceiptData, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	data := &pdf.ReceiptData{
		OrderID:          o.ID,
		EventName:        o.EventID,
		BuyerName:        o.FullName,
		BuyerDNI:         o.DNI,
		BuyerEmail:       o.Email,
		Status:           o.ValidationStatus,
		CreatedAt:        o.CreatedAt,
		TotalTickets:     o.TotalTickets,
		TotalAmount:      o.TotalAmount,
		PaymentReference: o.PaymentReference,
	}
	if ev, err := s.Catalog.GetEvent(ctx, o.EventID); err != nil {
		log.Printf("[receipt] order=%s event lookup: %v", o.ID, err)
	} else if ev != nil {
		data.EventName, data.EventLocation, data.EventStartsAt = ev.Name, ev.Location, ev.StartsAt
	}

	for _, it := range o.Items {
		name := it.TicketTypeID
		if tt, err := s.Catalog.GetTicketType(ctx, it.TicketTypeID); err == nil && tt != nil {
			name = tt.Name
		}
		data.Lines = append(data.Lines, pdf.ReceiptLine{
			Name:      name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	return data, nil
}

func (s *ReceiptService) ReceiptPDF(ctx context.Context, id string) ([]byte, error) {
	data, err := s.ReceiptData(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Generator.GenerateReceipt(*data)
}

func (s *ReceiptService) ReferenceQR(ctx context.Context, id string, size int) ([]byte, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return pdf.QRCodePNG(o.PaymentReference, size)
}
