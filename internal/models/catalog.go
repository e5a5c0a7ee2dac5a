package models

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var eventIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidEventID: ids go into the "pago|evento:<id>|..." payment reference,
// so separators are not allowed. Same rule as the events.id CHECK.
func ValidEventID(id string) bool {
	return eventIDRe.MatchString(id)
}

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	Active      bool      `json:"active"`
}

type TicketType struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ColorHex    string          `json:"color_hex,omitempty"`
	Active      bool            `json:"active"`
}
