package models

import "time"

// Phase is the current step of the purchase flow.
type Phase string

const (
	PhaseForm         Phase = "form"
	PhaseVerification Phase = "verification"
	PhaseCompose      Phase = "compose"
)

// Checkout: server-side state of one buyer's purchase flow:
// form -> verification -> compose -> (order persisted) -> form.
type Checkout struct {
	ID        string       `json:"id"`
	EventID   string       `json:"event_id"`
	Phase     Phase        `json:"phase"`
	Contact   *ContactInfo `json:"contact,omitempty"`
	Cart      Cart         `json:"cart"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Reset brings the checkout back to an empty form.
func (c *Checkout) Reset() {
	c.Phase = PhaseForm
	c.Contact = nil
	c.Cart.Clear()
}
