package models

import "github.com/shopspring/decimal"

type CartItem struct {
	TicketTypeID string          `json:"ticket_type_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ColorTag     string          `json:"color_tag,omitempty"`
	Quantity     int             `json:"quantity"`
}

// Subtotal = UnitPrice * Quantity
func (it CartItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cart keeps at most one item per ticket type, in insertion order.
type Cart struct {
	Items []CartItem `json:"items"`
}

func (c *Cart) index(ticketTypeID string) int {
	for i := range c.Items {
		if c.Items[i].TicketTypeID == ticketTypeID {
			return i
		}
	}
	return -1
}

// Add puts one unit of the ticket type into the cart. An already present
// type gets its quantity incremented instead of a second line.
func (c *Cart) Add(item CartItem) {
	if i := c.index(item.TicketTypeID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// Increment returns false if the ticket type is not in the cart.
func (c *Cart) Increment(ticketTypeID string) bool {
	i := c.index(ticketTypeID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity++
	return true
}

// Decrement removes one unit; the line is dropped when it would go below 1.
func (c *Cart) Decrement(ticketTypeID string) bool {
	i := c.index(ticketTypeID)
	if i < 0 {
		return false
	}
	if c.Items[i].Quantity <= 1 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity--
	return true
}

func (c *Cart) Remove(ticketTypeID string) bool {
	i := c.index(ticketTypeID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c *Cart) TicketCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Clear() { c.Items = []CartItem{} }
