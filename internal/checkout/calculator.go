// Package checkout prices a cart. It is pure: no storage, no side effects.
package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart        = errors.New("cart must contain at least one item")
	ErrNegativeQuantity = errors.New("line quantity cannot be negative")
	ErrNegativePrice    = errors.New("line unit price cannot be negative")
)

// Line is one cart entry before checkout. Quantity 0 means the line was
// removed; it contributes nothing. UnitPrice is in integer minor units.
type Line struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type Summary struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

// Calculator applies the delivery fee rule: free above the threshold, a flat
// fee otherwise. Threshold and fee are configuration, not constants, so
// deployments can differ.
type Calculator struct {
	freeDeliveryThreshold int64
	deliveryFee           int64
}

func NewCalculator(freeDeliveryThreshold, deliveryFee int64) *Calculator {
	return &Calculator{
		freeDeliveryThreshold: freeDeliveryThreshold,
		deliveryFee:           deliveryFee,
	}
}

// Quote computes subtotal, delivery fee and total for display. An empty cart
// is fine here: the storefront quotes empty carts for the "add more for free
// delivery" hint.
func (c *Calculator) Quote(lines []Line) (Summary, error) {
	var subtotal int64

	for _, line := range lines {
		if line.Quantity < 0 {
			return Summary{}, fmt.Errorf("%w: %q has quantity %d", ErrNegativeQuantity, line.Name, line.Quantity)
		}
		if line.UnitPrice < 0 {
			return Summary{}, fmt.Errorf("%w: %q has unit price %d", ErrNegativePrice, line.Name, line.UnitPrice)
		}
		subtotal += int64(line.Quantity) * line.UnitPrice
	}

	fee := c.deliveryFee
	if subtotal > c.freeDeliveryThreshold {
		fee = 0
	}

	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}, nil
}

// QuoteForCheckout is Quote at the submission boundary: a cart with no
// effective lines (all quantities zero) is rejected.
func (c *Calculator) QuoteForCheckout(lines []Line) (Summary, error) {
	if len(EffectiveLines(lines)) == 0 {
		return Summary{}, ErrEmptyCart
	}
	return c.Quote(lines)
}

// EffectiveLines drops zero-quantity lines; removal semantics, not
// zero-priced lines.
func EffectiveLines(lines []Line) []Line {
	effective := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.Quantity == 0 {
			continue
		}
		effective = append(effective, line)
	}
	return effective
}
