package checkout_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudkitchen/storefront/internal/checkout"
)

func TestCalculator_Quote(t *testing.T) {
	calc := checkout.NewCalculator(300, 50)

	tests := []struct {
		name      string
		lines     []checkout.Line
		expected  checkout.Summary
		wantErr   bool
		wantErrIs error
	}{
		{
			name: "free_delivery_above_threshold",
			lines: []checkout.Line{
				{Name: "Butter Chicken", UnitPrice: 299, Quantity: 2},
				{Name: "Paneer Tikka Masala", UnitPrice: 249, Quantity: 1},
			},
			expected: checkout.Summary{Subtotal: 847, DeliveryFee: 0, Total: 847},
		},
		{
			name: "flat_fee_below_threshold",
			lines: []checkout.Line{
				{Name: "Garlic Naan", UnitPrice: 149, Quantity: 1},
			},
			expected: checkout.Summary{Subtotal: 149, DeliveryFee: 50, Total: 199},
		},
		{
			name: "subtotal_exactly_at_threshold_pays_fee",
			lines: []checkout.Line{
				{Name: "Biryani Special", UnitPrice: 300, Quantity: 1},
			},
			expected: checkout.Summary{Subtotal: 300, DeliveryFee: 50, Total: 350},
		},
		{
			name: "subtotal_one_above_threshold_is_free",
			lines: []checkout.Line{
				{Name: "Biryani Special", UnitPrice: 301, Quantity: 1},
			},
			expected: checkout.Summary{Subtotal: 301, DeliveryFee: 0, Total: 301},
		},
		{
			name: "zero_quantity_line_contributes_nothing",
			lines: []checkout.Line{
				{Name: "Raita", UnitPrice: 79, Quantity: 0},
				{Name: "Garlic Naan", UnitPrice: 149, Quantity: 1},
			},
			expected: checkout.Summary{Subtotal: 149, DeliveryFee: 50, Total: 199},
		},
		{
			name:     "empty_cart_quotes_for_display",
			lines:    []checkout.Line{},
			expected: checkout.Summary{Subtotal: 0, DeliveryFee: 50, Total: 50},
		},
		{
			name: "negative_quantity_rejected",
			lines: []checkout.Line{
				{Name: "Raita", UnitPrice: 79, Quantity: -1},
			},
			wantErr:   true,
			wantErrIs: checkout.ErrNegativeQuantity,
		},
		{
			name: "negative_price_rejected",
			lines: []checkout.Line{
				{Name: "Raita", UnitPrice: -79, Quantity: 1},
			},
			wantErr:   true,
			wantErrIs: checkout.ErrNegativePrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := calc.Quote(tt.lines)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.True(t, errors.Is(err, tt.wantErrIs))
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, summary)
			}
		})
	}
}

func TestCalculator_Quote_OrderIndependent(t *testing.T) {
	calc := checkout.NewCalculator(300, 50)

	lines := []checkout.Line{
		{Name: "Butter Chicken", UnitPrice: 299, Quantity: 2},
		{Name: "Naan", UnitPrice: 49, Quantity: 4},
		{Name: "Raita", UnitPrice: 79, Quantity: 1},
	}
	permuted := []checkout.Line{lines[2], lines[0], lines[1]}

	first, err := calc.Quote(lines)
	assert.NoError(t, err)
	second, err := calc.Quote(permuted)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculator_QuoteForCheckout(t *testing.T) {
	calc := checkout.NewCalculator(300, 50)

	tests := []struct {
		name      string
		lines     []checkout.Line
		wantErrIs error
	}{
		{
			name:      "empty_cart_rejected_at_submission",
			lines:     []checkout.Line{},
			wantErrIs: checkout.ErrEmptyCart,
		},
		{
			name: "all_zero_quantities_rejected_at_submission",
			lines: []checkout.Line{
				{Name: "Raita", UnitPrice: 79, Quantity: 0},
			},
			wantErrIs: checkout.ErrEmptyCart,
		},
		{
			name: "effective_lines_accepted",
			lines: []checkout.Line{
				{Name: "Raita", UnitPrice: 79, Quantity: 0},
				{Name: "Garlic Naan", UnitPrice: 149, Quantity: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := calc.QuoteForCheckout(tt.lines)
			if tt.wantErrIs != nil {
				assert.True(t, errors.Is(err, tt.wantErrIs))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, int64(149), summary.Subtotal)
			}
		})
	}
}

func TestCalculator_ConfiguredRule(t *testing.T) {
	calc := checkout.NewCalculator(1000, 99)

	summary, err := calc.Quote([]checkout.Line{{Name: "Thali", UnitPrice: 500, Quantity: 1}})
	assert.NoError(t, err)
	assert.Equal(t, int64(99), summary.DeliveryFee)

	summary, err = calc.Quote([]checkout.Line{{Name: "Thali", UnitPrice: 500, Quantity: 3}})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), summary.DeliveryFee)
}
