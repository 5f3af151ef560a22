package engine

import "github.com/posfoundry/tablepos/internal/models"

// DefaultTaxRate applies when the configuration does not set one.
const DefaultTaxRate = 0.08

// Totals is the derived money breakdown for an order. It is recomputed from
// the order's items and discount on every read and never stored, so it cannot
// drift when items or discount change.
type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	AfterDiscount float64 `json:"after_discount"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
}

// ComputeTotals derives the totals for an order at the given tax rate. The
// discount is clamped to the subtotal so the total contribution can never go
// negative, regardless of what discount value was stored.
func ComputeTotals(o *models.Order, taxRate float64) Totals {
	var subtotal float64
	for i := range o.Items {
		subtotal += o.Items[i].Amount
	}

	var discount float64
	switch o.DiscountType {
	case models.DiscountPercent:
		discount = subtotal * o.DiscountValue / 100
	case models.DiscountAmount:
		discount = o.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}

	afterDiscount := subtotal - discount
	tax := afterDiscount * taxRate

	return Totals{
		Subtotal:      subtotal,
		Discount:      discount,
		AfterDiscount: afterDiscount,
		Tax:           tax,
		Total:         afterDiscount + tax,
	}
}
