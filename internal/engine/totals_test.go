package engine

import (
	"math"
	"testing"

	"github.com/posfoundry/tablepos/internal/models"
)

func orderWithItems(dt models.DiscountType, value float64, amounts ...float64) *models.Order {
	o := &models.Order{DiscountType: dt, DiscountValue: value}
	for _, a := range amounts {
		o.Items = append(o.Items, models.OrderItem{Price: a, Quantity: 1, Amount: a})
	}
	return o
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name    string
		order   *models.Order
		taxRate float64
		want    Totals
	}{
		{
			name:    "no discount",
			order:   orderWithItems(models.DiscountNone, 0, 10, 5),
			taxRate: 0.08,
			want:    Totals{Subtotal: 15, Discount: 0, AfterDiscount: 15, Tax: 1.2, Total: 16.2},
		},
		{
			name:    "fifty percent",
			order:   orderWithItems(models.DiscountPercent, 50, 20),
			taxRate: 0.08,
			want:    Totals{Subtotal: 20, Discount: 10, AfterDiscount: 10, Tax: 0.8, Total: 10.8},
		},
		{
			name:    "fixed amount",
			order:   orderWithItems(models.DiscountAmount, 3, 10),
			taxRate: 0.08,
			want:    Totals{Subtotal: 10, Discount: 3, AfterDiscount: 7, Tax: 0.56, Total: 7.56},
		},
		{
			name:    "amount clamped to subtotal",
			order:   orderWithItems(models.DiscountAmount, 50, 20),
			taxRate: 0.08,
			want:    Totals{Subtotal: 20, Discount: 20, AfterDiscount: 0, Tax: 0, Total: 0},
		},
		{
			name:    "percent over hundred clamps too",
			order:   orderWithItems(models.DiscountPercent, 150, 10),
			taxRate: 0.08,
			want:    Totals{Subtotal: 10, Discount: 10, AfterDiscount: 0, Tax: 0, Total: 0},
		},
		{
			name:    "empty order",
			order:   orderWithItems(models.DiscountAmount, 5),
			taxRate: 0.08,
			want:    Totals{},
		},
		{
			name:    "zero tax rate",
			order:   orderWithItems(models.DiscountNone, 0, 12),
			taxRate: 0,
			want:    Totals{Subtotal: 12, AfterDiscount: 12, Total: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.order, tt.taxRate)
			if !totalsEqual(got, tt.want) {
				t.Errorf("ComputeTotals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func totalsEqual(a, b Totals) bool {
	eq := func(x, y float64) bool { return math.Abs(x-y) < 1e-9 }
	return eq(a.Subtotal, b.Subtotal) && eq(a.Discount, b.Discount) &&
		eq(a.AfterDiscount, b.AfterDiscount) && eq(a.Tax, b.Tax) && eq(a.Total, b.Total)
}
