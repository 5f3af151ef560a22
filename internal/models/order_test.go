package models

import (
	"testing"
	"time"
)

func validOrder() *Order {
	return &Order{
		ID:       "o1",
		BranchID: "branch-1",
		TableID:  "t1",
		Items: []OrderItem{
			{ID: "i1", MenuItemID: "m1", Name: "Lemonade", Price: 4, Quantity: 3, Amount: 0},
		},
		Status:    OrderPreparing,
		Timestamp: time.Now(),
	}
}

func TestOrderValidateRecomputesAmounts(t *testing.T) {
	o := validOrder()
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if o.Items[0].Amount != 12 {
		t.Errorf("amount = %v, want 12 (price*quantity)", o.Items[0].Amount)
	}
}

func TestOrderValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Order)
	}{
		{"empty id", func(o *Order) { o.ID = "" }},
		{"missing table", func(o *Order) { o.TableID = "" }},
		{"bad status", func(o *Order) { o.Status = "cancelled" }},
		{"bad discount type", func(o *Order) { o.DiscountType = "coupon" }},
		{"negative discount", func(o *Order) { o.DiscountType = DiscountAmount; o.DiscountValue = -1 }},
		{"zero quantity item", func(o *Order) { o.Items[0].Quantity = 0 }},
		{"item without menu ref", func(o *Order) { o.Items[0].MenuItemID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(o)
			if err := o.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOrderClone(t *testing.T) {
	o := validOrder()
	c := o.Clone()
	c.Items[0].Quantity = 99
	c.Status = OrderCompleted
	if o.Items[0].Quantity != 3 || o.Status != OrderPreparing {
		t.Error("clone shares state with the original")
	}
}

func TestOrderActive(t *testing.T) {
	o := validOrder()
	for _, s := range []OrderStatus{OrderPreparing, OrderConfirmed, OrderServed} {
		o.Status = s
		if !o.Active() {
			t.Errorf("%s order should be active", s)
		}
	}
	o.Status = OrderCompleted
	if o.Active() {
		t.Error("completed order should not be active")
	}
}

func TestTableValidate(t *testing.T) {
	since := time.Now()
	tb := &Table{ID: "t1", BranchID: "b", Number: 1, Capacity: 4, Section: "indoor",
		Status: TableOccupied, OccupiedSince: &since}
	if err := tb.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := *tb
	bad.Status = "dirty"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestTableClone(t *testing.T) {
	since := time.Now()
	tb := &Table{ID: "t1", BranchID: "b", Number: 1, Capacity: 4, Section: "indoor",
		Status: TableOccupied, OccupiedSince: &since}
	c := tb.Clone()
	*c.OccupiedSince = since.Add(time.Hour)
	if !tb.OccupiedSince.Equal(since) {
		t.Error("clone shares the occupied_since pointer")
	}
}
