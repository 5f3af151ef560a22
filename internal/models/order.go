package models

import (
	"fmt"
	"time"
)

// Order is a cart of items seated at one table at a time, progressing through
// the preparing/confirmed/served/completed lifecycle.
type Order struct {
	ID            string       `json:"id"`
	BranchID      string       `json:"branch_id"`
	TableID       string       `json:"table_id"`
	Items         []OrderItem  `json:"items"`
	Status        OrderStatus  `json:"status"`
	Modified      bool         `json:"modified"`
	DiscountType  DiscountType `json:"discount_type,omitempty"`
	DiscountValue float64      `json:"discount_value,omitempty"`
	Paid          bool         `json:"paid"`
	Timestamp     time.Time    `json:"timestamp"`
}

// OrderItem is a line entry referencing a catalog item. Name and Price are
// snapshots taken at add-time; catalog price changes never reach existing
// items. Amount is kept equal to Price*Quantity on every mutation.
type OrderItem struct {
	ID         string  `json:"id"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Amount     float64 `json:"amount"`
}

// Active reports whether the order still holds its table.
func (o *Order) Active() bool {
	return o.Status != OrderCompleted
}

func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}

// ItemIndex returns the position of the item with the given id, or -1.
func (o *Order) ItemIndex(itemID string) int {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// ItemByMenuID returns the position of the line referencing menuItemID, or -1.
func (o *Order) ItemByMenuID(menuItemID string) int {
	for i := range o.Items {
		if o.Items[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// Validate normalises externally loaded order records.
func (o *Order) Validate() error {
	if o.ID == "" {
		return errEmptyID("order")
	}
	if o.TableID == "" {
		return errInvalidField("order", o.ID, "table_id")
	}
	if !o.Status.Valid() {
		return errInvalidField("order", o.ID, "status")
	}
	if !o.DiscountType.Valid() {
		return errInvalidField("order", o.ID, "discount_type")
	}
	if o.DiscountValue < 0 {
		return errInvalidField("order", o.ID, "discount_value")
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" || it.MenuItemID == "" {
			return errInvalidField("order", o.ID, "items")
		}
		if it.Quantity < 1 {
			return errInvalidField("order", o.ID, "items.quantity")
		}
		it.Amount = it.Price * float64(it.Quantity)
	}
	return nil
}

// ExternalOrder is a customer-submitted order waiting for a table assignment.
type ExternalOrder struct {
	ID           string              `json:"id"`
	BranchID     string              `json:"branch_id"`
	CustomerName string              `json:"customer_name"`
	Items        []ExternalOrderItem `json:"items"`
	Timestamp    time.Time           `json:"timestamp"`
}

type ExternalOrderItem struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

func errEmptyID(entity string) error {
	return fmt.Errorf("%s record has empty id", entity)
}

func errInvalidField(entity, id, field string) error {
	return fmt.Errorf("%s %s has invalid %s", entity, id, field)
}
