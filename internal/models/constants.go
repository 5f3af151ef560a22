package models

// TableStatus is the occupancy state of a physical table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPreparing OrderStatus = "preparing"
	OrderConfirmed OrderStatus = "confirmed"
	OrderServed    OrderStatus = "served"
	OrderCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPreparing, OrderConfirmed, OrderServed, OrderCompleted:
		return true
	}
	return false
}

// DiscountType selects how Order.DiscountValue is interpreted.
type DiscountType string

const (
	DiscountNone    DiscountType = ""
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

func (d DiscountType) Valid() bool {
	switch d {
	case DiscountNone, DiscountPercent, DiscountAmount:
		return true
	}
	return false
}

const (
	EventOrderCreated          = "order_created"
	EventOrderConfirmed        = "order_confirmed"
	EventOrderServed           = "order_served"
	EventOrderPaid             = "order_paid"
	EventOrderDeleted          = "order_deleted"
	EventItemAdded             = "item_added"
	EventItemQuantityChanged   = "item_quantity_changed"
	EventItemRemoved           = "item_removed"
	EventDiscountApplied       = "discount_applied"
	EventModificationsCleared  = "modifications_cleared"
	EventTableSwitched         = "table_switched"
	EventExternalOrderAccepted = "external_order_accepted"
	EventExternalOrderRejected = "external_order_rejected"
)
