package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucsky/cuid"
	"github.com/posfoundry/tablepos/internal/events"
	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
)

// Engine owns the table registry and order store for one branch and is the
// only writer to either. Every operation runs to completion synchronously,
// validates against both collections, writes the full next state through the
// persistence gateway, and hands immutable snapshots back to the caller.
// Operations either fully apply or fully fail.
type Engine struct {
	branchID string
	taxRate  float64

	gateway repositories.Gateway
	catalog repositories.Catalog
	sink    events.Sink

	tables   *TableRegistry
	orders   *OrderStore
	incoming []*models.ExternalOrder

	tableRev repositories.Revision
	orderRev repositories.Revision

	now   func() time.Time
	newID func() string
}

func New(branchID string, taxRate float64, gateway repositories.Gateway, catalog repositories.Catalog, sink events.Sink) *Engine {
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}
	if sink == nil {
		sink = events.Discard{}
	}
	return &Engine{
		branchID: branchID,
		taxRate:  taxRate,
		gateway:  gateway,
		catalog:  catalog,
		sink:     sink,
		now:      time.Now,
		newID:    cuid.New,
	}
}

// Load pulls the branch's tables and orders from the gateway and validates
// them at the boundary. It must be called once before any operation.
func (e *Engine) Load(ctx context.Context) error {
	tables, tableRev, err := e.gateway.LoadTables(ctx, e.branchID)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	orders, orderRev, err := e.gateway.LoadOrders(ctx, e.branchID)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	registry, err := NewTableRegistry(e.branchID, tables)
	if err != nil {
		return err
	}
	store, err := NewOrderStore(e.branchID, orders)
	if err != nil {
		return err
	}

	e.tables = registry
	e.orders = store
	e.tableRev = tableRev
	e.orderRev = orderRev

	// a loaded snapshot may disagree with its own orders (partial external
	// edits, older writers); re-derive occupancy for every table before the
	// first operation runs
	now := e.now()
	for id := range registry.tables {
		e.reconcileTable(id, now)
	}
	return nil
}

// Tables returns snapshot copies of all tables, ordered by display number.
func (e *Engine) Tables() []*models.Table { return e.tables.List() }

// Orders returns snapshot copies of all orders, history included.
func (e *Engine) Orders() []*models.Order { return e.orders.List() }

// ActiveOrders returns snapshot copies of the non-completed orders.
func (e *Engine) ActiveOrders() []*models.Order { return e.orders.ListActive() }

// CompletedOrders returns snapshot copies of the paid history.
func (e *Engine) CompletedOrders() []*models.Order { return e.orders.ListCompleted() }

// OrdersForTable returns the current (non-completed) orders seated at a table.
func (e *Engine) OrdersForTable(tableID string) []*models.Order {
	active := e.orders.ActiveByTable(tableID)
	out := make([]*models.Order, 0, len(active))
	for _, o := range active {
		out = append(out, o.Clone())
	}
	return out
}

// Order returns a snapshot copy of one order.
func (e *Engine) Order(orderID string) (*models.Order, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// OrderTotals derives the money breakdown for an order at the configured tax
// rate. Totals are never cached on the order.
func (e *Engine) OrderTotals(orderID string) (Totals, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(o, e.taxRate), nil
}

// CreateOrder opens a new empty order in preparing state on a table. A table
// may hold more than one concurrent non-completed order. Seating onto a
// reserved table requires the explicit override flag. If the table was
// available it becomes occupied.
func (e *Engine) CreateOrder(ctx context.Context, tableID string, seatReserved bool) (*models.Order, error) {
	if _, err := e.tables.Get(tableID); err != nil {
		return nil, err
	}

	now := e.now()
	order := &models.Order{
		ID:        e.newID(),
		BranchID:  e.branchID,
		TableID:   tableID,
		Items:     []models.OrderItem{},
		Status:    models.OrderPreparing,
		Timestamp: now,
	}

	tsnap, osnap := e.snapshots()
	if err := e.tables.SetOccupied(tableID, order.ID, now, seatReserved, true); err != nil {
		return nil, err
	}
	e.orders.put(order)

	if err := e.persist(ctx, true); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	e.emitOrder(models.EventOrderCreated, order)
	return order.Clone(), nil
}

// AddItem adds a catalog item to an order, folding repeat additions of the
// same menu item into the existing line's quantity. Name and price are
// snapshotted from the catalog at add-time.
func (e *Engine) AddItem(ctx context.Context, orderID, menuItemID string, qty int) (*models.Order, error) {
	if qty < 1 {
		qty = 1
	}
	mi, err := e.catalog.GetMenuItem(ctx, menuItemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("menu item %s: %w", menuItemID, ErrCatalogItemNotFound)
		}
		return nil, fmt.Errorf("catalog lookup %s: %w", menuItemID, err)
	}

	return e.mutateItems(ctx, orderID, models.EventItemAdded, func(o *models.Order) error {
		if i := o.ItemByMenuID(menuItemID); i >= 0 {
			o.Items[i].Quantity += qty
			o.Items[i].Amount = o.Items[i].Price * float64(o.Items[i].Quantity)
			return nil
		}
		o.Items = append(o.Items, models.OrderItem{
			ID:         e.newID(),
			MenuItemID: mi.ID,
			Name:       mi.Name,
			Price:      mi.Price,
			Quantity:   qty,
			Amount:     mi.Price * float64(qty),
		})
		return nil
	})
}

// UpdateQuantity adjusts an item's quantity by delta, floored at 1. Removing
// a line goes through RemoveItem, never through a zero quantity.
func (e *Engine) UpdateQuantity(ctx context.Context, orderID, itemID string, delta int) (*models.Order, error) {
	return e.mutateItems(ctx, orderID, models.EventItemQuantityChanged, func(o *models.Order) error {
		i := o.ItemIndex(itemID)
		if i < 0 {
			return fmt.Errorf("item %s in order %s: %w", itemID, orderID, ErrNotFound)
		}
		q := o.Items[i].Quantity + delta
		if q < 1 {
			q = 1
		}
		o.Items[i].Quantity = q
		o.Items[i].Amount = o.Items[i].Price * float64(q)
		return nil
	})
}

// RemoveItem deletes a line from the order. An order left empty stays valid
// and visible until explicitly deleted or paid.
func (e *Engine) RemoveItem(ctx context.Context, orderID, itemID string) (*models.Order, error) {
	return e.mutateItems(ctx, orderID, models.EventItemRemoved, func(o *models.Order) error {
		i := o.ItemIndex(itemID)
		if i < 0 {
			return fmt.Errorf("item %s in order %s: %w", itemID, orderID, ErrNotFound)
		}
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
		return nil
	})
}

// ApplyDiscount stores the discount on the order. The clamp to subtotal
// happens at totals-computation time only, so later item changes cannot make
// the stored discount stale.
func (e *Engine) ApplyDiscount(ctx context.Context, orderID string, dt models.DiscountType, value float64) (*models.Order, error) {
	if !dt.Valid() {
		return nil, fmt.Errorf("discount type %q: %w", dt, ErrInvalidTransition)
	}
	if value < 0 {
		return nil, fmt.Errorf("discount value %v must be non-negative: %w", value, ErrInvalidTransition)
	}

	o, err := e.mutableOrder(orderID)
	if err != nil {
		return nil, err
	}

	tsnap, osnap := e.snapshots()
	o.DiscountType = dt
	o.DiscountValue = value
	if dt == models.DiscountNone {
		o.DiscountValue = 0
	}

	if err := e.persist(ctx, false); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	e.emitOrder(models.EventDiscountApplied, o)
	return o.Clone(), nil
}

// Confirm acknowledges a preparing order to the kitchen. Only valid from
// preparing.
func (e *Engine) Confirm(ctx context.Context, orderID string) (*models.Order, error) {
	return e.transition(ctx, orderID, models.EventOrderConfirmed, func(o *models.Order) error {
		if o.Status != models.OrderPreparing {
			return fmt.Errorf("confirm from %s: %w", o.Status, ErrInvalidTransition)
		}
		o.Status = models.OrderConfirmed
		o.Modified = false
		return nil
	})
}

// MarkServed marks the order served. Valid from preparing (skipping confirm)
// or confirmed.
func (e *Engine) MarkServed(ctx context.Context, orderID string) (*models.Order, error) {
	return e.transition(ctx, orderID, models.EventOrderServed, func(o *models.Order) error {
		if o.Status != models.OrderPreparing && o.Status != models.OrderConfirmed {
			return fmt.Errorf("serve from %s: %w", o.Status, ErrInvalidTransition)
		}
		o.Status = models.OrderServed
		return nil
	})
}

// ConfirmModifications clears the modified flag after staff re-communicated
// the changes to the kitchen. Status is unchanged. No-op when the flag is
// already clear.
func (e *Engine) ConfirmModifications(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if !o.Modified {
		return o.Clone(), nil
	}

	tsnap, osnap := e.snapshots()
	o.Modified = false
	if err := e.persist(ctx, false); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	e.emitOrder(models.EventModificationsCleared, o)
	return o.Clone(), nil
}

// Pay settles a served order: status becomes completed, paid is set, and the
// table reverts to available when no other non-completed order references it.
// Payment is only accepted for served orders.
func (e *Engine) Pay(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderServed {
		return nil, fmt.Errorf("pay from %s: %w", o.Status, ErrInvalidTransition)
	}

	tsnap, osnap := e.snapshots()
	o.Status = models.OrderCompleted
	o.Paid = true
	tablesChanged := e.reconcileTable(o.TableID, e.now())

	if err := e.persist(ctx, tablesChanged); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	e.emitOrder(models.EventOrderPaid, o)
	return o.Clone(), nil
}

// DeleteOrder removes the order entirely, history and all (distinct from
// Pay). If it was the last non-completed order on its table, the table
// reverts to available. Presentation-side selection pointing at the deleted
// order is the caller's concern.
func (e *Engine) DeleteOrder(ctx context.Context, orderID string) error {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return err
	}

	tsnap, osnap := e.snapshots()
	deleted := o.Clone()
	e.orders.delete(orderID)
	tablesChanged := e.reconcileTable(deleted.TableID, e.now())

	if err := e.persist(ctx, tablesChanged); err != nil {
		e.restore(tsnap, osnap)
		return err
	}
	e.emitOrder(models.EventOrderDeleted, deleted)
	return nil
}

// SwitchTable reassigns an in-progress order to a currently available table.
// The old table is re-evaluated and freed when no other active order remains
// on it; the destination gets a fresh occupied-since timestamp. This is the
// only way Order.TableID changes after creation.
func (e *Engine) SwitchTable(ctx context.Context, orderID, newTableID string) (*models.Order, error) {
	o, err := e.mutableOrder(orderID)
	if err != nil {
		return nil, err
	}
	dest, err := e.tables.Get(newTableID)
	if err != nil {
		return nil, err
	}
	if dest.Status != models.TableAvailable {
		return nil, fmt.Errorf("table %s is %s: %w", newTableID, dest.Status, ErrTableUnavailable)
	}

	now := e.now()
	tsnap, osnap := e.snapshots()
	oldTableID := o.TableID
	o.TableID = newTableID
	if err := e.tables.SetOccupied(newTableID, o.ID, now, false, false); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	e.reconcileTable(oldTableID, now)

	if err := e.persist(ctx, true); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	e.emitOrder(models.EventTableSwitched, o)
	return o.Clone(), nil
}

// mutableOrder fetches an order and rejects mutation of completed ones.
func (e *Engine) mutableOrder(orderID string) (*models.Order, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if !o.Active() {
		return nil, fmt.Errorf("order %s is completed and immutable: %w", orderID, ErrInvalidTransition)
	}
	return o, nil
}

// mutateItems applies an item mutation and maintains the modified flag: any
// item change on a confirmed or served order marks it modified until staff
// re-confirm; the same change on a preparing order does not.
func (e *Engine) mutateItems(ctx context.Context, orderID, event string, fn func(o *models.Order) error) (*models.Order, error) {
	o, err := e.mutableOrder(orderID)
	if err != nil {
		return nil, err
	}

	tsnap, osnap := e.snapshots()
	if err := fn(o); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	if o.Status == models.OrderConfirmed || o.Status == models.OrderServed {
		o.Modified = true
	}

	if err := e.persist(ctx, false); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	e.emitOrder(event, o)
	return o.Clone(), nil
}

func (e *Engine) transition(ctx context.Context, orderID, event string, fn func(o *models.Order) error) (*models.Order, error) {
	o, err := e.orders.Get(orderID)
	if err != nil {
		return nil, err
	}

	tsnap, osnap := e.snapshots()
	if err := fn(o); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}

	if err := e.persist(ctx, false); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	e.emitOrder(event, o)
	return o.Clone(), nil
}

// reconcileTable re-derives one table's occupancy from the order store: a
// table is occupied iff at least one non-completed order references it. All
// mutations that can affect occupancy funnel through here. Reserved tables
// without orders are left alone; reservation is set externally.
func (e *Engine) reconcileTable(tableID string, at time.Time) bool {
	t, err := e.tables.Get(tableID)
	if err != nil {
		return false
	}
	active := e.orders.ActiveByTable(tableID)
	if len(active) == 0 {
		if t.Status == models.TableOccupied {
			_ = e.tables.SetAvailable(tableID)
			return true
		}
		return false
	}

	changed := false
	if t.Status != models.TableOccupied {
		ts := at
		t.OccupiedSince = &ts
		t.Status = models.TableOccupied
		changed = true
	}
	latest := active[len(active)-1]
	if t.ActiveOrderID != latest.ID {
		t.ActiveOrderID = latest.ID
		changed = true
	}
	return changed
}

func (e *Engine) snapshots() ([]*models.Table, []*models.Order) {
	return e.tables.snapshot(), e.orders.snapshot()
}

func (e *Engine) restore(tables []*models.Table, orders []*models.Order) {
	e.tables.restore(tables)
	e.orders.restore(orders)
}

// persist writes the full next state through the gateway. Orders change on
// every operation; tables only when occupancy moved. Gateway failures
// (including ErrStaleWrite) surface unchanged, with no internal retry.
func (e *Engine) persist(ctx context.Context, tablesChanged bool) error {
	rev, err := e.gateway.SaveOrders(ctx, e.branchID, e.orders.snapshot(), e.orderRev)
	if err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	e.orderRev = rev

	if tablesChanged {
		rev, err := e.gateway.SaveTables(ctx, e.branchID, e.tables.snapshot(), e.tableRev)
		if err != nil {
			return fmt.Errorf("save tables: %w", err)
		}
		e.tableRev = rev
	}
	return nil
}
