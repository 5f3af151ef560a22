package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
)

// RefreshIncoming re-reads the customer-submitted orders awaiting a table
// from the gateway. Called by the poller on its interval and at session
// start.
func (e *Engine) RefreshIncoming(ctx context.Context) error {
	incoming, err := e.gateway.LoadIncomingOrders(ctx, e.branchID)
	if err != nil {
		return fmt.Errorf("load incoming orders: %w", err)
	}
	e.incoming = incoming
	return nil
}

// IncomingOrders returns snapshot copies of the pending external orders,
// oldest first.
func (e *Engine) IncomingOrders() []*models.ExternalOrder {
	out := make([]*models.ExternalOrder, 0, len(e.incoming))
	for _, x := range e.incoming {
		c := *x
		c.Items = make([]models.ExternalOrderItem, len(x.Items))
		copy(c.Items, x.Items)
		out = append(out, &c)
	}
	return out
}

// ConfirmNewOrder promotes a customer-submitted order onto a table: a fresh
// order is created with the external items resolved against the catalog, and
// the external order leaves the incoming queue. Unknown menu items fail the
// whole promotion before anything is applied.
func (e *Engine) ConfirmNewOrder(ctx context.Context, externalOrderID, tableID string, seatReserved bool) (*models.Order, error) {
	idx := -1
	for i, x := range e.incoming {
		if x.ID == externalOrderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("external order %s: %w", externalOrderID, ErrNotFound)
	}
	ext := e.incoming[idx]

	if _, err := e.tables.Get(tableID); err != nil {
		return nil, err
	}

	// Resolve all items up front so a stale menu reference rejects the
	// promotion without side effects.
	items := make([]models.OrderItem, 0, len(ext.Items))
	for _, xi := range ext.Items {
		mi, err := e.catalog.GetMenuItem(ctx, xi.MenuItemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("menu item %s: %w", xi.MenuItemID, ErrCatalogItemNotFound)
			}
			return nil, fmt.Errorf("catalog lookup %s: %w", xi.MenuItemID, err)
		}
		qty := xi.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, models.OrderItem{
			ID:         e.newID(),
			MenuItemID: mi.ID,
			Name:       mi.Name,
			Price:      mi.Price,
			Quantity:   qty,
			Amount:     mi.Price * float64(qty),
		})
	}

	now := e.now()
	order := &models.Order{
		ID:        e.newID(),
		BranchID:  e.branchID,
		TableID:   tableID,
		Items:     items,
		Status:    models.OrderPreparing,
		Timestamp: now,
	}

	tsnap, osnap := e.snapshots()
	if err := e.tables.SetOccupied(tableID, order.ID, now, seatReserved, true); err != nil {
		return nil, err
	}
	e.orders.put(order)

	remaining := append(append([]*models.ExternalOrder{}, e.incoming[:idx]...), e.incoming[idx+1:]...)

	if err := e.persist(ctx, true); err != nil {
		e.restore(tsnap, osnap)
		return nil, err
	}
	if err := e.gateway.SaveIncomingOrders(ctx, e.branchID, remaining); err != nil {
		// the order collections already committed; roll them back so the
		// promotion fully fails and a retry cannot duplicate the order
		e.restore(tsnap, osnap)
		if perr := e.persist(ctx, true); perr != nil {
			log.Printf("rolling back promotion of external order %s: %v", externalOrderID, perr)
		}
		return nil, fmt.Errorf("save incoming orders: %w", err)
	}
	e.incoming = remaining

	e.emitOrder(models.EventExternalOrderAccepted, order)
	return order.Clone(), nil
}

// RejectNewOrder drops a customer-submitted order from the incoming queue
// with no engine-side effects.
func (e *Engine) RejectNewOrder(ctx context.Context, externalOrderID string) error {
	idx := -1
	for i, x := range e.incoming {
		if x.ID == externalOrderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("external order %s: %w", externalOrderID, ErrNotFound)
	}

	remaining := append(append([]*models.ExternalOrder{}, e.incoming[:idx]...), e.incoming[idx+1:]...)
	if err := e.gateway.SaveIncomingOrders(ctx, e.branchID, remaining); err != nil {
		return fmt.Errorf("save incoming orders: %w", err)
	}
	e.incoming = remaining
	e.emit(models.EventExternalOrderRejected, map[string]any{
		"branch_id":         e.branchID,
		"external_order_id": externalOrderID,
	})
	return nil
}
