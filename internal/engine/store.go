package engine

import (
	"fmt"
	"sort"

	"github.com/posfoundry/tablepos/internal/models"
)

// OrderStore holds all orders for a branch across all tables, including
// completed ones kept for history. Only the engine writes to it.
type OrderStore struct {
	branchID string
	orders   map[string]*models.Order
}

func NewOrderStore(branchID string, orders []*models.Order) (*OrderStore, error) {
	s := &OrderStore{
		branchID: branchID,
		orders:   make(map[string]*models.Order, len(orders)),
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("loading orders for branch %s: %w", branchID, err)
		}
		s.orders[o.ID] = o.Clone()
	}
	return s, nil
}

// Get returns the live order record, or ErrNotFound.
func (s *OrderStore) Get(orderID string) (*models.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return o, nil
}

func (s *OrderStore) put(o *models.Order) {
	s.orders[o.ID] = o
}

func (s *OrderStore) delete(orderID string) {
	delete(s.orders, orderID)
}

// ActiveByTable returns the non-completed orders currently seated at a table,
// oldest first.
func (s *OrderStore) ActiveByTable(tableID string) []*models.Order {
	var out []*models.Order
	for _, o := range s.orders {
		if o.TableID == tableID && o.Active() {
			out = append(out, o)
		}
	}
	sortByTimestamp(out)
	return out
}

// List returns snapshot copies of all orders, oldest first. Completed orders
// are included; current-order views filter on Active.
func (s *OrderStore) List() []*models.Order {
	out := make([]*models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	sortByTimestamp(out)
	return out
}

// ListActive returns snapshot copies of the non-completed orders, oldest first.
func (s *OrderStore) ListActive() []*models.Order {
	var out []*models.Order
	for _, o := range s.orders {
		if o.Active() {
			out = append(out, o.Clone())
		}
	}
	sortByTimestamp(out)
	return out
}

// ListCompleted returns snapshot copies of the paid-and-completed history.
func (s *OrderStore) ListCompleted() []*models.Order {
	var out []*models.Order
	for _, o := range s.orders {
		if !o.Active() {
			out = append(out, o.Clone())
		}
	}
	sortByTimestamp(out)
	return out
}

func (s *OrderStore) snapshot() []*models.Order {
	return s.List()
}

func (s *OrderStore) restore(orders []*models.Order) {
	s.orders = make(map[string]*models.Order, len(orders))
	for _, o := range orders {
		s.orders[o.ID] = o.Clone()
	}
}

func sortByTimestamp(orders []*models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Timestamp.Equal(orders[j].Timestamp) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].Timestamp.Before(orders[j].Timestamp)
	})
}
