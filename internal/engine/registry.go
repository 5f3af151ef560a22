package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/posfoundry/tablepos/internal/models"
)

// TableRegistry tracks table existence and occupancy for one branch. It knows
// nothing about order contents; the engine drives all status transitions and
// keeps the occupancy invariant against the order store.
type TableRegistry struct {
	branchID string
	tables   map[string]*models.Table
}

func NewTableRegistry(branchID string, tables []*models.Table) (*TableRegistry, error) {
	r := &TableRegistry{
		branchID: branchID,
		tables:   make(map[string]*models.Table, len(tables)),
	}
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("loading tables for branch %s: %w", branchID, err)
		}
		r.tables[t.ID] = t.Clone()
	}
	return r, nil
}

// Get returns the live table record, or ErrNotFound.
func (r *TableRegistry) Get(tableID string) (*models.Table, error) {
	t, ok := r.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("table %s: %w", tableID, ErrNotFound)
	}
	return t, nil
}

// List returns snapshot copies of all tables, ordered by display number.
func (r *TableRegistry) List() []*models.Table {
	out := make([]*models.Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// SetOccupied transitions a table to occupied on behalf of an order.
// Seating onto a reserved table requires the explicit override flag; seating
// onto a table already occupied by a different active order is rejected
// unless the caller is performing a table switch (allowShare).
func (r *TableRegistry) SetOccupied(tableID, orderID string, at time.Time, overrideReserved, allowShare bool) error {
	t, err := r.Get(tableID)
	if err != nil {
		return err
	}
	switch t.Status {
	case models.TableReserved:
		if !overrideReserved {
			return fmt.Errorf("table %s is reserved: %w", tableID, ErrTableUnavailable)
		}
	case models.TableOccupied:
		if t.ActiveOrderID != "" && t.ActiveOrderID != orderID && !allowShare {
			return fmt.Errorf("table %s already occupied by order %s: %w", tableID, t.ActiveOrderID, ErrInvalidTransition)
		}
	}
	if t.Status != models.TableOccupied {
		ts := at
		t.OccupiedSince = &ts
	}
	t.Status = models.TableOccupied
	t.ActiveOrderID = orderID
	return nil
}

// SetAvailable transitions a table to available. Idempotent; callers must
// have verified no non-completed orders remain on it.
func (r *TableRegistry) SetAvailable(tableID string) error {
	t, err := r.Get(tableID)
	if err != nil {
		return err
	}
	t.Status = models.TableAvailable
	t.OccupiedSince = nil
	t.ActiveOrderID = ""
	return nil
}

func (r *TableRegistry) snapshot() []*models.Table {
	return r.List()
}

func (r *TableRegistry) restore(tables []*models.Table) {
	r.tables = make(map[string]*models.Table, len(tables))
	for _, t := range tables {
		r.tables[t.ID] = t.Clone()
	}
}
