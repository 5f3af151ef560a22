package models

import "time"

// Table is a physical seating unit at a branch. Status transitions are owned by
// the lifecycle engine; ActiveOrderID is an informational convenience, the
// authoritative link is Order.TableID.
type Table struct {
	ID            string      `json:"id"`
	BranchID      string      `json:"branch_id"`
	Number        int         `json:"number"`
	Capacity      int         `json:"capacity"`
	Section       string      `json:"section"` // e.g. "indoor", "outdoor", "terrace"
	Status        TableStatus `json:"status"`
	OccupiedSince *time.Time  `json:"occupied_since,omitempty"`
	ActiveOrderID string      `json:"active_order_id,omitempty"`
}

func (t *Table) Clone() *Table {
	c := *t
	if t.OccupiedSince != nil {
		ts := *t.OccupiedSince
		c.OccupiedSince = &ts
	}
	return &c
}

// Validate normalises externally loaded table records.
func (t *Table) Validate() error {
	if t.ID == "" {
		return errEmptyID("table")
	}
	if t.Capacity <= 0 {
		return errInvalidField("table", t.ID, "capacity")
	}
	if !t.Status.Valid() {
		return errInvalidField("table", t.ID, "status")
	}
	if t.Status != TableOccupied && t.OccupiedSince != nil {
		t.OccupiedSince = nil
	}
	return nil
}
