package engine

import (
	"errors"

	"github.com/posfoundry/tablepos/internal/repositories"
)

// Operation failures are reported as typed errors so callers can decide
// whether to surface or swallow them. Wrapped values are matched with
// errors.Is.
var (
	// ErrInvalidTransition is returned when an operation requests a state
	// change not permitted from the current order or table status.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrCatalogItemNotFound is returned when an item mutation references a
	// menu item unknown to the catalog.
	ErrCatalogItemNotFound = errors.New("catalog item not found")

	// ErrTableUnavailable is returned when an operation targets a table that
	// is not available (occupied, reserved, or missing an explicit override).
	ErrTableUnavailable = errors.New("table unavailable")

	// ErrNotFound is returned when an operation references an order, table or
	// external order id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStaleWrite is surfaced from the persistence gateway when the stored
	// revision no longer matches the one the engine last loaded.
	ErrStaleWrite = repositories.ErrStaleWrite
)
