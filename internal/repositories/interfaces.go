package repositories

import (
	"context"
	"errors"

	"github.com/posfoundry/tablepos/internal/models"
)

// ErrNotFound is returned by gateways and catalogs for unknown ids.
var ErrNotFound = errors.New("record not found")

// ErrStaleWrite is returned by a Save call whose revision token is out of
// date; the caller must re-fetch and retry.
var ErrStaleWrite = errors.New("stale write: revision conflict")

// Revision is an optimistic-concurrency token per branch collection. Save
// calls carry the revision the caller loaded; a gateway targeting concurrent
// POS terminals rejects the write when the stored revision moved on. The
// single-writer file gateway ignores it.
type Revision int64

// Gateway is the durable-storage contract for a branch's tables, orders and
// incoming customer orders. All calls are whole-collection read/write; the
// engine computes the full next state before writing.
type Gateway interface {
	LoadTables(ctx context.Context, branchID string) ([]*models.Table, Revision, error)
	SaveTables(ctx context.Context, branchID string, tables []*models.Table, rev Revision) (Revision, error)

	LoadOrders(ctx context.Context, branchID string) ([]*models.Order, Revision, error)
	SaveOrders(ctx context.Context, branchID string, orders []*models.Order, rev Revision) (Revision, error)

	LoadIncomingOrders(ctx context.Context, branchID string) ([]*models.ExternalOrder, error)
	SaveIncomingOrders(ctx context.Context, branchID string, orders []*models.ExternalOrder) error
}

// Catalog supplies the menu items available at a branch. The engine only
// reads from it; unknown ids must be reported, not defaulted.
type Catalog interface {
	GetMenuItem(ctx context.Context, menuItemID string) (*models.MenuItem, error)
	GetByBranchID(ctx context.Context, branchID string) ([]*models.MenuItem, error)
}

// MenuItemRepository is the write side of the catalog, used at branch setup.
type MenuItemRepository interface {
	Catalog
	BulkCreate(ctx context.Context, menuItems []*models.MenuItem) error
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// TableRepository is the write side of table setup (bulk generation/import).
// Runtime occupancy changes never go through it; they flow via the Gateway.
type TableRepository interface {
	BulkCreate(ctx context.Context, tables []*models.Table) error
}
