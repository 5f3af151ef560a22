package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
)

// Gateway stores branch snapshots in postgres. Save calls are
// whole-collection replaces inside a transaction, guarded by a per-branch
// revision row so a concurrent terminal's stale write is rejected instead of
// silently clobbering newer state.
type Gateway struct {
	pool *pgxpool.Pool
}

func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

func Connect(ctx context.Context, config models.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, config.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}

func (g *Gateway) LoadTables(ctx context.Context, branchID string) ([]*models.Table, repositories.Revision, error) {
	query := `
        SELECT id, branch_id, number, capacity, section, status, occupied_since, active_order_id
        FROM pos_tables
        WHERE branch_id = $1
        ORDER BY number
    `
	rows, err := g.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		t := &models.Table{}
		var occupiedSince *time.Time
		var activeOrderID *string
		err := rows.Scan(
			&t.ID,
			&t.BranchID,
			&t.Number,
			&t.Capacity,
			&t.Section,
			&t.Status,
			&occupiedSince,
			&activeOrderID,
		)
		if err != nil {
			return nil, 0, err
		}
		t.OccupiedSince = occupiedSince
		if activeOrderID != nil {
			t.ActiveOrderID = *activeOrderID
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	rev, err := g.revision(ctx, branchID, "tables")
	if err != nil {
		return nil, 0, err
	}
	return tables, rev, nil
}

func (g *Gateway) SaveTables(ctx context.Context, branchID string, tables []*models.Table, rev repositories.Revision) (repositories.Revision, error) {
	next, err := g.replaceCollection(ctx, branchID, "tables", rev, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM pos_tables WHERE branch_id = $1", branchID); err != nil {
			return err
		}
		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"pos_tables"},
			[]string{"id", "branch_id", "number", "capacity", "section", "status", "occupied_since", "active_order_id"},
			pgx.CopyFromSlice(len(tables), func(i int) ([]interface{}, error) {
				t := tables[i]
				var activeOrderID *string
				if t.ActiveOrderID != "" {
					activeOrderID = &t.ActiveOrderID
				}
				return []interface{}{
					t.ID,
					branchID,
					t.Number,
					t.Capacity,
					t.Section,
					string(t.Status),
					t.OccupiedSince,
					activeOrderID,
				}, nil
			}),
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (g *Gateway) LoadOrders(ctx context.Context, branchID string) ([]*models.Order, repositories.Revision, error) {
	query := `
        SELECT id, branch_id, table_id, status, modified, discount_type, discount_value, paid, created_at, items
        FROM pos_orders
        WHERE branch_id = $1
        ORDER BY created_at
    `
	rows, err := g.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o := &models.Order{}
		var itemsJSON []byte
		err := rows.Scan(
			&o.ID,
			&o.BranchID,
			&o.TableID,
			&o.Status,
			&o.Modified,
			&o.DiscountType,
			&o.DiscountValue,
			&o.Paid,
			&o.Timestamp,
			&itemsJSON,
		)
		if err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, 0, fmt.Errorf("decoding items for order %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	rev, err := g.revision(ctx, branchID, "orders")
	if err != nil {
		return nil, 0, err
	}
	return orders, rev, nil
}

func (g *Gateway) SaveOrders(ctx context.Context, branchID string, orders []*models.Order, rev repositories.Revision) (repositories.Revision, error) {
	next, err := g.replaceCollection(ctx, branchID, "orders", rev, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM pos_orders WHERE branch_id = $1", branchID); err != nil {
			return err
		}
		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"pos_orders"},
			[]string{"id", "branch_id", "table_id", "status", "modified", "discount_type", "discount_value", "paid", "created_at", "items"},
			pgx.CopyFromSlice(len(orders), func(i int) ([]interface{}, error) {
				o := orders[i]
				itemsJSON, err := json.Marshal(o.Items)
				if err != nil {
					return nil, err
				}
				return []interface{}{
					o.ID,
					branchID,
					o.TableID,
					string(o.Status),
					o.Modified,
					string(o.DiscountType),
					o.DiscountValue,
					o.Paid,
					o.Timestamp,
					itemsJSON,
				}, nil
			}),
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (g *Gateway) LoadIncomingOrders(ctx context.Context, branchID string) ([]*models.ExternalOrder, error) {
	query := `
        SELECT id, branch_id, customer_name, created_at, items
        FROM pos_incoming_orders
        WHERE branch_id = $1
        ORDER BY created_at
    `
	rows, err := g.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incoming []*models.ExternalOrder
	for rows.Next() {
		x := &models.ExternalOrder{}
		var itemsJSON []byte
		if err := rows.Scan(&x.ID, &x.BranchID, &x.CustomerName, &x.Timestamp, &itemsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsJSON, &x.Items); err != nil {
			return nil, fmt.Errorf("decoding items for external order %s: %w", x.ID, err)
		}
		incoming = append(incoming, x)
	}
	return incoming, rows.Err()
}

func (g *Gateway) SaveIncomingOrders(ctx context.Context, branchID string, orders []*models.ExternalOrder) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM pos_incoming_orders WHERE branch_id = $1", branchID); err != nil {
		return err
	}
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"pos_incoming_orders"},
		[]string{"id", "branch_id", "customer_name", "created_at", "items"},
		pgx.CopyFromSlice(len(orders), func(i int) ([]interface{}, error) {
			x := orders[i]
			itemsJSON, err := json.Marshal(x.Items)
			if err != nil {
				return nil, err
			}
			return []interface{}{x.ID, branchID, x.CustomerName, x.Timestamp, itemsJSON}, nil
		}),
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// replaceCollection swaps a branch collection inside one transaction, first
// checking the revision row under lock. A mismatch means another writer got
// there since the caller's load.
func (g *Gateway) replaceCollection(ctx context.Context, branchID, collection string, rev repositories.Revision, replace func(tx pgx.Tx) error) (repositories.Revision, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var stored int64
	err = tx.QueryRow(ctx,
		"SELECT revision FROM pos_revisions WHERE branch_id = $1 AND collection = $2 FOR UPDATE",
		branchID, collection,
	).Scan(&stored)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	if repositories.Revision(stored) != rev {
		return 0, fmt.Errorf("%s for branch %s at revision %d, caller had %d: %w",
			collection, branchID, stored, rev, repositories.ErrStaleWrite)
	}

	if err := replace(tx); err != nil {
		return 0, err
	}

	next := stored + 1
	_, err = tx.Exec(ctx, `
        INSERT INTO pos_revisions (branch_id, collection, revision)
        VALUES ($1, $2, $3)
        ON CONFLICT (branch_id, collection) DO UPDATE SET revision = EXCLUDED.revision
    `, branchID, collection, next)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return repositories.Revision(next), nil
}

func (g *Gateway) revision(ctx context.Context, branchID, collection string) (repositories.Revision, error) {
	var rev int64
	err := g.pool.QueryRow(ctx,
		"SELECT revision FROM pos_revisions WHERE branch_id = $1 AND collection = $2",
		branchID, collection,
	).Scan(&rev)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return repositories.Revision(rev), nil
}
