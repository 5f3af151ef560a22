package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS menu_items (
        id        TEXT PRIMARY KEY,
        branch_id TEXT NOT NULL,
        name      TEXT NOT NULL,
        price     DOUBLE PRECISION NOT NULL,
        category  TEXT NOT NULL DEFAULT ''
    )`,
	`CREATE INDEX IF NOT EXISTS idx_menu_items_branch ON menu_items (branch_id)`,
	`CREATE TABLE IF NOT EXISTS pos_tables (
        id              TEXT PRIMARY KEY,
        branch_id       TEXT NOT NULL,
        number          INTEGER NOT NULL,
        capacity        INTEGER NOT NULL,
        section         TEXT NOT NULL DEFAULT '',
        status          TEXT NOT NULL,
        occupied_since  TIMESTAMPTZ,
        active_order_id TEXT
    )`,
	`CREATE INDEX IF NOT EXISTS idx_pos_tables_branch ON pos_tables (branch_id)`,
	`CREATE TABLE IF NOT EXISTS pos_orders (
        id             TEXT PRIMARY KEY,
        branch_id      TEXT NOT NULL,
        table_id       TEXT NOT NULL,
        status         TEXT NOT NULL,
        modified       BOOLEAN NOT NULL DEFAULT FALSE,
        discount_type  TEXT NOT NULL DEFAULT '',
        discount_value DOUBLE PRECISION NOT NULL DEFAULT 0,
        paid           BOOLEAN NOT NULL DEFAULT FALSE,
        created_at     TIMESTAMPTZ NOT NULL,
        items          JSONB NOT NULL DEFAULT '[]'
    )`,
	`CREATE INDEX IF NOT EXISTS idx_pos_orders_branch ON pos_orders (branch_id)`,
	`CREATE TABLE IF NOT EXISTS pos_incoming_orders (
        id            TEXT PRIMARY KEY,
        branch_id     TEXT NOT NULL,
        customer_name TEXT NOT NULL DEFAULT '',
        created_at    TIMESTAMPTZ NOT NULL,
        items         JSONB NOT NULL DEFAULT '[]'
    )`,
	`CREATE INDEX IF NOT EXISTS idx_pos_incoming_branch ON pos_incoming_orders (branch_id)`,
	`CREATE TABLE IF NOT EXISTS pos_revisions (
        branch_id  TEXT NOT NULL,
        collection TEXT NOT NULL,
        revision   BIGINT NOT NULL DEFAULT 0,
        PRIMARY KEY (branch_id, collection)
    )`,
}

// EnsureSchema creates the storage tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
