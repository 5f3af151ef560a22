package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/posfoundry/tablepos/internal/models"
)

// TableRepository covers branch setup: bulk generation or import of the
// physical table layout. Runtime occupancy writes go through the Gateway.
type TableRepository struct {
	pool *pgxpool.Pool
}

func NewTableRepository(pool *pgxpool.Pool) *TableRepository {
	return &TableRepository{pool: pool}
}

func (r *TableRepository) BulkCreate(ctx context.Context, tables []*models.Table) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"pos_tables"},
		[]string{"id", "branch_id", "number", "capacity", "section", "status", "occupied_since", "active_order_id"},
		pgx.CopyFromSlice(len(tables), func(i int) ([]interface{}, error) {
			t := tables[i]
			return []interface{}{
				t.ID,
				t.BranchID,
				t.Number,
				t.Capacity,
				t.Section,
				string(t.Status),
				t.OccupiedSince,
				nil,
			}, nil
		}),
	)
	return err
}

func (r *TableRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM pos_tables").Scan(&count)
	return count, err
}

func (r *TableRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE pos_tables CASCADE")
	return err
}
