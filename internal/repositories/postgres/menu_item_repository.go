package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
)

// MenuItemRepository is the postgres-backed catalog provider.
type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

func (r *MenuItemRepository) GetMenuItem(ctx context.Context, menuItemID string) (*models.MenuItem, error) {
	query := `
        SELECT id, branch_id, name, price, category
        FROM menu_items
        WHERE id = $1
    `
	mi := &models.MenuItem{}
	err := r.pool.QueryRow(ctx, query, menuItemID).Scan(
		&mi.ID,
		&mi.BranchID,
		&mi.Name,
		&mi.Price,
		&mi.Category,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("menu item %s: %w", menuItemID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return mi, nil
}

func (r *MenuItemRepository) GetByBranchID(ctx context.Context, branchID string) ([]*models.MenuItem, error) {
	query := `
        SELECT id, branch_id, name, price, category
        FROM menu_items
        WHERE branch_id = $1
        ORDER BY category, name
    `
	rows, err := r.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menuItems []*models.MenuItem
	for rows.Next() {
		mi := &models.MenuItem{}
		err := rows.Scan(
			&mi.ID,
			&mi.BranchID,
			&mi.Name,
			&mi.Price,
			&mi.Category,
		)
		if err != nil {
			return nil, err
		}
		menuItems = append(menuItems, mi)
	}
	return menuItems, rows.Err()
}

func (r *MenuItemRepository) BulkCreate(ctx context.Context, menuItems []*models.MenuItem) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{"id", "branch_id", "name", "price", "category"},
		pgx.CopyFromSlice(len(menuItems), func(i int) ([]interface{}, error) {
			return []interface{}{
				menuItems[i].ID,
				menuItems[i].BranchID,
				menuItems[i].Name,
				menuItems[i].Price,
				menuItems[i].Category,
			}, nil
		}),
	)
	return err
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count)
	return count, err
}

func (r *MenuItemRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE menu_items CASCADE")
	return err
}
