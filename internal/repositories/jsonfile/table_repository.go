package jsonfile

import (
	"context"

	"github.com/posfoundry/tablepos/internal/models"
)

// TableRepository writes bulk-generated table layouts through the file
// gateway during branch setup.
type TableRepository struct {
	gateway *Gateway
}

func NewTableRepository(gateway *Gateway) *TableRepository {
	return &TableRepository{gateway: gateway}
}

func (r *TableRepository) BulkCreate(ctx context.Context, tables []*models.Table) error {
	byBranch := make(map[string][]*models.Table)
	for _, t := range tables {
		byBranch[t.BranchID] = append(byBranch[t.BranchID], t)
	}
	for branchID, branchTables := range byBranch {
		existing, rev, err := r.gateway.LoadTables(ctx, branchID)
		if err != nil {
			return err
		}
		if _, err := r.gateway.SaveTables(ctx, branchID, append(existing, branchTables...), rev); err != nil {
			return err
		}
	}
	return nil
}

