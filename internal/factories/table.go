package factories

import (
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"github.com/posfoundry/tablepos/internal/models"
)

var fake = faker.New()

type TableFactory struct{}

// CreateTable generates one table for branch setup. Numbers are assigned by
// the caller so they stay unique within the branch.
func (tf *TableFactory) CreateTable(branchID string, number int, cfg *models.Config) *models.Table {
	minCap := cfg.Seed.MinCapacity
	maxCap := cfg.Seed.MaxCapacity
	if minCap < 1 {
		minCap = 2
	}
	if maxCap < minCap {
		maxCap = minCap
	}
	return &models.Table{
		ID:       cuid.New(),
		BranchID: branchID,
		Number:   number,
		Capacity: fake.IntBetween(minCap, maxCap),
		Section:  randomSection(),
		Status:   models.TableAvailable,
	}
}

func randomSection() string {
	sections := []string{"indoor", "outdoor", "terrace", "bar"}
	return sections[fake.IntBetween(0, len(sections)-1)]
}
