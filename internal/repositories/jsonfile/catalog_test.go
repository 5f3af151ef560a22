package jsonfile

import (
	"context"
	"errors"
	"testing"

	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
)

func TestCatalogLookup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := NewCatalog(dir)

	items := []*models.MenuItem{
		{ID: "m1", BranchID: "branch-1", Name: "Margherita Pizza", Price: 10, Category: "main course"},
		{ID: "m2", BranchID: "branch-1", Name: "Lemonade", Price: 4, Category: "drink"},
		{ID: "m3", BranchID: "branch-2", Name: "Espresso", Price: 2.5, Category: "drink"},
	}
	if err := c.BulkCreate(ctx, items); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	mi, err := c.GetMenuItem(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if mi.Name != "Margherita Pizza" || mi.Price != 10 {
		t.Errorf("got %+v", mi)
	}

	if _, err := c.GetMenuItem(ctx, "nope"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("unknown item err = %v, want ErrNotFound", err)
	}

	branch, err := c.GetByBranchID(ctx, "branch-1")
	if err != nil {
		t.Fatalf("GetByBranchID: %v", err)
	}
	if len(branch) != 2 {
		t.Errorf("branch-1 items = %d, want 2", len(branch))
	}

	// a fresh catalog over the same directory reads the file back
	c2 := NewCatalog(dir)
	n, err := c2.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestCatalogDeleteAll(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(t.TempDir())

	if err := c.BulkCreate(ctx, []*models.MenuItem{
		{ID: "m1", BranchID: "branch-1", Name: "Lemonade", Price: 4, Category: "drink"},
	}); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if err := c.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	n, _ := c.Count(ctx)
	if n != 0 {
		t.Errorf("count after delete = %d, want 0", n)
	}
}
