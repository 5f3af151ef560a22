package archiver

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/posfoundry/tablepos/internal/models"
)

type stubSource struct {
	orders []*models.Order
}

func (s *stubSource) CompletedOrders() []*models.Order { return s.orders }

func (s *stubSource) OrderBreakdown(orderID string) (subtotal, discount, tax, total float64, err error) {
	return 20, 10, 0.8, 10.8, nil
}

func settledOrder(id string) *models.Order {
	return &models.Order{
		ID:       id,
		BranchID: "branch-1",
		TableID:  "t1",
		Items: []models.OrderItem{
			{ID: "i1", MenuItemID: "m1", Name: "Margherita Pizza", Price: 10, Quantity: 2, Amount: 20},
		},
		Status:    models.OrderCompleted,
		Paid:      true,
		Timestamp: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	}
}

func TestExportWritesLocalParquet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := &stubSource{orders: []*models.Order{settledOrder("o1"), settledOrder("o2")}}

	a, err := New(ctx, "branch-1", src, models.ArchiveConfig{PathPrefix: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	object, err := a.Export(ctx, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	info, err := os.Stat(object)
	if err != nil {
		t.Fatalf("archive object missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("archive object is empty")
	}
}

func TestExportNothingSettled(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a, err := New(ctx, "branch-1", &stubSource{}, models.ArchiveConfig{PathPrefix: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	object, err := a.Export(ctx, time.Now())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if object != "" {
		t.Errorf("object = %q, want empty when nothing is settled", object)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("empty export left %d file(s) behind", len(entries))
	}
}
