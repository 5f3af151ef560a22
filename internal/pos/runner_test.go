package pos

import (
	"context"
	"testing"
	"time"

	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories/jsonfile"
)

func testConfig(dataDir string) *models.Config {
	return &models.Config{
		BranchID:     "branch-1",
		TaxRate:      0.08,
		PollInterval: 20 * time.Millisecond,
		Storage:      "file",
		DataDir:      dataDir,
	}
}

func seedBranch(t *testing.T, dataDir string) (*jsonfile.Gateway, *jsonfile.Catalog) {
	t.Helper()
	ctx := context.Background()
	gw := jsonfile.NewGateway(dataDir)
	cat := jsonfile.NewCatalog(dataDir)

	if _, err := gw.SaveTables(ctx, "branch-1", []*models.Table{
		{ID: "t1", BranchID: "branch-1", Number: 1, Capacity: 4, Section: "indoor", Status: models.TableAvailable},
		{ID: "t2", BranchID: "branch-1", Number: 2, Capacity: 2, Section: "terrace", Status: models.TableAvailable},
	}, 0); err != nil {
		t.Fatalf("seeding tables: %v", err)
	}
	if err := cat.BulkCreate(ctx, []*models.MenuItem{
		{ID: "m1", BranchID: "branch-1", Name: "Margherita Pizza", Price: 10, Category: "main course"},
		{ID: "m2", BranchID: "branch-1", Name: "Lemonade", Price: 4, Category: "drink"},
	}); err != nil {
		t.Fatalf("seeding menu: %v", err)
	}
	return gw, cat
}

// Full dine-in session against file storage: seat, order, serve, pay.
func TestRunnerSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	gw, cat := seedBranch(t, dir)

	r := NewRunner(testConfig(dir), gw, cat, nil)
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()

	o, err := r.CreateOrder(ctx, "t1", false)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if _, err := r.AddItem(ctx, o.ID, "m1", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := r.ApplyDiscount(ctx, o.ID, models.DiscountPercent, 50); err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}

	totals, err := r.OrderTotals(o.ID)
	if err != nil {
		t.Fatalf("OrderTotals: %v", err)
	}
	if totals.Subtotal != 20 || totals.Discount != 10 || totals.Total != 10.8 {
		t.Errorf("totals = %+v", totals)
	}

	if _, err := r.Confirm(ctx, o.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := r.MarkServed(ctx, o.ID); err != nil {
		t.Fatalf("MarkServed: %v", err)
	}
	if _, err := r.Pay(ctx, o.ID); err != nil {
		t.Fatalf("Pay: %v", err)
	}

	for _, tb := range r.Tables() {
		if tb.ID == "t1" && tb.Status != models.TableAvailable {
			t.Errorf("table t1 = %s after settlement, want available", tb.Status)
		}
	}
	if len(r.CompletedOrders()) != 1 {
		t.Errorf("completed orders = %d, want 1", len(r.CompletedOrders()))
	}

	// a second session over the same directory picks up the history
	r2 := NewRunner(testConfig(dir), jsonfile.NewGateway(dir), jsonfile.NewCatalog(dir), nil)
	if err := r2.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer r2.Stop()
	if len(r2.CompletedOrders()) != 1 {
		t.Errorf("history lost across sessions: %d", len(r2.CompletedOrders()))
	}
}

// The poller must surface externally written incoming orders without a restart.
func TestRunnerPollsIncomingOrders(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	gw, cat := seedBranch(t, dir)

	r := NewRunner(testConfig(dir), gw, cat, nil)
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()

	if err := gw.SaveIncomingOrders(ctx, "branch-1", []*models.ExternalOrder{
		{ID: "x1", BranchID: "branch-1", CustomerName: "Ada",
			Items:     []models.ExternalOrderItem{{MenuItemID: "m2", Quantity: 1}},
			Timestamp: time.Now()},
	}); err != nil {
		t.Fatalf("SaveIncomingOrders: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for len(r.IncomingOrders()) == 0 {
		select {
		case <-deadline:
			t.Fatal("poller never picked up the incoming order")
		case <-time.After(10 * time.Millisecond):
		}
	}

	o, err := r.ConfirmNewOrder(ctx, "x1", "t2", false)
	if err != nil {
		t.Fatalf("ConfirmNewOrder: %v", err)
	}
	if o.TableID != "t2" || len(o.Items) != 1 {
		t.Errorf("promoted order = %+v", o)
	}
	if len(r.IncomingOrders()) != 0 {
		t.Error("promoted order still queued")
	}
}
