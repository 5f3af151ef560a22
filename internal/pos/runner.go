package pos

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/posfoundry/tablepos/internal/archiver"
	"github.com/posfoundry/tablepos/internal/engine"
	"github.com/posfoundry/tablepos/internal/events"
	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
)

// Runner is one staff session on one branch. The engine itself is
// single-threaded by design; the runner serializes the poller's and the
// archiver's access against operator calls with a session mutex, so every
// operation still runs to completion before the next one starts.
type Runner struct {
	cfg    *models.Config
	engine *engine.Engine

	mu       sync.Mutex
	poller   *engine.Poller
	archPoll *engine.Poller
	arch     *archiver.Archiver
}

func NewRunner(cfg *models.Config, gateway repositories.Gateway, catalog repositories.Catalog, sink events.Sink) *Runner {
	return &Runner{
		cfg:    cfg,
		engine: engine.New(cfg.BranchID, cfg.TaxRate, gateway, catalog, sink),
	}
}

// Start loads branch state, primes the incoming queue, and launches the
// background tasks. Stop tears them down; after Stop no poll fires again.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.engine.Load(ctx); err != nil {
		return fmt.Errorf("loading branch %s: %w", r.cfg.BranchID, err)
	}
	if err := r.engine.RefreshIncoming(ctx); err != nil {
		log.Printf("initial incoming order fetch failed: %v", err)
	}

	r.poller = engine.NewPoller(r.cfg.PollInterval, func(ctx context.Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.engine.RefreshIncoming(ctx)
	})
	r.poller.Start(ctx)

	if r.cfg.Archive.Enabled {
		arch, err := archiver.New(ctx, r.cfg.BranchID, r, r.cfg.Archive)
		if err != nil {
			r.poller.Stop()
			return fmt.Errorf("starting archiver: %w", err)
		}
		r.arch = arch
		r.archPoll = engine.NewPoller(r.cfg.Archive.Interval, func(ctx context.Context) error {
			object, err := arch.Export(ctx, time.Now())
			if err == nil && object != "" {
				log.Printf("archived completed orders to %s", object)
			}
			return err
		})
		r.archPoll.Start(ctx)
	}
	return nil
}

func (r *Runner) Stop() {
	if r.poller != nil {
		r.poller.Stop()
	}
	if r.archPoll != nil {
		r.archPoll.Stop()
	}
}

// Read views. All return snapshot copies.

func (r *Runner) Tables() []*models.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Tables()
}

func (r *Runner) OrdersForTable(tableID string) []*models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.OrdersForTable(tableID)
}

func (r *Runner) ActiveOrders() []*models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ActiveOrders()
}

func (r *Runner) IncomingOrders() []*models.ExternalOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.IncomingOrders()
}

func (r *Runner) OrderTotals(orderID string) (engine.Totals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.OrderTotals(orderID)
}

// Engine operations, serialized per session.

func (r *Runner) CreateOrder(ctx context.Context, tableID string, seatReserved bool) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.CreateOrder(ctx, tableID, seatReserved)
}

func (r *Runner) AddItem(ctx context.Context, orderID, menuItemID string, qty int) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.AddItem(ctx, orderID, menuItemID, qty)
}

func (r *Runner) UpdateQuantity(ctx context.Context, orderID, itemID string, delta int) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.UpdateQuantity(ctx, orderID, itemID, delta)
}

func (r *Runner) RemoveItem(ctx context.Context, orderID, itemID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.RemoveItem(ctx, orderID, itemID)
}

func (r *Runner) DeleteOrder(ctx context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.DeleteOrder(ctx, orderID)
}

func (r *Runner) ApplyDiscount(ctx context.Context, orderID string, dt models.DiscountType, value float64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ApplyDiscount(ctx, orderID, dt, value)
}

func (r *Runner) Confirm(ctx context.Context, orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Confirm(ctx, orderID)
}

func (r *Runner) MarkServed(ctx context.Context, orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.MarkServed(ctx, orderID)
}

func (r *Runner) ConfirmModifications(ctx context.Context, orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ConfirmModifications(ctx, orderID)
}

func (r *Runner) Pay(ctx context.Context, orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Pay(ctx, orderID)
}

func (r *Runner) SwitchTable(ctx context.Context, orderID, newTableID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.SwitchTable(ctx, orderID, newTableID)
}

func (r *Runner) ConfirmNewOrder(ctx context.Context, externalOrderID, tableID string, seatReserved bool) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.ConfirmNewOrder(ctx, externalOrderID, tableID, seatReserved)
}

func (r *Runner) RejectNewOrder(ctx context.Context, externalOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.RejectNewOrder(ctx, externalOrderID)
}

// archiver.Snapshotter

func (r *Runner) CompletedOrders() []*models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.CompletedOrders()
}

func (r *Runner) OrderBreakdown(orderID string) (subtotal, discount, tax, total float64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.engine.OrderTotals(orderID)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return t.Subtotal, t.Discount, t.Tax, t.Total, nil
}
