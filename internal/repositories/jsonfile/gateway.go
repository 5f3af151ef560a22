package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
)

// Gateway persists branch snapshots as JSON files under a data directory,
// one subdirectory per branch. It is the single-writer fallback storage for
// running without postgres, so revision tokens are tracked in memory only.
type Gateway struct {
	dataDir string
	mu      sync.RWMutex
	revs    map[string]repositories.Revision
}

func NewGateway(dataDir string) *Gateway {
	return &Gateway{
		dataDir: dataDir,
		revs:    make(map[string]repositories.Revision),
	}
}

func (g *Gateway) LoadTables(ctx context.Context, branchID string) ([]*models.Table, repositories.Revision, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var tables []*models.Table
	if err := g.read(branchID, "tables.json", &tables); err != nil {
		return nil, 0, err
	}
	return tables, g.revs[branchID+"/tables"], nil
}

func (g *Gateway) SaveTables(ctx context.Context, branchID string, tables []*models.Table, rev repositories.Revision) (repositories.Revision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.write(branchID, "tables.json", tables); err != nil {
		return 0, err
	}
	next := g.revs[branchID+"/tables"] + 1
	g.revs[branchID+"/tables"] = next
	return next, nil
}

func (g *Gateway) LoadOrders(ctx context.Context, branchID string) ([]*models.Order, repositories.Revision, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var orders []*models.Order
	if err := g.read(branchID, "orders.json", &orders); err != nil {
		return nil, 0, err
	}
	return orders, g.revs[branchID+"/orders"], nil
}

func (g *Gateway) SaveOrders(ctx context.Context, branchID string, orders []*models.Order, rev repositories.Revision) (repositories.Revision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.write(branchID, "orders.json", orders); err != nil {
		return 0, err
	}
	next := g.revs[branchID+"/orders"] + 1
	g.revs[branchID+"/orders"] = next
	return next, nil
}

func (g *Gateway) LoadIncomingOrders(ctx context.Context, branchID string) ([]*models.ExternalOrder, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var incoming []*models.ExternalOrder
	if err := g.read(branchID, "incoming.json", &incoming); err != nil {
		return nil, err
	}
	return incoming, nil
}

func (g *Gateway) SaveIncomingOrders(ctx context.Context, branchID string, orders []*models.ExternalOrder) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.write(branchID, "incoming.json", orders)
}

func (g *Gateway) read(branchID, name string, out interface{}) error {
	path := filepath.Join(g.dataDir, branchID, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil // empty collection
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// write replaces the file atomically via a temp file and rename, so a crash
// mid-write never leaves a truncated snapshot behind.
func (g *Gateway) write(branchID, name string, v interface{}) error {
	dir := filepath.Join(g.dataDir, branchID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
