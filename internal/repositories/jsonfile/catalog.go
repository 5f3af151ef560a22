package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
)

// Catalog serves menu items from a menu.json file in the data directory. The
// file is read once and kept in memory; the POS session never writes the
// catalog outside of branch setup.
type Catalog struct {
	dataDir string
	mu      sync.RWMutex
	items   map[string]*models.MenuItem
	loaded  bool
}

func NewCatalog(dataDir string) *Catalog {
	return &Catalog{
		dataDir: dataDir,
		items:   make(map[string]*models.MenuItem),
	}
}

func (c *Catalog) GetMenuItem(ctx context.Context, menuItemID string) (*models.MenuItem, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	mi, ok := c.items[menuItemID]
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", menuItemID, repositories.ErrNotFound)
	}
	cp := *mi
	return &cp, nil
}

func (c *Catalog) GetByBranchID(ctx context.Context, branchID string) ([]*models.MenuItem, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*models.MenuItem
	for _, mi := range c.items {
		if mi.BranchID == branchID {
			cp := *mi
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) BulkCreate(ctx context.Context, menuItems []*models.MenuItem) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, mi := range menuItems {
		cp := *mi
		c.items[mi.ID] = &cp
	}
	return c.flush()
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	if err := c.ensureLoaded(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items), nil
}

func (c *Catalog) DeleteAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*models.MenuItem)
	c.loaded = true
	return c.flush()
}

func (c *Catalog) path() string {
	return filepath.Join(c.dataDir, "menu.json")
}

func (c *Catalog) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	data, err := os.ReadFile(c.path())
	if errors.Is(err, os.ErrNotExist) {
		c.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.path(), err)
	}

	var items []*models.MenuItem
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding %s: %w", c.path(), err)
		}
	}
	for _, mi := range items {
		c.items[mi.ID] = mi
	}
	c.loaded = true
	return nil
}

// flush writes the catalog back; callers hold the write lock.
func (c *Catalog) flush() error {
	items := make([]*models.MenuItem, 0, len(c.items))
	for _, mi := range c.items {
		items = append(items, mi)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.dataDir, err)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding menu: %w", err)
	}
	if err := os.WriteFile(c.path(), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.path(), err)
	}
	return nil
}
