package catalog

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"pos_terminal/internal/models"
)

type Source interface {
	ListItems(ctx context.Context) ([]models.CatalogItem, error)
}

// Catalog is a possibly stale copy of the remote item list. Quantities in it
// are a preview; the remote API re-validates stock on every commit.
type Catalog struct {
	source Source
	logger *log.Logger

	mu          sync.RWMutex
	items       []models.CatalogItem
	byItemID    map[int64]int
	refreshedAt time.Time
}

func New(source Source, logger *log.Logger) *Catalog {
	return &Catalog{
		source:   source,
		logger:   logger,
		byItemID: make(map[int64]int),
	}
}

// Refresh reloads the item list. A failed load is logged and the previous
// snapshot, empty before the first success, stays in place.
func (c *Catalog) Refresh(ctx context.Context) {
	items, err := c.source.ListItems(ctx)
	if err != nil {
		c.logger.Printf("Failed to load items: %v", err)
		return
	}

	byItemID := make(map[int64]int, len(items))
	for i, item := range items {
		byItemID[item.ItemID] = i
	}

	c.mu.Lock()
	c.items = items
	c.byItemID = byItemID
	c.refreshedAt = time.Now()
	c.mu.Unlock()
}

func (c *Catalog) Lookup(itemID int64) (models.CatalogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byItemID[itemID]
	if !ok {
		return models.CatalogItem{}, false
	}
	return c.items[idx], true
}

func (c *Catalog) Items() []models.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Filter matches term case-insensitively against the name, or as a
// substring of the business item id.
func (c *Catalog) Filter(term string) []models.CatalogItem {
	items := c.Items()
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}

	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), term) ||
			strings.Contains(strconv.FormatInt(item.ItemID, 10), term) {
			out = append(out, item)
		}
	}
	return out
}

func (c *Catalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}
