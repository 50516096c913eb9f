// Package synccache keeps a client-side mirror of the asset collection in
// step with the server: seeded by one bulk fetch, then patched by incoming
// asset events. It is a derived, disposable view with no write authority;
// a full re-seed is the only recovery path after a disconnect.
package synccache

import (
	"sync"

	"github.com/geotrack/asset-tracker/internal/domain"
)

// Cache is an ordered collection of asset snapshots keyed by identifier.
// Merges are last-write-wins by arrival order; applying the same Updated or
// LocationUpdated event twice is a no-op the second time.
type Cache struct {
	mu     sync.RWMutex
	order  []string
	assets map[string]domain.Asset
}

func New() *Cache {
	return &Cache{assets: make(map[string]domain.Asset)}
}

// Seed replaces the entire cache with a bulk-fetch result, preserving its
// order.
func (c *Cache) Seed(assets []domain.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = make([]string, 0, len(assets))
	c.assets = make(map[string]domain.Asset, len(assets))
	for _, a := range assets {
		if _, ok := c.assets[a.ID]; ok {
			continue
		}
		c.order = append(c.order, a.ID)
		c.assets[a.ID] = a
	}
}

// Apply merges one event into the cached state.
func (c *Cache) Apply(evt domain.AssetEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch evt.Type {
	case domain.EventAssetCreated:
		// The bulk fetch may already have raced this asset in.
		if evt.Asset == nil {
			return
		}
		if _, ok := c.assets[evt.Asset.ID]; ok {
			return
		}
		c.order = append(c.order, evt.Asset.ID)
		c.assets[evt.Asset.ID] = *evt.Asset

	case domain.EventAssetUpdated:
		// Stale events for locally removed entities are dropped; the next
		// full refetch self-corrects.
		if evt.Asset == nil {
			return
		}
		if _, ok := c.assets[evt.Asset.ID]; ok {
			c.assets[evt.Asset.ID] = *evt.Asset
		}

	case domain.EventAssetLocationUpdated:
		// Only coordinates and updatedAt move; the payload may carry stale
		// values for everything else.
		if evt.Asset == nil {
			return
		}
		if cached, ok := c.assets[evt.Asset.ID]; ok {
			cached.Latitude = evt.Asset.Latitude
			cached.Longitude = evt.Asset.Longitude
			cached.UpdatedAt = evt.Asset.UpdatedAt
			c.assets[evt.Asset.ID] = cached
		}

	case domain.EventAssetDeleted:
		if _, ok := c.assets[evt.AssetID]; !ok {
			return
		}
		delete(c.assets, evt.AssetID)
		for i, id := range c.order {
			if id == evt.AssetID {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// Get returns the cached snapshot for id.
func (c *Cache) Get(id string) (domain.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[id]
	return a, ok
}

// Snapshot returns the cached assets in collection order.
func (c *Cache) Snapshot() []domain.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Asset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.assets[id])
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}
