package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/twpayne/go-geom"

	"github.com/geotrack/asset-tracker/internal/domain"
)

// memStore is an in-memory stand-in for the Postgres store. It mirrors the
// store contract exactly: nil/false results for unknown ids, database-style
// timestamp handling, geodesic ordering for nearby queries.
type memStore struct {
	mu     sync.Mutex
	order  []string
	assets map[string]domain.Asset
	forder []string
	fences map[string]domain.GeoFence
}

func newMemStore() *memStore {
	return &memStore{
		assets: make(map[string]domain.Asset),
		fences: make(map[string]domain.GeoFence),
	}
}

func (m *memStore) CreateAsset(_ context.Context, id string, in domain.CreateAssetInput, status domain.AssetStatus) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	a := domain.Asset{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		AssetType:   in.AssetType,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Status:      status,
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.order = append(m.order, id)
	m.assets[id] = a
	return &a, nil
}

func (m *memStore) GetAsset(_ context.Context, id string) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memStore) ListAssets(_ context.Context) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(), nil
}

func (m *memStore) snapshotLocked() []domain.Asset {
	out := make([]domain.Asset, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.assets[id])
	}
	return out
}

func (m *memStore) UpdateAsset(_ context.Context, id string, in domain.UpdateAssetInput) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.AssetType != nil {
		a.AssetType = *in.AssetType
	}
	if in.Latitude != nil && in.Longitude != nil {
		a.Latitude = *in.Latitude
		a.Longitude = *in.Longitude
	}
	if in.Status != nil {
		a.Status = domain.AssetStatus(*in.Status)
	}
	if in.Metadata != nil {
		a.Metadata = in.Metadata
	}
	a.UpdatedAt = time.Now().UTC()
	m.assets[id] = a
	return &a, nil
}

func (m *memStore) UpdateAssetLocation(_ context.Context, id string, lat, lng float64) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	a.Latitude = lat
	a.Longitude = lng
	a.UpdatedAt = time.Now().UTC()
	m.assets[id] = a
	return &a, nil
}

func (m *memStore) UpdateAssetStatus(_ context.Context, id string, status domain.AssetStatus) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	m.assets[id] = a
	return &a, nil
}

func (m *memStore) DeleteAsset(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[id]; !ok {
		return false, nil
	}
	delete(m.assets, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *memStore) BulkUpdateLocations(ctx context.Context, inputs []domain.UpdateLocationInput) ([]domain.Asset, error) {
	updated := make([]domain.Asset, 0, len(inputs))
	for _, in := range inputs {
		a, err := m.UpdateAssetLocation(ctx, in.ID, in.Latitude, in.Longitude)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		updated = append(updated, *a)
	}
	return updated, nil
}

const earthRadiusMeters = 6371000

func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func (m *memStore) ListAssetsNearby(_ context.Context, lat, lng, meters float64) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type withDistance struct {
		asset domain.Asset
		dist  float64
	}
	var matched []withDistance
	for _, a := range m.snapshotLocked() {
		d := haversine(lat, lng, a.Latitude, a.Longitude)
		if d <= meters {
			matched = append(matched, withDistance{a, d})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].dist < matched[j].dist })

	out := make([]domain.Asset, 0, len(matched))
	for _, w := range matched {
		out = append(out, w.asset)
	}
	return out, nil
}

// pointInRing is a straightforward ray cast over a closed ring.
func pointInRing(lat, lng float64, ring []domain.Coordinate) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		yi, xi := ring[i].Latitude, ring[i].Longitude
		yj, xj := ring[j].Latitude, ring[j].Longitude
		if (yi > lat) != (yj > lat) &&
			lng < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func (m *memStore) ListAssetsWithinGeoFence(_ context.Context, geoFenceID string) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fence, ok := m.fences[geoFenceID]
	if !ok {
		return []domain.Asset{}, nil
	}

	out := []domain.Asset{}
	for _, a := range m.snapshotLocked() {
		if pointInRing(a.Latitude, a.Longitude, fence.Boundary) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListAssetsWithinPolygon(_ context.Context, polygon *geom.Polygon) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ring := domain.RingCoordinates(polygon)
	out := []domain.Asset{}
	for _, a := range m.snapshotLocked() {
		if pointInRing(a.Latitude, a.Longitude, ring) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListAssetsByStatus(_ context.Context, status domain.AssetStatus) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.Asset{}
	for _, a := range m.snapshotLocked() {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ListAssetsByType(_ context.Context, assetType string) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.Asset{}
	for _, a := range m.snapshotLocked() {
		if a.AssetType == assetType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) SearchAssets(_ context.Context, term string) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lower := strings.ToLower(term)
	out := []domain.Asset{}
	for _, a := range m.snapshotLocked() {
		if strings.Contains(strings.ToLower(a.Name), lower) ||
			strings.Contains(strings.ToLower(a.Description), lower) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ListAssetTypes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	var types []string
	for _, a := range m.assets {
		if _, ok := seen[a.AssetType]; !ok {
			seen[a.AssetType] = struct{}{}
			types = append(types, a.AssetType)
		}
	}
	sort.Strings(types)
	return types, nil
}

func (m *memStore) CountAssetsByStatus(_ context.Context) (map[domain.AssetStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[domain.AssetStatus]int)
	for _, a := range m.assets {
		counts[a.Status]++
	}
	return counts, nil
}

func (m *memStore) CreateGeoFence(_ context.Context, id string, name string, description *string, boundary *geom.Polygon, fenceType domain.GeoFenceType) (*domain.GeoFence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := domain.GeoFence{
		ID:          id,
		Name:        name,
		Description: description,
		Boundary:    domain.RingCoordinates(boundary),
		Type:        fenceType,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	m.forder = append(m.forder, id)
	m.fences[id] = g
	return &g, nil
}

func (m *memStore) GetGeoFence(_ context.Context, id string) (*domain.GeoFence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.fences[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *memStore) ListGeoFences(_ context.Context, activeOnly bool) ([]domain.GeoFence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.GeoFence{}
	for _, id := range m.forder {
		g := m.fences[id]
		if activeOnly && !g.IsActive {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *memStore) UpdateGeoFence(_ context.Context, id string, in domain.UpdateGeoFenceInput, boundary *geom.Polygon) (*domain.GeoFence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.fences[id]
	if !ok {
		return nil, nil
	}
	if in.Name != nil {
		g.Name = *in.Name
	}
	if in.Description != nil {
		g.Description = in.Description
	}
	if boundary != nil {
		g.Boundary = domain.RingCoordinates(boundary)
	}
	if in.Type != nil {
		g.Type = domain.GeoFenceType(*in.Type)
	}
	if in.IsActive != nil {
		g.IsActive = *in.IsActive
	}
	m.fences[id] = g
	return &g, nil
}

func (m *memStore) DeleteGeoFence(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.fences[id]; !ok {
		return false, nil
	}
	delete(m.fences, id)
	for i, oid := range m.forder {
		if oid == id {
			m.forder = append(m.forder[:i], m.forder[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *memStore) ToggleGeoFenceActive(_ context.Context, id string) (*domain.GeoFence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.fences[id]
	if !ok {
		return nil, nil
	}
	g.IsActive = !g.IsActive
	m.fences[id] = g
	return &g, nil
}

func (m *memStore) CountGeoFences(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fences), nil
}

var (
	_ AssetStore    = (*memStore)(nil)
	_ GeoFenceStore = (*memStore)(nil)
)
