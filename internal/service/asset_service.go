package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/geotrack/asset-tracker/internal/bus"
	"github.com/geotrack/asset-tracker/internal/domain"
	"github.com/geotrack/asset-tracker/internal/store"
)

// AssetService owns the asset mutation contract: validate the input, persist
// the transition, then publish the matching event. Publication happens only
// after the store call returns, so by the time a subscriber sees an event the
// change is visible to any read issued after it. A failed mutation publishes
// nothing.
type AssetService struct {
	store  AssetStore
	bus    *bus.Bus
	cache  *store.SnapshotCache
	logger *slog.Logger
}

// NewAssetService wires the service. cache may be nil to disable the bulk
// list cache.
func NewAssetService(s AssetStore, b *bus.Bus, cache *store.SnapshotCache, logger *slog.Logger) *AssetService {
	return &AssetService{store: s, bus: b, cache: cache, logger: logger}
}

func (s *AssetService) publish(evt domain.AssetEvent) {
	s.bus.Publish(evt.Topic(), evt)
}

// Create persists a new asset. Status defaults to ACTIVE when omitted.
func (s *AssetService) Create(ctx context.Context, in domain.CreateAssetInput) (*domain.Asset, error) {
	if in.Name == "" || in.Description == "" || in.AssetType == "" {
		return nil, fmt.Errorf("%w: name, description and assetType are required", domain.ErrInvalidInput)
	}

	status := domain.StatusActive
	if in.Status != "" {
		var err error
		if status, err = domain.ParseAssetStatus(in.Status); err != nil {
			return nil, err
		}
	}

	asset, err := s.store.CreateAsset(ctx, uuid.NewString(), in, status)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.publish(domain.NewAssetCreated(asset))
	s.logger.Info("asset created", "asset_id", asset.ID, "asset_type", asset.AssetType)
	return asset, nil
}

// Update applies a partial update. Omitted fields are untouched, and a lone
// latitude or longitude is not applied.
func (s *AssetService) Update(ctx context.Context, id string, in domain.UpdateAssetInput) (*domain.Asset, error) {
	if in.Status != nil {
		if _, err := domain.ParseAssetStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	asset, err := s.store.UpdateAsset(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	s.cache.Invalidate(ctx)
	s.publish(domain.NewAssetUpdated(asset))
	return asset, nil
}

// UpdateLocation is the high-frequency GPS path. The event goes out on the
// generic location topic and on the asset's own sub-topic.
func (s *AssetService) UpdateLocation(ctx context.Context, in domain.UpdateLocationInput) (*domain.Asset, error) {
	asset, err := s.store.UpdateAssetLocation(ctx, in.ID, in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", in.ID, domain.ErrNotFound)
	}

	s.cache.Invalidate(ctx)
	evt := domain.NewAssetLocationUpdated(asset)
	s.publish(evt)
	s.bus.Publish(domain.LocationTopic(asset.ID), evt)
	return asset, nil
}

func (s *AssetService) UpdateStatus(ctx context.Context, id, status string) (*domain.Asset, error) {
	parsed, err := domain.ParseAssetStatus(status)
	if err != nil {
		return nil, err
	}

	asset, err := s.store.UpdateAssetStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	s.cache.Invalidate(ctx)
	s.publish(domain.NewAssetUpdated(asset))
	return asset, nil
}

// Delete removes the asset and reports whether anything was removed.
// Deleting an absent id returns false with no error and no event.
func (s *AssetService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.DeleteAsset(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	s.cache.Invalidate(ctx)
	s.publish(domain.NewAssetDeleted(id))
	s.logger.Info("asset deleted", "asset_id", id)
	return true, nil
}

// BulkUpdateLocations persists all updates as one unit; unknown identifiers
// are skipped. One location event is published per updated asset, in input
// order, on the generic topic.
func (s *AssetService) BulkUpdateLocations(ctx context.Context, inputs []domain.UpdateLocationInput) ([]domain.Asset, error) {
	updated, err := s.store.BulkUpdateLocations(ctx, inputs)
	if err != nil {
		return nil, err
	}

	if len(updated) > 0 {
		s.cache.Invalidate(ctx)
	}
	for i := range updated {
		s.publish(domain.NewAssetLocationUpdated(&updated[i]))
	}
	return updated, nil
}

func (s *AssetService) Get(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return asset, nil
}

// List returns every asset, read through the snapshot cache when one is
// configured.
func (s *AssetService) List(ctx context.Context) ([]domain.Asset, error) {
	if assets, ok := s.cache.Get(ctx); ok {
		return assets, nil
	}

	assets, err := s.store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, assets)
	return assets, nil
}

func (s *AssetService) ListNearby(ctx context.Context, lat, lng, meters float64) ([]domain.Asset, error) {
	if meters <= 0 {
		return nil, fmt.Errorf("%w: distance must be positive", domain.ErrInvalidInput)
	}
	return s.store.ListAssetsNearby(ctx, lat, lng, meters)
}

func (s *AssetService) ListWithinGeoFence(ctx context.Context, geoFenceID string) ([]domain.Asset, error) {
	return s.store.ListAssetsWithinGeoFence(ctx, geoFenceID)
}

// ListWithinBoundary finds assets inside an arbitrary polygon, applying the
// shared ring-closing rule to the input coordinates.
func (s *AssetService) ListWithinBoundary(ctx context.Context, coords []domain.Coordinate) ([]domain.Asset, error) {
	polygon, err := domain.Polygon(coords)
	if err != nil {
		return nil, err
	}
	return s.store.ListAssetsWithinPolygon(ctx, polygon)
}

func (s *AssetService) ListByStatus(ctx context.Context, status string) ([]domain.Asset, error) {
	parsed, err := domain.ParseAssetStatus(status)
	if err != nil {
		return nil, err
	}
	return s.store.ListAssetsByStatus(ctx, parsed)
}

func (s *AssetService) ListByType(ctx context.Context, assetType string) ([]domain.Asset, error) {
	return s.store.ListAssetsByType(ctx, assetType)
}

func (s *AssetService) Search(ctx context.Context, term string) ([]domain.Asset, error) {
	return s.store.SearchAssets(ctx, term)
}

func (s *AssetService) ListTypes(ctx context.Context) ([]string, error) {
	return s.store.ListAssetTypes(ctx)
}

func (s *AssetService) CountByStatus(ctx context.Context) (map[domain.AssetStatus]int, error) {
	return s.store.CountAssetsByStatus(ctx)
}
