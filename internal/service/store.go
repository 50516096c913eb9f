package service

import (
	"context"

	"github.com/twpayne/go-geom"

	"github.com/geotrack/asset-tracker/internal/domain"
)

// AssetStore is the persistence contract the asset service depends on.
// Implementations return nil, nil (or false, nil) when an identifier does
// not resolve; the service layer translates that into domain.ErrNotFound.
type AssetStore interface {
	CreateAsset(ctx context.Context, id string, in domain.CreateAssetInput, status domain.AssetStatus) (*domain.Asset, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	UpdateAsset(ctx context.Context, id string, in domain.UpdateAssetInput) (*domain.Asset, error)
	UpdateAssetLocation(ctx context.Context, id string, lat, lng float64) (*domain.Asset, error)
	UpdateAssetStatus(ctx context.Context, id string, status domain.AssetStatus) (*domain.Asset, error)
	DeleteAsset(ctx context.Context, id string) (bool, error)
	BulkUpdateLocations(ctx context.Context, inputs []domain.UpdateLocationInput) ([]domain.Asset, error)
	ListAssetsNearby(ctx context.Context, lat, lng, meters float64) ([]domain.Asset, error)
	ListAssetsWithinGeoFence(ctx context.Context, geoFenceID string) ([]domain.Asset, error)
	ListAssetsWithinPolygon(ctx context.Context, polygon *geom.Polygon) ([]domain.Asset, error)
	ListAssetsByStatus(ctx context.Context, status domain.AssetStatus) ([]domain.Asset, error)
	ListAssetsByType(ctx context.Context, assetType string) ([]domain.Asset, error)
	SearchAssets(ctx context.Context, term string) ([]domain.Asset, error)
	ListAssetTypes(ctx context.Context) ([]string, error)
	CountAssetsByStatus(ctx context.Context) (map[domain.AssetStatus]int, error)
}

// GeoFenceStore is the persistence contract the geofence service depends on.
type GeoFenceStore interface {
	CreateGeoFence(ctx context.Context, id string, name string, description *string, boundary *geom.Polygon, fenceType domain.GeoFenceType) (*domain.GeoFence, error)
	GetGeoFence(ctx context.Context, id string) (*domain.GeoFence, error)
	ListGeoFences(ctx context.Context, activeOnly bool) ([]domain.GeoFence, error)
	UpdateGeoFence(ctx context.Context, id string, in domain.UpdateGeoFenceInput, boundary *geom.Polygon) (*domain.GeoFence, error)
	DeleteGeoFence(ctx context.Context, id string) (bool, error)
	ToggleGeoFenceActive(ctx context.Context, id string) (*domain.GeoFence, error)
	CountGeoFences(ctx context.Context) (int, error)
}
