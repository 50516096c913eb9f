package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/twpayne/go-geom"

	"github.com/geotrack/asset-tracker/internal/domain"
)

// GeoFenceService owns geofence mutations. Geofences are not part of the
// live-sync protocol, so no events are published here.
type GeoFenceService struct {
	store  GeoFenceStore
	logger *slog.Logger
}

func NewGeoFenceService(s GeoFenceStore, logger *slog.Logger) *GeoFenceService {
	return &GeoFenceService{store: s, logger: logger}
}

// Create builds the boundary polygon from the input ring, closing it when
// open. Type defaults to INCLUSION.
func (s *GeoFenceService) Create(ctx context.Context, in domain.CreateGeoFenceInput) (*domain.GeoFence, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	boundary, err := domain.Polygon(in.Coordinates)
	if err != nil {
		return nil, err
	}

	fenceType := domain.FenceInclusion
	if in.Type != "" {
		if fenceType, err = domain.ParseGeoFenceType(in.Type); err != nil {
			return nil, err
		}
	}

	fence, err := s.store.CreateGeoFence(ctx, uuid.NewString(), in.Name, in.Description, boundary, fenceType)
	if err != nil {
		return nil, err
	}

	s.logger.Info("geofence created", "geofence_id", fence.ID, "type", fence.Type)
	return fence, nil
}

func (s *GeoFenceService) Get(ctx context.Context, id string) (*domain.GeoFence, error) {
	fence, err := s.store.GetGeoFence(ctx, id)
	if err != nil {
		return nil, err
	}
	if fence == nil {
		return nil, fmt.Errorf("geofence %s: %w", id, domain.ErrNotFound)
	}
	return fence, nil
}

func (s *GeoFenceService) List(ctx context.Context, activeOnly bool) ([]domain.GeoFence, error) {
	return s.store.ListGeoFences(ctx, activeOnly)
}

// Update applies a partial update. Supplied coordinates are validated and
// ring-closed under the same rule as Create.
func (s *GeoFenceService) Update(ctx context.Context, id string, in domain.UpdateGeoFenceInput) (*domain.GeoFence, error) {
	var boundary *geom.Polygon
	if in.Coordinates != nil {
		var err error
		if boundary, err = domain.Polygon(in.Coordinates); err != nil {
			return nil, err
		}
	}
	if in.Type != nil {
		if _, err := domain.ParseGeoFenceType(*in.Type); err != nil {
			return nil, err
		}
	}

	fence, err := s.store.UpdateGeoFence(ctx, id, in, boundary)
	if err != nil {
		return nil, err
	}
	if fence == nil {
		return nil, fmt.Errorf("geofence %s: %w", id, domain.ErrNotFound)
	}
	return fence, nil
}

// Delete reports whether anything was removed; absent ids are not an error.
func (s *GeoFenceService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteGeoFence(ctx, id)
}

func (s *GeoFenceService) ToggleActive(ctx context.Context, id string) (*domain.GeoFence, error) {
	fence, err := s.store.ToggleGeoFenceActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if fence == nil {
		return nil, fmt.Errorf("geofence %s: %w", id, domain.ErrNotFound)
	}
	return fence, nil
}

func (s *GeoFenceService) Count(ctx context.Context) (int, error) {
	return s.store.CountGeoFences(ctx)
}
