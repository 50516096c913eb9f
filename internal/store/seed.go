package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/geotrack/asset-tracker/internal/domain"
)

type demoAsset struct {
	name        string
	description string
	assetType   string
	lng, lat    float64
	status      domain.AssetStatus
}

// Demo fleet around San Francisco.
var demoAssets = []demoAsset{
	{"Delivery Truck #1", "Ford Transit delivery vehicle", "Vehicle", -122.4194, 37.7749, domain.StatusActive},
	{"Delivery Truck #2", "Mercedes Sprinter delivery vehicle", "Vehicle", -122.4094, 37.7849, domain.StatusActive},
	{"Field Technician #1", "Senior maintenance technician", "Personnel", -122.4294, 37.7649, domain.StatusActive},
	{"Generator Unit A", "Portable power generator", "Equipment", -122.3994, 37.7949, domain.StatusActive},
	{"Forklift #3", "Electric warehouse forklift", "Equipment", -122.4394, 37.7549, domain.StatusMaintenance},
	{"Service Van #5", "HVAC service vehicle", "Vehicle", -122.4494, 37.7449, domain.StatusActive},
	{"Drone Unit #1", "DJI inspection drone", "Equipment", -122.4144, 37.7799, domain.StatusActive},
	{"Field Supervisor", "Area supervisor for downtown region", "Personnel", -122.4244, 37.7699, domain.StatusActive},
}

// SeedDemoData loads the demo fleet and a downtown geofence. It is a no-op
// when any assets already exist.
func (s *PostgresStore) SeedDemoData(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assets`).Scan(&count); err != nil {
		return fmt.Errorf("checking existing assets: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, d := range demoAssets {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO assets (id, name, description, asset_type, location, status)
			VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326), $7)`,
			uuid.NewString(), d.name, d.description, d.assetType, d.lng, d.lat, d.status,
		)
		if err != nil {
			return fmt.Errorf("seeding asset %q: %w", d.name, err)
		}
	}

	downtown, err := domain.Polygon([]domain.Coordinate{
		{Latitude: 37.7899, Longitude: -122.4294},
		{Latitude: 37.7899, Longitude: -122.4094},
		{Latitude: 37.7599, Longitude: -122.4094},
		{Latitude: 37.7599, Longitude: -122.4294},
	})
	if err != nil {
		return fmt.Errorf("building demo geofence: %w", err)
	}

	description := "Primary service area in downtown San Francisco"
	if _, err := s.CreateGeoFence(ctx, uuid.NewString(), "Downtown SF Zone", &description, downtown, domain.FenceInclusion); err != nil {
		return fmt.Errorf("seeding geofence: %w", err)
	}

	return nil
}
