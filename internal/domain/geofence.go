package domain

import (
	"fmt"
	"time"
)

// GeoFenceType distinguishes zones assets should stay inside from zones
// they should stay out of.
type GeoFenceType string

const (
	FenceInclusion GeoFenceType = "INCLUSION"
	FenceExclusion GeoFenceType = "EXCLUSION"
)

func ParseGeoFenceType(s string) (GeoFenceType, error) {
	switch GeoFenceType(s) {
	case FenceInclusion, FenceExclusion:
		return GeoFenceType(s), nil
	}
	return "", fmt.Errorf("%w: unknown geofence type %q", ErrInvalidInput, s)
}

// GeoFence is a named polygonal boundary. Boundary is always a closed ring:
// the first and last coordinate are identical.
type GeoFence struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Boundary    []Coordinate `json:"boundary"`
	Type        GeoFenceType `json:"type"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type CreateGeoFenceInput struct {
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Coordinates []Coordinate `json:"coordinates"`
	Type        string       `json:"type,omitempty"`
}

// UpdateGeoFenceInput carries a partial update; nil fields are left untouched.
type UpdateGeoFenceInput struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Coordinates []Coordinate `json:"coordinates,omitempty"`
	Type        *string      `json:"type,omitempty"`
	IsActive    *bool        `json:"isActive,omitempty"`
}
