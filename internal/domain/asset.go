package domain

import (
	"fmt"
	"time"
)

// AssetStatus is the lifecycle state of a tracked asset.
type AssetStatus string

const (
	StatusActive      AssetStatus = "ACTIVE"
	StatusInactive    AssetStatus = "INACTIVE"
	StatusMaintenance AssetStatus = "MAINTENANCE"
	StatusRetired     AssetStatus = "RETIRED"
)

// ParseAssetStatus validates a status string coming in from the API.
func ParseAssetStatus(s string) (AssetStatus, error) {
	switch AssetStatus(s) {
	case StatusActive, StatusInactive, StatusMaintenance, StatusRetired:
		return AssetStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown asset status %q", ErrInvalidInput, s)
}

// Asset is a tracked entity with a WGS84 point location.
type Asset struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	AssetType   string      `json:"assetType"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Status      AssetStatus `json:"status"`
	Metadata    *string     `json:"metadata,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type CreateAssetInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AssetType   string  `json:"assetType"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      string  `json:"status,omitempty"`
	Metadata    *string `json:"metadata,omitempty"`
}

// UpdateAssetInput carries a partial update; nil fields are left untouched.
// Latitude and longitude must be supplied together to move the asset.
type UpdateAssetInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	AssetType   *string  `json:"assetType,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Metadata    *string  `json:"metadata,omitempty"`
}

type UpdateLocationInput struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
