package domain

// EventType tags the closed set of asset domain events.
type EventType string

const (
	EventAssetCreated         EventType = "ASSET_CREATED"
	EventAssetUpdated         EventType = "ASSET_UPDATED"
	EventAssetLocationUpdated EventType = "ASSET_LOCATION_UPDATED"
	EventAssetDeleted         EventType = "ASSET_DELETED"
)

// Topic names for the fan-out bus. One topic per event kind, plus a
// per-asset sub-topic for location updates (see LocationTopic).
const (
	TopicAssetCreated         = "AssetCreated"
	TopicAssetUpdated         = "AssetUpdated"
	TopicAssetLocationUpdated = "AssetLocationUpdated"
	TopicAssetDeleted         = "AssetDeleted"
)

// AssetEvent describes a confirmed change to a single asset. Created,
// Updated and LocationUpdated carry the full snapshot; Deleted carries
// only the identifier. Events are ephemeral: never persisted, never
// replayed to late subscribers.
type AssetEvent struct {
	Type    EventType `json:"type"`
	AssetID string    `json:"assetId"`
	Asset   *Asset    `json:"asset,omitempty"`
}

func NewAssetCreated(a *Asset) AssetEvent {
	return AssetEvent{Type: EventAssetCreated, AssetID: a.ID, Asset: a}
}

func NewAssetUpdated(a *Asset) AssetEvent {
	return AssetEvent{Type: EventAssetUpdated, AssetID: a.ID, Asset: a}
}

func NewAssetLocationUpdated(a *Asset) AssetEvent {
	return AssetEvent{Type: EventAssetLocationUpdated, AssetID: a.ID, Asset: a}
}

func NewAssetDeleted(id string) AssetEvent {
	return AssetEvent{Type: EventAssetDeleted, AssetID: id}
}

// Topic resolves the bus topic for an event kind.
func (e AssetEvent) Topic() string {
	switch e.Type {
	case EventAssetCreated:
		return TopicAssetCreated
	case EventAssetUpdated:
		return TopicAssetUpdated
	case EventAssetLocationUpdated:
		return TopicAssetLocationUpdated
	case EventAssetDeleted:
		return TopicAssetDeleted
	}
	return ""
}

// LocationTopic is the per-asset sub-topic for location updates, letting a
// client follow a single asset's movement without the firehose.
func LocationTopic(assetID string) string {
	return TopicAssetLocationUpdated + "_" + assetID
}
