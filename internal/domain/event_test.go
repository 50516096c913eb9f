package domain

import (
	"errors"
	"testing"
)

func TestAssetEvent_TopicResolution(t *testing.T) {
	asset := &Asset{ID: "a-1"}

	cases := []struct {
		evt   AssetEvent
		topic string
	}{
		{NewAssetCreated(asset), TopicAssetCreated},
		{NewAssetUpdated(asset), TopicAssetUpdated},
		{NewAssetLocationUpdated(asset), TopicAssetLocationUpdated},
		{NewAssetDeleted("a-1"), TopicAssetDeleted},
	}

	for _, c := range cases {
		if got := c.evt.Topic(); got != c.topic {
			t.Errorf("%s: topic got %q, want %q", c.evt.Type, got, c.topic)
		}
		if c.evt.AssetID != "a-1" {
			t.Errorf("%s: AssetID got %q, want %q", c.evt.Type, c.evt.AssetID, "a-1")
		}
	}
}

func TestAssetEvent_DeletedCarriesOnlyID(t *testing.T) {
	evt := NewAssetDeleted("a-9")
	if evt.Asset != nil {
		t.Error("deleted event should not carry a snapshot")
	}
}

func TestLocationTopic_Format(t *testing.T) {
	if got := LocationTopic("abc-123"); got != "AssetLocationUpdated_abc-123" {
		t.Errorf("location topic: got %q", got)
	}
}

func TestParseAssetStatus(t *testing.T) {
	for _, valid := range []string{"ACTIVE", "INACTIVE", "MAINTENANCE", "RETIRED"} {
		if _, err := ParseAssetStatus(valid); err != nil {
			t.Errorf("ParseAssetStatus(%q): unexpected error %v", valid, err)
		}
	}

	_, err := ParseAssetStatus("BROKEN")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseGeoFenceType(t *testing.T) {
	for _, valid := range []string{"INCLUSION", "EXCLUSION"} {
		if _, err := ParseGeoFenceType(valid); err != nil {
			t.Errorf("ParseGeoFenceType(%q): unexpected error %v", valid, err)
		}
	}

	_, err := ParseGeoFenceType("CIRCLE")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
