package synccache

import (
	"reflect"
	"testing"
	"time"

	"github.com/geotrack/asset-tracker/internal/domain"
)

func makeAsset(id, name string, lat, lng float64) domain.Asset {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Asset{
		ID:          id,
		Name:        name,
		Description: "desc of " + name,
		AssetType:   "Vehicle",
		Latitude:    lat,
		Longitude:   lng,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestSeed_PreservesOrder(t *testing.T) {
	c := New()
	c.Seed([]domain.Asset{
		makeAsset("a-1", "One", 1, 1),
		makeAsset("a-2", "Two", 2, 2),
		makeAsset("a-3", "Three", 3, 3),
	})

	snap := c.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length: got %d, want 3", len(snap))
	}
	for i, want := range []string{"a-1", "a-2", "a-3"} {
		if snap[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, snap[i].ID, want)
		}
	}
}

func TestApply_CreatedAppends(t *testing.T) {
	c := New()
	c.Seed([]domain.Asset{makeAsset("a-1", "One", 1, 1)})

	created := makeAsset("a-2", "Two", 2, 2)
	c.Apply(domain.NewAssetCreated(&created))

	if c.Len() != 2 {
		t.Fatalf("length: got %d, want 2", c.Len())
	}
	snap := c.Snapshot()
	if snap[1].ID != "a-2" {
		t.Errorf("new asset should append at the end, got %q", snap[1].ID)
	}
}

func TestApply_CreatedDuplicateIgnored(t *testing.T) {
	seeded := makeAsset("a-1", "One", 1, 1)
	c := New()
	c.Seed([]domain.Asset{seeded})

	// Race case: the bulk fetch already included the asset.
	dup := makeAsset("a-1", "One Again", 9, 9)
	c.Apply(domain.NewAssetCreated(&dup))

	if c.Len() != 1 {
		t.Fatalf("length: got %d, want 1", c.Len())
	}
	got, _ := c.Get("a-1")
	if got.Name != "One" {
		t.Errorf("existing entry should win: got name %q", got.Name)
	}
}

func TestApply_UpdatedReplaces(t *testing.T) {
	c := New()
	c.Seed([]domain.Asset{makeAsset("a-1", "One", 1, 1)})

	updated := makeAsset("a-1", "Renamed", 5, 6)
	updated.Status = domain.StatusMaintenance
	c.Apply(domain.NewAssetUpdated(&updated))

	got, ok := c.Get("a-1")
	if !ok {
		t.Fatal("asset missing after update")
	}
	if got.Name != "Renamed" || got.Status != domain.StatusMaintenance {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestApply_UpdatedAbsentIsNoOp(t *testing.T) {
	c := New()

	ghost := makeAsset("a-404", "Ghost", 1, 1)
	c.Apply(domain.NewAssetUpdated(&ghost))

	if c.Len() != 0 {
		t.Errorf("stale update must not resurrect an entry, length %d", c.Len())
	}
}

func TestApply_UpdatedIsIdempotent(t *testing.T) {
	c := New()
	c.Seed([]domain.Asset{makeAsset("a-1", "One", 1, 1)})

	updated := makeAsset("a-1", "Renamed", 5, 6)
	c.Apply(domain.NewAssetUpdated(&updated))
	first := c.Snapshot()

	c.Apply(domain.NewAssetUpdated(&updated))
	second := c.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second apply changed state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestApply_LocationUpdatedPatchesCoordinatesOnly(t *testing.T) {
	c := New()
	c.Seed([]domain.Asset{makeAsset("a-1", "One", 37.77, -122.42)})

	// The payload carries a stale name; only coordinates and updatedAt
	// may move.
	moved := makeAsset("a-1", "Stale Name", 37.78, -122.40)
	moved.UpdatedAt = moved.UpdatedAt.Add(time.Minute)
	c.Apply(domain.NewAssetLocationUpdated(&moved))

	got, _ := c.Get("a-1")
	if got.Name != "One" {
		t.Errorf("name should be untouched, got %q", got.Name)
	}
	if got.Latitude != 37.78 || got.Longitude != -122.40 {
		t.Errorf("coordinates not patched: lat %v lng %v", got.Latitude, got.Longitude)
	}
	if !got.UpdatedAt.Equal(moved.UpdatedAt) {
		t.Errorf("updatedAt not patched: got %v", got.UpdatedAt)
	}
}

func TestApply_LocationUpdatedIsIdempotent(t *testing.T) {
	c := New()
	c.Seed([]domain.Asset{makeAsset("a-1", "One", 37.77, -122.42)})

	moved := makeAsset("a-1", "One", 37.78, -122.40)
	c.Apply(domain.NewAssetLocationUpdated(&moved))
	first := c.Snapshot()

	c.Apply(domain.NewAssetLocationUpdated(&moved))
	second := c.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second apply changed state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestApply_DeletedRemoves(t *testing.T) {
	c := New()
	c.Seed([]domain.Asset{
		makeAsset("a-1", "One", 1, 1),
		makeAsset("a-2", "Two", 2, 2),
	})

	c.Apply(domain.NewAssetDeleted("a-1"))

	if c.Len() != 1 {
		t.Fatalf("length: got %d, want 1", c.Len())
	}
	if _, ok := c.Get("a-1"); ok {
		t.Error("deleted asset still present")
	}
	if snap := c.Snapshot(); snap[0].ID != "a-2" {
		t.Errorf("order broken after delete: %q", snap[0].ID)
	}

	// Second delete is a no-op.
	c.Apply(domain.NewAssetDeleted("a-1"))
	if c.Len() != 1 {
		t.Errorf("repeat delete changed state, length %d", c.Len())
	}
}
