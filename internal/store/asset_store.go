package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/geotrack/asset-tracker/internal/domain"
)

// assetColumns is the canonical select list. The point geometry is unpacked
// into longitude/latitude on the way out.
const assetColumns = `id, name, description, asset_type,
	ST_X(location) AS longitude, ST_Y(location) AS latitude,
	status, metadata, created_at, updated_at`

// makePoint builds a WGS84 point from placeholders $n (longitude) and
// $n+1 (latitude).
func makePoint(lngIdx, latIdx int) string {
	return fmt.Sprintf("ST_SetSRID(ST_MakePoint($%d, $%d), 4326)", lngIdx, latIdx)
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var a domain.Asset
	err := row.Scan(
		&a.ID, &a.Name, &a.Description, &a.AssetType,
		&a.Longitude, &a.Latitude,
		&a.Status, &a.Metadata, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) queryAssets(ctx context.Context, sql string, args ...any) ([]domain.Asset, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading assets: %w", err)
	}

	if assets == nil {
		assets = []domain.Asset{}
	}
	return assets, nil
}

// CreateAsset inserts a new asset. Both timestamps are assigned by the
// database in the same statement, so created_at == updated_at on insert.
func (s *PostgresStore) CreateAsset(ctx context.Context, id string, in domain.CreateAssetInput, status domain.AssetStatus) (*domain.Asset, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO assets (id, name, description, asset_type, location, status, metadata)
		VALUES ($1, $2, $3, $4, `+makePoint(5, 6)+`, $7, $8)
		RETURNING `+assetColumns,
		id, in.Name, in.Description, in.AssetType, in.Longitude, in.Latitude, status, in.Metadata,
	)
	a, err := scanAsset(row)
	if err != nil {
		return nil, fmt.Errorf("inserting asset: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying asset: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return s.queryAssets(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY created_at, id`)
}

// UpdateAsset applies a partial update and bumps updated_at. Coordinates
// move the asset only when latitude and longitude are both present.
// Returns nil, nil when the id does not resolve.
func (s *PostgresStore) UpdateAsset(ctx context.Context, id string, in domain.UpdateAssetInput) (*domain.Asset, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if in.Name != nil {
		addSet("name", *in.Name)
	}
	if in.Description != nil {
		addSet("description", *in.Description)
	}
	if in.AssetType != nil {
		addSet("asset_type", *in.AssetType)
	}
	if in.Latitude != nil && in.Longitude != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = %s", makePoint(argIdx, argIdx+1)))
		args = append(args, *in.Longitude, *in.Latitude)
		argIdx += 2
	}
	if in.Status != nil {
		addSet("status", *in.Status)
	}
	if in.Metadata != nil {
		addSet("metadata", *in.Metadata)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE assets SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, assetColumns)
	args = append(args, id)

	a, err := scanAsset(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("updating asset: %w", err)
	}
	return a, nil
}

// UpdateAssetLocation is the narrow high-frequency path: moves the point
// and bumps updated_at. Returns nil, nil when the id does not resolve.
func (s *PostgresStore) UpdateAssetLocation(ctx context.Context, id string, lat, lng float64) (*domain.Asset, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE assets
		SET location = `+makePoint(2, 3)+`, updated_at = NOW()
		WHERE id = $1
		RETURNING `+assetColumns,
		id, lng, lat,
	)
	a, err := scanAsset(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("updating asset location: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) UpdateAssetStatus(ctx context.Context, id string, status domain.AssetStatus) (*domain.Asset, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE assets SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+assetColumns,
		id, status,
	)
	a, err := scanAsset(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("updating asset status: %w", err)
	}
	return a, nil
}

// DeleteAsset removes an asset and reports whether a row was removed.
// Deleting an absent id is not an error.
func (s *PostgresStore) DeleteAsset(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting asset: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// BulkUpdateLocations applies all location updates in a single transaction.
// Unknown identifiers are skipped. The returned slice holds the updated
// assets in input order.
func (s *PostgresStore) BulkUpdateLocations(ctx context.Context, inputs []domain.UpdateLocationInput) ([]domain.Asset, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updated := make([]domain.Asset, 0, len(inputs))
	for _, in := range inputs {
		row := tx.QueryRow(ctx, `
			UPDATE assets
			SET location = `+makePoint(2, 3)+`, updated_at = NOW()
			WHERE id = $1
			RETURNING `+assetColumns,
			in.ID, in.Longitude, in.Latitude,
		)
		a, err := scanAsset(row)
		if err != nil {
			if err == pgx.ErrNoRows {
				continue
			}
			return nil, fmt.Errorf("bulk updating asset %s: %w", in.ID, err)
		}
		updated = append(updated, *a)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing bulk update: %w", err)
	}
	return updated, nil
}

// ListAssetsNearby returns assets within meters of the point, ordered by
// ascending geodesic distance. The geography cast makes ST_DWithin and
// ST_Distance measure in meters on the spheroid.
func (s *PostgresStore) ListAssetsNearby(ctx context.Context, lat, lng, meters float64) ([]domain.Asset, error) {
	return s.queryAssets(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE ST_DWithin(location::geography, `+makePoint(1, 2)+`::geography, $3)
		ORDER BY ST_Distance(location::geography, `+makePoint(1, 2)+`::geography)`,
		lng, lat, meters,
	)
}

// ListAssetsWithinGeoFence returns assets inside the fence boundary. A
// missing fence yields an empty result, not an error.
func (s *PostgresStore) ListAssetsWithinGeoFence(ctx context.Context, geoFenceID string) ([]domain.Asset, error) {
	return s.queryAssets(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE ST_Within(location, (SELECT boundary FROM geo_fences WHERE id = $1))`,
		geoFenceID,
	)
}

// ListAssetsWithinPolygon returns assets inside an arbitrary polygon,
// shipped to PostGIS as EWKB.
func (s *PostgresStore) ListAssetsWithinPolygon(ctx context.Context, polygon *geom.Polygon) ([]domain.Asset, error) {
	data, err := ewkb.Marshal(polygon, ewkb.NDR)
	if err != nil {
		return nil, fmt.Errorf("encoding polygon: %w", err)
	}
	return s.queryAssets(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE ST_Within(location, ST_GeomFromEWKB($1))`,
		data,
	)
}

func (s *PostgresStore) ListAssetsByStatus(ctx context.Context, status domain.AssetStatus) ([]domain.Asset, error) {
	return s.queryAssets(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE status = $1 ORDER BY name`, status)
}

func (s *PostgresStore) ListAssetsByType(ctx context.Context, assetType string) ([]domain.Asset, error) {
	return s.queryAssets(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE asset_type = $1 ORDER BY name`, assetType)
}

// SearchAssets matches the term case-insensitively against name and
// description.
func (s *PostgresStore) SearchAssets(ctx context.Context, term string) ([]domain.Asset, error) {
	return s.queryAssets(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY name`,
		term,
	)
}

func (s *PostgresStore) ListAssetTypes(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT asset_type FROM assets ORDER BY asset_type`)
	if err != nil {
		return nil, fmt.Errorf("querying asset types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning asset type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading asset types: %w", err)
	}

	if types == nil {
		types = []string{}
	}
	return types, nil
}

// CountAssetsByStatus returns asset counts keyed by status for the stats
// endpoint.
func (s *PostgresStore) CountAssetsByStatus(ctx context.Context) (map[domain.AssetStatus]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM assets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting assets: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.AssetStatus]int)
	for rows.Next() {
		var status domain.AssetStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning asset count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading asset counts: %w", err)
	}
	return counts, nil
}
