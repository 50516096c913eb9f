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

const geoFenceColumns = `id, name, description, ST_AsEWKB(boundary), type, is_active, created_at`

func scanGeoFence(row pgx.Row) (*domain.GeoFence, error) {
	var g domain.GeoFence
	var boundary []byte
	err := row.Scan(&g.ID, &g.Name, &g.Description, &boundary, &g.Type, &g.IsActive, &g.CreatedAt)
	if err != nil {
		return nil, err
	}

	geometry, err := ewkb.Unmarshal(boundary)
	if err != nil {
		return nil, fmt.Errorf("decoding boundary: %w", err)
	}
	polygon, ok := geometry.(*geom.Polygon)
	if !ok {
		return nil, fmt.Errorf("boundary is %T, expected polygon", geometry)
	}
	g.Boundary = domain.RingCoordinates(polygon)

	return &g, nil
}

func (s *PostgresStore) queryGeoFences(ctx context.Context, sql string, args ...any) ([]domain.GeoFence, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying geofences: %w", err)
	}
	defer rows.Close()

	var fences []domain.GeoFence
	for rows.Next() {
		g, err := scanGeoFence(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning geofence: %w", err)
		}
		fences = append(fences, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading geofences: %w", err)
	}

	if fences == nil {
		fences = []domain.GeoFence{}
	}
	return fences, nil
}

func (s *PostgresStore) CreateGeoFence(ctx context.Context, id string, name string, description *string, boundary *geom.Polygon, fenceType domain.GeoFenceType) (*domain.GeoFence, error) {
	data, err := ewkb.Marshal(boundary, ewkb.NDR)
	if err != nil {
		return nil, fmt.Errorf("encoding boundary: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO geo_fences (id, name, description, boundary, type)
		VALUES ($1, $2, $3, ST_GeomFromEWKB($4), $5)
		RETURNING `+geoFenceColumns,
		id, name, description, data, fenceType,
	)
	g, err := scanGeoFence(row)
	if err != nil {
		return nil, fmt.Errorf("inserting geofence: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) GetGeoFence(ctx context.Context, id string) (*domain.GeoFence, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+geoFenceColumns+` FROM geo_fences WHERE id = $1`, id)
	g, err := scanGeoFence(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying geofence: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) ListGeoFences(ctx context.Context, activeOnly bool) ([]domain.GeoFence, error) {
	if activeOnly {
		return s.queryGeoFences(ctx,
			`SELECT `+geoFenceColumns+` FROM geo_fences WHERE is_active ORDER BY name`)
	}
	return s.queryGeoFences(ctx,
		`SELECT `+geoFenceColumns+` FROM geo_fences ORDER BY created_at, id`)
}

// UpdateGeoFence applies a partial update. A new boundary is passed already
// validated and ring-closed; nil leaves the stored boundary alone.
// Returns nil, nil when the id does not resolve.
func (s *PostgresStore) UpdateGeoFence(ctx context.Context, id string, in domain.UpdateGeoFenceInput, boundary *geom.Polygon) (*domain.GeoFence, error) {
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
	if boundary != nil {
		data, err := ewkb.Marshal(boundary, ewkb.NDR)
		if err != nil {
			return nil, fmt.Errorf("encoding boundary: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("boundary = ST_GeomFromEWKB($%d)", argIdx))
		args = append(args, data)
		argIdx++
	}
	if in.Type != nil {
		addSet("type", *in.Type)
	}
	if in.IsActive != nil {
		addSet("is_active", *in.IsActive)
	}

	if len(setClauses) == 0 {
		return s.GetGeoFence(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE geo_fences SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, geoFenceColumns)
	args = append(args, id)

	g, err := scanGeoFence(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("updating geofence: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) DeleteGeoFence(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM geo_fences WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting geofence: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ToggleGeoFenceActive flips the active flag. Returns nil, nil when the id
// does not resolve.
func (s *PostgresStore) ToggleGeoFenceActive(ctx context.Context, id string) (*domain.GeoFence, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE geo_fences SET is_active = NOT is_active
		WHERE id = $1
		RETURNING `+geoFenceColumns,
		id,
	)
	g, err := scanGeoFence(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("toggling geofence: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) CountGeoFences(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM geo_fences`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting geofences: %w", err)
	}
	return n, nil
}
