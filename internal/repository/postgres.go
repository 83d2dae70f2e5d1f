package repository

import (
	"context"
	"fmt"
	"sort"
)

// EnsureSchema creates the elevation_points table if it does not exist yet.
func (s *ElevationStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS elevation_points (
			point_key  TEXT PRIMARY KEY,
			elevation  DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create elevation_points table: %w", err)
	}

	return nil
}

// Lookup returns the stored elevation for every key that is present.
// Missing keys are simply absent from the returned map.
func (s *ElevationStore) Lookup(ctx context.Context, keys []string) (map[string]float64, error) {
	found := make(map[string]float64, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	query := `
		SELECT point_key, elevation
		FROM elevation_points
		WHERE point_key = ANY($1);
	`

	rows, err := s.db.Query(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query elevation points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key  string
			elev float64
		)
		if errScan := rows.Scan(&key, &elev); errScan != nil {
			return nil, fmt.Errorf("failed to scan elevation point: %w", errScan)
		}
		found[key] = elev
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	s.log.DebugContext(ctx, "Elevation points loaded from database", "requested", len(keys), "found", len(found))

	return found, nil
}

// Store inserts the given elevations in one statement. Existing keys are left untouched,
// since a key always resolves to the same elevation.
func (s *ElevationStore) Store(ctx context.Context, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	// Stable order keeps concurrent inserts from deadlocking on the primary key.
	sort.Strings(keys)

	elevations := make([]float64, len(keys))
	for i, key := range keys {
		elevations[i] = values[key]
	}

	query := `
		INSERT INTO elevation_points (point_key, elevation)
		SELECT * FROM unnest($1::text[], $2::double precision[])
		ON CONFLICT (point_key) DO NOTHING;
	`

	if _, err := s.db.Exec(ctx, query, keys, elevations); err != nil {
		return fmt.Errorf("failed to insert elevation points: %w", err)
	}

	return nil
}
