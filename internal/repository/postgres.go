package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS zone_lookups (
		lookup_id     BIGSERIAL PRIMARY KEY,
		query         TEXT NOT NULL,
		source        TEXT NOT NULL,
		center_lon    DOUBLE PRECISION NOT NULL,
		center_zone   INTEGER NOT NULL,
		covered_zones INTEGER[] NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS geocoding_failures (
		query      TEXT PRIMARY KEY,
		attempts   INTEGER NOT NULL DEFAULT 1,
		last_error TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// Migrate creates the tables used by the repository if they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

// RecordLookup stores a resolved query and returns its ID. CreatedAt is set by the database.
func (r *Repository) RecordLookup(ctx context.Context, lookup models.Lookup) (int64, error) {
	query := `
		INSERT INTO zone_lookups (query, source, center_lon, center_zone, covered_zones)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING lookup_id;
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		lookup.Query, lookup.Source, lookup.CenterLon, lookup.CenterZone, toInt32(lookup.Covered),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lookup: %w", err)
	}

	r.log.DebugContext(ctx, "Lookup recorded", "id", id, "query", lookup.Query, "zone", lookup.CenterZone)

	return id, nil
}

// RecentLookups returns up to limit lookups, newest first.
func (r *Repository) RecentLookups(ctx context.Context, limit int) ([]models.Lookup, error) {
	query := `
		SELECT lookup_id, query, source, center_lon, center_zone, covered_zones, created_at
		FROM zone_lookups
		ORDER BY created_at DESC, lookup_id DESC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent lookups: %w", err)
	}
	defer rows.Close()

	var lookups []models.Lookup
	for rows.Next() {
		var (
			lookup  models.Lookup
			covered []int32
		)
		if errScan := rows.Scan(
			&lookup.ID, &lookup.Query, &lookup.Source, &lookup.CenterLon,
			&lookup.CenterZone, &covered, &lookup.CreatedAt,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", errScan)
		}
		lookup.Covered = fromInt32(covered)
		lookups = append(lookups, lookup)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return lookups, nil
}

// RecordFailure counts a failed geocoding attempt for query and keeps the latest error message.
func (r *Repository) RecordFailure(ctx context.Context, query string, errMsg string) error {
	stmt := `
		INSERT INTO geocoding_failures (query, last_error)
		VALUES ($1, $2)
		ON CONFLICT (query) DO UPDATE
		SET
			attempts = geocoding_failures.attempts + 1,
			last_error = EXCLUDED.last_error,
			updated_at = now();
	`

	_, err := r.db.Exec(ctx, stmt, query, errMsg)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}

func toInt32(values []int) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v) //nolint:gosec
	}

	return out
}

func fromInt32(values []int32) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}

	return out
}
