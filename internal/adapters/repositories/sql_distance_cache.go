package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
)

// SQLDistanceCache is a postgres-backed cache of warehouse-pair distances
// so the transport API is asked about each pair at most once.
type SQLDistanceCache struct {
	DB *sql.DB
}

func NewSQLDistanceCache(db *sql.DB) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db}
}

func (s *SQLDistanceCache) Get(ctx context.Context, origin, destination string) (ports.DistanceResult, bool, error) {
	if s.DB == nil {
		return ports.DistanceResult{}, false, errors.New("distance cache: DB is nil")
	}
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return ports.DistanceResult{}, false, errors.New("get distance cache: origin and destination must not be empty")
	}

	q := `
	SELECT distance_km, duration_seconds
	FROM distance_cache
	WHERE origin = $1 AND destination = $2;
	`

	var km float64
	var seconds int
	err := s.DB.QueryRowContext(ctx, q, origin, destination).Scan(&km, &seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("get distance cache: query: %w", err)
	}

	return ports.DistanceResult{DistanceKM: km, DurationSeconds: seconds}, true, nil
}

func (s *SQLDistanceCache) Put(ctx context.Context, origin, destination string, d ports.DistanceResult) error {
	if s.DB == nil {
		return errors.New("distance cache: DB is nil")
	}
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return errors.New("insert distance cache: origin and destination must not be empty")
	}

	q := `
	INSERT INTO distance_cache (origin, destination, distance_km, duration_seconds)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		duration_seconds = EXCLUDED.duration_seconds;
	`
	if _, err := s.DB.ExecContext(ctx, q, origin, destination, d.DistanceKM, d.DurationSeconds); err != nil {
		return fmt.Errorf("insert distance cache %s -> %s: %w", origin, destination, err)
	}

	return nil
}
