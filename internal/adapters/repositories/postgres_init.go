package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the postgres schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createWarehousesQuery := `
	CREATE TABLE IF NOT EXISTS warehouses (
		warehouse_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		capacity INTEGER NOT NULL
	);
	`

	createInventoryItemsQuery := `
	CREATE TABLE IF NOT EXISTS inventory_items (
		warehouse_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit TEXT NOT NULL,
		min_threshold INTEGER NOT NULL,
		max_threshold INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (warehouse_id, item_id)
	);
	`

	createShipmentsQuery := `
	CREATE TABLE IF NOT EXISTS shipments (
		shipment_id TEXT PRIMARY KEY,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		items JSONB NOT NULL,
		status TEXT NOT NULL,
		priority INTEGER NOT NULL,
		route_id TEXT NOT NULL,
		estimated_arrival TIMESTAMPTZ,
		actual_arrival TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	createRouteConditionsQuery := `
	CREATE TABLE IF NOT EXISTS route_conditions (
		route_id TEXT PRIMARY KEY,
		disrupted BOOLEAN NOT NULL,
		reason TEXT NOT NULL,
		conditions JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	createDecisionsQuery := `
	CREATE TABLE IF NOT EXISTS decisions (
		decision_id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		subject TEXT NOT NULL,
		reason TEXT NOT NULL,
		details JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_shipments_status
	ON shipments(status);
	`

	statements := []string{
		createWarehousesQuery,
		createInventoryItemsQuery,
		createShipmentsQuery,
		createRouteConditionsQuery,
		createDecisionsQuery,
		createDistanceCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type WarehouseSeed struct {
	WarehouseID string `json:"warehouse_id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
}

// Populate the warehouses table from a JSON reference file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed warehouses: read %q: %w", jsonPath, err)
	}

	var data []WarehouseSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed warehouses: parse json: %w", err)
	}

	rows := make([]WarehouseSeed, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.WarehouseID)
		if id == "" {
			return fmt.Errorf("seed warehouses: item at index %d: warehouse_id cannot be empty", i+1)
		}
		if item.Capacity < 0 {
			return fmt.Errorf("seed warehouses: warehouse %q: negative capacity %d", id, item.Capacity)
		}
		item.WarehouseID = id
		rows = append(rows, item)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed warehouses: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO warehouses (warehouse_id, name, location, capacity)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (warehouse_id) DO UPDATE
	SET name = EXCLUDED.name,
		location = EXCLUDED.location,
		capacity = EXCLUDED.capacity;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed warehouses: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range rows {
		if _, err := stmt.Exec(w.WarehouseID, w.Name, w.Location, w.Capacity); err != nil {
			return fmt.Errorf("seed warehouses: insert warehouse_id=%s: %w", w.WarehouseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed warehouses: commit tx: %w", err)
	}

	return nil
}
