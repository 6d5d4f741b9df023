package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/platform/obs"
)

// Postgres-backed implementation of the StateStore port.
type PostgresStore struct {
	DB  *sql.DB
	Log hclog.Logger
}

func NewPostgresStore(db *sql.DB, log hclog.Logger) *PostgresStore {
	return &PostgresStore{DB: db, Log: log.Named("store")}
}

// UpsertWarehouse writes warehouse metadata and replaces its item rows
// in one transaction.
func (s *PostgresStore) UpsertWarehouse(ctx context.Context, w *domain.Warehouse) (err error) {
	defer obs.Time(s.Log, "store.UpsertWarehouse")(&err)

	if s.DB == nil {
		return errors.New("postgres store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert warehouse: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	warehouseQuery := `
	INSERT INTO warehouses (warehouse_id, name, location, capacity)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (warehouse_id) DO UPDATE
	SET name = EXCLUDED.name,
		location = EXCLUDED.location,
		capacity = EXCLUDED.capacity;
	`
	if _, err := tx.ExecContext(ctx, warehouseQuery, w.ID, w.Name, w.Location, w.Capacity); err != nil {
		return fmt.Errorf("upsert warehouse %s: %w", w.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE warehouse_id = $1;`, w.ID); err != nil {
		return fmt.Errorf("upsert warehouse %s: clear items: %w", w.ID, err)
	}

	itemQuery := `
	INSERT INTO inventory_items (
		warehouse_id, item_id, name, category, quantity,
		unit, min_threshold, max_threshold, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	stmt, err := tx.PrepareContext(ctx, itemQuery)
	if err != nil {
		return fmt.Errorf("upsert warehouse %s: prepare item insert: %w", w.ID, err)
	}
	defer stmt.Close()

	for _, item := range w.Items {
		_, err := stmt.ExecContext(ctx,
			w.ID, item.ID, item.Name, item.Category, item.Quantity,
			item.Unit, item.MinThreshold, item.MaxThreshold, item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert warehouse %s: insert item %s: %w", w.ID, item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert warehouse %s: commit tx: %w", w.ID, err)
	}

	return nil
}

func (s *PostgresStore) UpsertShipment(ctx context.Context, sh *domain.Shipment) (err error) {
	defer obs.Time(s.Log, "store.UpsertShipment")(&err)

	if s.DB == nil {
		return errors.New("postgres store: DB is nil")
	}

	items, err := json.Marshal(sh.Items)
	if err != nil {
		return fmt.Errorf("upsert shipment %s: encode items: %w", sh.ID, err)
	}

	query := `
	INSERT INTO shipments (
		shipment_id, origin, destination, items, status,
		priority, route_id, estimated_arrival, actual_arrival, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (shipment_id) DO UPDATE
	SET origin = EXCLUDED.origin,
		destination = EXCLUDED.destination,
		items = EXCLUDED.items,
		status = EXCLUDED.status,
		priority = EXCLUDED.priority,
		route_id = EXCLUDED.route_id,
		estimated_arrival = EXCLUDED.estimated_arrival,
		actual_arrival = EXCLUDED.actual_arrival,
		updated_at = EXCLUDED.updated_at;
	`
	_, err = s.DB.ExecContext(ctx, query,
		sh.ID, sh.Origin, sh.Destination, items, string(sh.Status),
		sh.Priority, sh.RouteID, nullTime(sh.EstimatedArrival), nullTime(sh.ActualArrival), sh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert shipment %s: %w", sh.ID, err)
	}

	return nil
}

func (s *PostgresStore) UpsertRouteConditions(ctx context.Context, rc *domain.RouteConditions) (err error) {
	defer obs.Time(s.Log, "store.UpsertRouteConditions")(&err)

	if s.DB == nil {
		return errors.New("postgres store: DB is nil")
	}

	conditions, err := json.Marshal(struct {
		Weather domain.WeatherConditions `json:"weather"`
		Road    domain.RoadConditions    `json:"road"`
	}{rc.Weather, rc.Road})
	if err != nil {
		return fmt.Errorf("upsert route conditions %s: encode: %w", rc.RouteID, err)
	}

	query := `
	INSERT INTO route_conditions (route_id, disrupted, reason, conditions, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (route_id) DO UPDATE
	SET disrupted = EXCLUDED.disrupted,
		reason = EXCLUDED.reason,
		conditions = EXCLUDED.conditions,
		updated_at = EXCLUDED.updated_at;
	`
	_, err = s.DB.ExecContext(ctx, query,
		rc.RouteID, rc.Disrupted, rc.Reason, conditions, rc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert route conditions %s: %w", rc.RouteID, err)
	}

	return nil
}

// RecordDecision appends one row to the decision audit log.
func (s *PostgresStore) RecordDecision(ctx context.Context, rec domain.DecisionRecord) (err error) {
	defer obs.Time(s.Log, "store.RecordDecision")(&err)

	if s.DB == nil {
		return errors.New("postgres store: DB is nil")
	}

	details := rec.Details
	if details == nil {
		details = map[string]any{}
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("record decision %s: encode details: %w", rec.ID, err)
	}

	query := `
	INSERT INTO decisions (decision_id, kind, subject, reason, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (decision_id) DO NOTHING;
	`
	_, err = s.DB.ExecContext(ctx, query,
		rec.ID, rec.Kind, rec.Subject, rec.Reason, encoded, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record decision %s: %w", rec.ID, err)
	}

	return nil
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
