package ports

import (
	"context"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// Port: durable state and the decision audit log.
type StateStore interface {
	UpsertWarehouse(ctx context.Context, w *domain.Warehouse) error
	UpsertShipment(ctx context.Context, s *domain.Shipment) error
	UpsertRouteConditions(ctx context.Context, rc *domain.RouteConditions) error
	RecordDecision(ctx context.Context, rec domain.DecisionRecord) error
}

// Port: cached warehouse-pair distances.
// Get reports found=false on a miss; errors are reserved for the backend.
type DistanceCache interface {
	Get(ctx context.Context, origin, destination string) (DistanceResult, bool, error)
	Put(ctx context.Context, origin, destination string, d DistanceResult) error
}
