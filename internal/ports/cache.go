package ports

import (
	"context"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// Port: short-lived snapshots of normalized state, used to warm a
// restarted agent without waiting a full poll interval.
type StateCache interface {
	StoreWarehouse(ctx context.Context, w *domain.Warehouse) error
	StoreShipment(ctx context.Context, s *domain.Shipment) error
	StoreRouteConditions(ctx context.Context, rc *domain.RouteConditions) error
	LoadWarehouses(ctx context.Context) ([]*domain.Warehouse, error)
	LoadShipments(ctx context.Context) ([]*domain.Shipment, error)
}
