package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// Reference data for one warehouse as reported by the inventory system.
type WarehouseInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

// A transfer the agent asks the inventory system to carry out.
type TransferRequest struct {
	SourceID    string
	Destination string
	Items       []domain.ShipmentItem
	RequestedBy string
	Reason      string
}

// Port: the inventory management system.
// FetchInventory returns the raw poll document; upstream deployments emit
// more than one JSON shape, so decoding is left to the processing layer.
type InventorySource interface {
	FetchInventory(ctx context.Context) (json.RawMessage, error)
	WarehouseInfo(ctx context.Context, warehouseID string) (WarehouseInfo, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (string, error)
}

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceKM      float64
	DurationSeconds int
}

// A revised delivery slot pushed back to the transport system.
type ScheduleUpdate struct {
	EstimatedArrival time.Time
	WindowStart      time.Time
	WindowEnd        time.Time
}

// Port: the transportation tracking system.
type TransportSource interface {
	FetchActiveShipments(ctx context.Context) (json.RawMessage, error)
	RoadConditions(ctx context.Context, routeID string) (domain.RoadConditions, error)
	AlternativeRoutes(ctx context.Context, origin, destination string) ([]domain.RouteOption, error)
	UpdateRoute(ctx context.Context, shipmentID, routeID string) error
	UpdateSchedule(ctx context.Context, shipmentID string, s ScheduleUpdate) error
	EstimateDistance(ctx context.Context, origin, destination string) (DistanceResult, error)
}

// Port: the weather data service.
type WeatherSource interface {
	RouteConditions(ctx context.Context, routeID string) (domain.WeatherConditions, error)
}
