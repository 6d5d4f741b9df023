package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
)

// In-memory sources used by tests and local runs without live APIs.

type MockInventorySource struct {
	Payload    json.RawMessage
	Warehouses map[string]ports.WarehouseInfo

	mu        sync.Mutex
	Transfers []ports.TransferRequest
}

func (m *MockInventorySource) FetchInventory(ctx context.Context) (json.RawMessage, error) {
	if m.Payload == nil {
		return json.RawMessage(`{}`), nil
	}
	return m.Payload, nil
}

func (m *MockInventorySource) WarehouseInfo(ctx context.Context, warehouseID string) (ports.WarehouseInfo, error) {
	info, ok := m.Warehouses[warehouseID]
	if !ok {
		return ports.WarehouseInfo{}, fmt.Errorf("unknown warehouse %q", warehouseID)
	}
	return info, nil
}

func (m *MockInventorySource) CreateTransfer(ctx context.Context, req ports.TransferRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transfers = append(m.Transfers, req)
	return fmt.Sprintf("transfer_%d", len(m.Transfers)), nil
}

type MockTransportSource struct {
	Payload      json.RawMessage
	Roads        map[string]domain.RoadConditions
	Alternatives map[string][]domain.RouteOption
	Distances    map[string]ports.DistanceResult

	mu              sync.Mutex
	RouteUpdates    map[string]string
	ScheduleUpdates map[string]ports.ScheduleUpdate
}

func (m *MockTransportSource) FetchActiveShipments(ctx context.Context) (json.RawMessage, error) {
	if m.Payload == nil {
		return json.RawMessage(`{"shipments":[]}`), nil
	}
	return m.Payload, nil
}

func (m *MockTransportSource) RoadConditions(ctx context.Context, routeID string) (domain.RoadConditions, error) {
	return m.Roads[routeID], nil
}

func (m *MockTransportSource) AlternativeRoutes(ctx context.Context, origin, destination string) ([]domain.RouteOption, error) {
	return m.Alternatives[origin+"|"+destination], nil
}

func (m *MockTransportSource) UpdateRoute(ctx context.Context, shipmentID, routeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RouteUpdates == nil {
		m.RouteUpdates = map[string]string{}
	}
	m.RouteUpdates[shipmentID] = routeID
	return nil
}

func (m *MockTransportSource) UpdateSchedule(ctx context.Context, shipmentID string, s ports.ScheduleUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScheduleUpdates == nil {
		m.ScheduleUpdates = map[string]ports.ScheduleUpdate{}
	}
	m.ScheduleUpdates[shipmentID] = s
	return nil
}

func (m *MockTransportSource) EstimateDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	r, ok := m.Distances[origin+"|"+destination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing distance %q -> %q", origin, destination)
	}
	return r, nil
}

type MockWeatherSource struct {
	Conditions map[string]domain.WeatherConditions
}

func (m *MockWeatherSource) RouteConditions(ctx context.Context, routeID string) (domain.WeatherConditions, error) {
	c, ok := m.Conditions[routeID]
	if !ok {
		// Clear skies by default so tests only describe the interesting routes.
		return domain.WeatherConditions{VisibilityMeters: 10000}, nil
	}
	return c, nil
}
