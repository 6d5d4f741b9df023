package domain

import "time"

// Severity grades for alerts and notifications.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Reason codes attached to decisions.
const (
	ReasonRouteDisruption  = "route_disruption"
	ReasonSignificantDelay = "significant_delay"
	ReasonBelowThreshold   = "inventory_below_threshold"
	ReasonLowStock         = "warehouse_stock_low"
	ReasonBalancing        = "inventory_balancing"
	ReasonReceivingSpread  = "optimize_receiving_operations"
)

// An inventory condition that crossed an alert threshold.
type InventoryAlert struct {
	WarehouseID   string
	WarehouseName string
	// Empty for warehouse-level stock alerts.
	ItemID        string
	ItemName      string
	Quantity      int
	Threshold     int
	Unit          string
	StockFraction float64
	Reason        string
	Severity      Severity
}

// A shipment running behind its estimated arrival.
type ShipmentIssue struct {
	ShipmentID  string
	Origin      string
	Destination string
	RouteID     string
	Status      ShipmentStatus
	Delay       time.Duration
	Priority    int
	Severity    Severity
}

// Decision to move a shipment onto a different route.
type RerouteDecision struct {
	ID         string
	ShipmentID string
	OldRouteID string
	NewRouteID string
	NewETA     time.Time
	Reason     string
}

// Decision to move stock between warehouses.
type TransferDecision struct {
	ID          string
	SourceID    string
	Destination string
	Items       []ShipmentItem
	Reason      string
	Priority    int
}

// Revised delivery slot for one shipment.
type ScheduleChange struct {
	ShipmentID       string
	EstimatedArrival time.Time
	WindowStart      time.Time
	WindowEnd        time.Time
}

// Decision to stagger several same-day deliveries to one destination.
type ScheduleAdjustment struct {
	ID          string
	Destination string
	Changes     []ScheduleChange
	Reason      string
}

// Decision to move a group of in-transit shipments onto faster routes.
type RouteOptimization struct {
	ID        string
	Region    string
	NewRoutes map[string]string
	NewETAs   map[string]time.Time
}

// DecisionRecord is the audit form of any decision the engine produced.
type DecisionRecord struct {
	ID        string
	Kind      string
	Subject   string
	Reason    string
	Details   map[string]any
	CreatedAt time.Time
}
