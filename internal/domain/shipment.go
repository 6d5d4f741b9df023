package domain

import "time"

// Lifecycle states reported by the transport system.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusPreparing ShipmentStatus = "preparing"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelayed   ShipmentStatus = "delayed"
	StatusRerouting ShipmentStatus = "rerouting"
	StatusOnHold    ShipmentStatus = "on_hold"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
)

// Terminal reports whether the shipment has finished its lifecycle.
func (s ShipmentStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusInTransit, StatusDelayed,
		StatusRerouting, StatusOnHold, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// One line of a shipment's manifest.
type ShipmentItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// A delivery in flight between two locations. Priority runs 1 to 10
// with 10 the most urgent.
type Shipment struct {
	ID               string
	Origin           string
	Destination      string
	Items            []ShipmentItem
	Status           ShipmentStatus
	Priority         int
	RouteID          string
	EstimatedArrival time.Time
	ActualArrival    time.Time
	UpdatedAt        time.Time
}

func (s *Shipment) Active() bool {
	return !s.Status.Terminal()
}

// Delay is how far past the estimated arrival the shipment is running.
// Zero when no estimate exists or the estimate is still in the future.
func (s *Shipment) Delay(now time.Time) time.Duration {
	if s.EstimatedArrival.IsZero() || !now.After(s.EstimatedArrival) {
		return 0
	}
	return now.Sub(s.EstimatedArrival)
}

func (s *Shipment) Delayed(now time.Time) bool {
	return s.Delay(now) > 0
}

func (s *Shipment) TotalQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}
