package domain

import (
	"math"
	"testing"
	"time"
)

func TestShipmentDelay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		eta  time.Time
		want time.Duration
	}{
		{"no estimate", time.Time{}, 0},
		{"estimate in the future", now.Add(2 * time.Hour), 0},
		{"estimate is now", now, 0},
		{"one hour late", now.Add(-time.Hour), time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Shipment{ID: "shp_1", EstimatedArrival: tt.eta}
			if got := s.Delay(now); got != tt.want {
				t.Fatalf("Delay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShipmentStatusTerminal(t *testing.T) {
	for _, status := range []ShipmentStatus{StatusDelivered, StatusCancelled} {
		if !status.Terminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
	for _, status := range []ShipmentStatus{StatusPending, StatusInTransit, StatusDelayed, StatusRerouting, StatusOnHold} {
		if status.Terminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
}

func TestItemBelowThreshold(t *testing.T) {
	item := &InventoryItem{Quantity: 50, MinThreshold: 50}
	if item.BelowThreshold() {
		t.Fatal("stock exactly at the minimum threshold must be healthy")
	}

	item.Quantity = 49
	if !item.BelowThreshold() {
		t.Fatal("stock below the minimum threshold must be flagged")
	}
}

func TestShipmentDelayed(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := &Shipment{ID: "shp_1", EstimatedArrival: now.Add(-time.Minute)}
	if !s.Delayed(now) {
		t.Fatal("a shipment past its estimate is delayed")
	}
	s.EstimatedArrival = now.Add(time.Minute)
	if s.Delayed(now) {
		t.Fatal("a shipment ahead of its estimate is not delayed")
	}
}

func TestShipmentTotalQuantity(t *testing.T) {
	s := &Shipment{Items: []ShipmentItem{{Quantity: 3}, {Quantity: 7}}}
	if got := s.TotalQuantity(); got != 10 {
		t.Fatalf("TotalQuantity() = %d, want 10", got)
	}
}

func TestItemAboveThreshold(t *testing.T) {
	item := &InventoryItem{Quantity: 120, MaxThreshold: 100}
	if !item.AboveThreshold() {
		t.Fatal("stock over the maximum must be flagged")
	}
	item.MaxThreshold = 0
	if item.AboveThreshold() {
		t.Fatal("no maximum means never over it")
	}
}

func TestWarehouseItemsBelowThreshold(t *testing.T) {
	w := &Warehouse{Items: map[string]*InventoryItem{
		"low": {ID: "low", Quantity: 5, MinThreshold: 10},
		"ok":  {ID: "ok", Quantity: 50, MinThreshold: 10},
	}}
	got := w.ItemsBelowThreshold()
	if len(got) != 1 || got[0].ID != "low" {
		t.Fatalf("ItemsBelowThreshold() = %+v", got)
	}
}

func TestItemExcess(t *testing.T) {
	item := &InventoryItem{Quantity: 80, MinThreshold: 50}
	if got := item.Excess(); got != 30 {
		t.Fatalf("Excess() = %d, want 30", got)
	}

	item.Quantity = 40
	if got := item.Excess(); got != 0 {
		t.Fatalf("Excess() below minimum = %d, want 0", got)
	}
}

func TestItemThresholdFraction(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		min, max int
		want     float64
	}{
		{"midpoint", 75, 50, 100, 0.5},
		{"below band runs negative", 10, 50, 100, -0.8},
		{"above band runs past one", 200, 50, 100, 3},
		{"no band", 75, 50, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &InventoryItem{Quantity: tt.quantity, MinThreshold: tt.min, MaxThreshold: tt.max}
			if got := item.ThresholdFraction(); got != tt.want {
				t.Fatalf("ThresholdFraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestItemDaysOfSupply(t *testing.T) {
	item := &InventoryItem{Quantity: 90}
	if got := item.DaysOfSupply(30); got != 3 {
		t.Fatalf("DaysOfSupply(30) = %v, want 3", got)
	}
	if got := item.DaysOfSupply(0); !math.IsInf(got, 1) {
		t.Fatalf("DaysOfSupply(0) = %v, want +Inf", got)
	}
}

func TestWarehouseStockFraction(t *testing.T) {
	w := &Warehouse{
		ID:       "wh_1",
		Capacity: 1000,
		Items: map[string]*InventoryItem{
			"a": {ID: "a", Quantity: 150},
			"b": {ID: "b", Quantity: 50},
		},
	}
	if got := w.StockFraction(); got != 0.2 {
		t.Fatalf("StockFraction() = %v, want 0.2", got)
	}

	w.Capacity = 0
	if got := w.StockFraction(); got != 1 {
		t.Fatalf("StockFraction() with unknown capacity = %v, want 1", got)
	}
}

func TestRouteConditionsEstimatedDelay(t *testing.T) {
	rc := &RouteConditions{RouteID: "r1"}
	if got := rc.EstimatedDelay(); got != 0 {
		t.Fatalf("clear route delay = %v, want 0", got)
	}

	tests := []struct {
		reason string
		want   time.Duration
	}{
		{DisruptSevereWeather, 2 * time.Hour},
		{DisruptLowVisibility, 90 * time.Minute},
		{DisruptHighWinds, time.Hour},
		{DisruptRoadClosed, 4 * time.Hour},
		{DisruptRoadDamage, 3 * time.Hour},
		{DisruptFlooding, 210 * time.Minute},
		{"something_new", time.Hour},
	}
	for _, tt := range tests {
		rc := &RouteConditions{RouteID: "r1", Disrupted: true, Reason: tt.reason}
		if got := rc.EstimatedDelay(); got != tt.want {
			t.Errorf("EstimatedDelay(%s) = %v, want %v", tt.reason, got, tt.want)
		}
	}
}
