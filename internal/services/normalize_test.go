package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

func TestInventoryEnvelopeShape(t *testing.T) {
	raw := json.RawMessage(`{
		"generated_at": "2026-03-10T08:00:00Z",
		"warehouses": [
			{
				"id": "wh_1",
				"name": "Central Fulfillment Center",
				"location": "Des Moines, IA",
				"capacity": 18000,
				"items": [
					{"id": "bolts", "name": "Bolts", "category": "fasteners",
					 "quantity": 120, "unit": "box", "min_threshold": 50,
					 "max_threshold": 500, "last_updated": "2026-03-10T07:55:00Z"},
					{"id": "nuts", "name": "Nuts", "quantity": 40}
				]
			}
		]
	}`)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	snap, err := NewNormalizer(hclog.NewNullLogger()).Inventory(raw, now)
	if err != nil {
		t.Fatalf("Inventory() error: %v", err)
	}

	info, ok := snap.Info["wh_1"]
	if !ok || info.Capacity != 18000 {
		t.Fatalf("warehouse metadata not captured: %+v", snap.Info)
	}

	items := snap.Items["wh_1"]
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	bolts := items["bolts"]
	if bolts.Quantity != 120 || bolts.MinThreshold != 50 || bolts.Unit != "box" {
		t.Errorf("bolts parsed wrong: %+v", bolts)
	}
	if !bolts.UpdatedAt.Equal(time.Date(2026, 3, 10, 7, 55, 0, 0, time.UTC)) {
		t.Errorf("bolts UpdatedAt = %v", bolts.UpdatedAt)
	}
	nuts := items["nuts"]
	if nuts.Unit != "unit" {
		t.Errorf("missing unit must default, got %q", nuts.Unit)
	}
	if !nuts.UpdatedAt.Equal(now) {
		t.Errorf("missing timestamp must fall back to poll time, got %v", nuts.UpdatedAt)
	}
}

func TestInventoryMapShape(t *testing.T) {
	raw := json.RawMessage(`{
		"inventory": {
			"wh_1": {
				"bolts": {"name": "Bolts", "quantity": 120, "unit": "box",
				          "min_threshold": 50, "max_threshold": 500}
			}
		}
	}`)

	now := time.Now()
	snap, err := NewNormalizer(hclog.NewNullLogger()).Inventory(raw, now)
	if err != nil {
		t.Fatalf("Inventory() error: %v", err)
	}

	item := snap.Items["wh_1"]["bolts"]
	if item == nil {
		t.Fatalf("item not found: %+v", snap.Items)
	}
	if item.ID != "bolts" {
		t.Errorf("map key must become the item ID, got %q", item.ID)
	}
	if item.Quantity != 120 {
		t.Errorf("quantity = %d", item.Quantity)
	}
}

func TestInventorySkipsBadRecords(t *testing.T) {
	raw := json.RawMessage(`{
		"warehouses": [
			{"name": "no id, skipped", "capacity": 10},
			{"id": "wh_ok", "name": "Fine", "capacity": 100,
			 "items": [{"id": "a", "quantity": 1}, "not an item"]}
		]
	}`)

	snap, err := NewNormalizer(hclog.NewNullLogger()).Inventory(raw, time.Now())
	if err != nil {
		t.Fatalf("Inventory() error: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("got %d warehouses, want 1", len(snap.Items))
	}
	if len(snap.Items["wh_ok"]) != 1 {
		t.Fatalf("bad item record must be skipped, got %d items", len(snap.Items["wh_ok"]))
	}
}

func TestInventoryRejectsUnknownShape(t *testing.T) {
	if _, err := NewNormalizer(hclog.NewNullLogger()).Inventory(json.RawMessage(`[1, 2, 3]`), time.Now()); err == nil {
		t.Fatal("expected an error for an unrecognized document shape")
	}
}

func TestShipmentsEnvelopeShape(t *testing.T) {
	raw := json.RawMessage(`{
		"shipments": [
			{
				"id": "shp_1", "origin": "wh_1", "destination": "north_hub_1",
				"status": "in_transit", "priority": 8, "route": "r1",
				"estimated_arrival": "2026-03-10T15:00:00Z",
				"items": [{"id": "bolts", "name": "Bolts", "quantity": 10, "unit": "box"}]
			},
			{
				"id": "shp_2", "origin": "wh_1", "destination": "south_hub_1",
				"status": "levitating", "priority": 40
			},
			{"origin": "no id, skipped"}
		]
	}`)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	shipments, err := NewNormalizer(hclog.NewNullLogger()).Shipments(raw, now)
	if err != nil {
		t.Fatalf("Shipments() error: %v", err)
	}
	if len(shipments) != 2 {
		t.Fatalf("got %d shipments, want 2", len(shipments))
	}

	first := shipments[0]
	if first.Status != domain.StatusInTransit || first.Priority != 8 || first.RouteID != "r1" {
		t.Errorf("first shipment parsed wrong: %+v", first)
	}
	if !first.EstimatedArrival.Equal(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)) {
		t.Errorf("EstimatedArrival = %v", first.EstimatedArrival)
	}
	if len(first.Items) != 1 || first.Items[0].Quantity != 10 {
		t.Errorf("items parsed wrong: %+v", first.Items)
	}

	second := shipments[1]
	if second.Status != domain.StatusPending {
		t.Errorf("unknown status must fall back to pending, got %s", second.Status)
	}
	if second.Priority != 5 {
		t.Errorf("out-of-range priority must fall back to 5, got %d", second.Priority)
	}
}

func TestShipmentsMapShape(t *testing.T) {
	raw := json.RawMessage(`{
		"shp_1": {"id": "shp_1", "origin": "a", "destination": "b", "status": "pending"}
	}`)

	shipments, err := NewNormalizer(hclog.NewNullLogger()).Shipments(raw, time.Now())
	if err != nil {
		t.Fatalf("Shipments() error: %v", err)
	}
	if len(shipments) != 1 || shipments[0].ID != "shp_1" {
		t.Fatalf("unexpected result: %+v", shipments)
	}
}

func TestParseTimeFormats(t *testing.T) {
	want := time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC)
	if got := parseTimeZero("2026-03-10T15:04:05Z"); !got.Equal(want) {
		t.Errorf("RFC 3339: got %v", got)
	}
	if got := parseTimeZero("2026-03-10T15:04:05"); !got.Equal(want) {
		t.Errorf("bare timestamp: got %v", got)
	}
	if got := parseTimeZero("last tuesday"); !got.IsZero() {
		t.Errorf("garbage must parse to zero, got %v", got)
	}
}
