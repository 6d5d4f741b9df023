package services

import (
	"context"
	"testing"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

func warehouse(id string, capacity int, items ...*domain.InventoryItem) *domain.Warehouse {
	m := map[string]*domain.InventoryItem{}
	for _, item := range items {
		m[item.ID] = item
	}
	return &domain.Warehouse{ID: id, Name: id, Capacity: capacity, Items: m}
}

func TestInventoryAlertsWarehouseLevel(t *testing.T) {
	e := testEngine(nil, nil)

	// 200/1000 = exactly the 0.2 threshold: healthy.
	atThreshold := warehouse("wh_at", 1000, &domain.InventoryItem{ID: "a", Quantity: 200})
	// 199/1000: below.
	below := warehouse("wh_below", 1000, &domain.InventoryItem{ID: "a", Quantity: 199})
	// 50/1000 < threshold/2: high severity.
	critical := warehouse("wh_critical", 1000, &domain.InventoryItem{ID: "a", Quantity: 50})
	// No known capacity: never a warehouse-level alert.
	unknown := warehouse("wh_unknown", 0, &domain.InventoryItem{ID: "a", Quantity: 1})

	alerts := e.InventoryAlerts(map[string]*domain.Warehouse{
		"wh_at": atThreshold, "wh_below": below, "wh_critical": critical, "wh_unknown": unknown,
	})

	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2: %+v", len(alerts), alerts)
	}
	if alerts[0].WarehouseID != "wh_below" || alerts[0].Severity != domain.SeverityMedium {
		t.Errorf("unexpected first alert: %+v", alerts[0])
	}
	if alerts[1].WarehouseID != "wh_critical" || alerts[1].Severity != domain.SeverityHigh {
		t.Errorf("unexpected second alert: %+v", alerts[1])
	}
	for _, a := range alerts {
		if a.Reason != domain.ReasonLowStock {
			t.Errorf("reason = %q, want %q", a.Reason, domain.ReasonLowStock)
		}
		if a.ItemID != "" {
			t.Errorf("warehouse-level alert carries item %q", a.ItemID)
		}
	}
}

func TestInventoryAlertsPerItem(t *testing.T) {
	e := testEngine(nil, nil)

	w := warehouse("wh_1", 0,
		&domain.InventoryItem{ID: "bolts", Quantity: 10, MinThreshold: 50, Unit: "box"},
		&domain.InventoryItem{ID: "nuts", Quantity: 0, MinThreshold: 20, Unit: "box"},
		&domain.InventoryItem{ID: "washers", Quantity: 50, MinThreshold: 50, Unit: "box"},
	)

	alerts := e.InventoryAlerts(map[string]*domain.Warehouse{"wh_1": w})
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}
	if alerts[0].ItemID != "bolts" || alerts[0].Severity != domain.SeverityMedium {
		t.Errorf("unexpected bolts alert: %+v", alerts[0])
	}
	if alerts[1].ItemID != "nuts" || alerts[1].Severity != domain.SeverityHigh {
		t.Errorf("stockout must be high severity: %+v", alerts[1])
	}
}

func TestPlanReplenishment(t *testing.T) {
	distances := map[string]float64{
		"wh_far|wh_short": 800,
		"wh_near|wh_short": 120,
	}
	distance := func(ctx context.Context, origin, destination string) (float64, error) {
		return distances[origin+"|"+destination], nil
	}
	e := testEngine(nil, distance)

	short := warehouse("wh_short", 0,
		&domain.InventoryItem{ID: "bolts", Name: "Bolts", Quantity: 10, MinThreshold: 50, Unit: "box"})
	near := warehouse("wh_near", 0,
		&domain.InventoryItem{ID: "bolts", Name: "Bolts", Quantity: 300, MinThreshold: 50, Unit: "box"})
	far := warehouse("wh_far", 0,
		&domain.InventoryItem{ID: "bolts", Name: "Bolts", Quantity: 500, MinThreshold: 50, Unit: "box"})

	warehouses := map[string]*domain.Warehouse{"wh_short": short, "wh_near": near, "wh_far": far}
	alerts := e.InventoryAlerts(warehouses)
	decisions := e.PlanReplenishment(context.Background(), warehouses, alerts)

	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	d := decisions[0]
	if d.SourceID != "wh_near" {
		t.Errorf("source = %q, want the nearest warehouse with excess", d.SourceID)
	}
	if d.Destination != "wh_short" {
		t.Errorf("destination = %q, want wh_short", d.Destination)
	}
	// Top up to 150% of the minimum threshold: 75 target, 10 on hand.
	if len(d.Items) != 1 || d.Items[0].Quantity != 65 {
		t.Errorf("transfer quantity = %+v, want 65", d.Items)
	}
	if d.Priority != 5 {
		t.Errorf("medium severity alert should produce priority 5, got %d", d.Priority)
	}
}

func TestPlanReplenishmentClampsToSourceExcess(t *testing.T) {
	e := testEngine(nil, nil)

	short := warehouse("wh_short", 0,
		&domain.InventoryItem{ID: "bolts", Quantity: 0, MinThreshold: 100, Unit: "box"})
	source := warehouse("wh_src", 0,
		&domain.InventoryItem{ID: "bolts", Quantity: 120, MinThreshold: 100, Unit: "box"})

	warehouses := map[string]*domain.Warehouse{"wh_short": short, "wh_src": source}
	alerts := e.InventoryAlerts(warehouses)
	decisions := e.PlanReplenishment(context.Background(), warehouses, alerts)

	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	if got := decisions[0].Items[0].Quantity; got != 20 {
		t.Fatalf("quantity = %d, want the source's excess of 20", got)
	}
	if decisions[0].Priority != 8 {
		t.Errorf("stockout should produce priority 8, got %d", decisions[0].Priority)
	}
}

func TestPlanReplenishmentNoSource(t *testing.T) {
	e := testEngine(nil, nil)

	short := warehouse("wh_short", 0,
		&domain.InventoryItem{ID: "bolts", Quantity: 10, MinThreshold: 50})
	alsoShort := warehouse("wh_also", 0,
		&domain.InventoryItem{ID: "bolts", Quantity: 20, MinThreshold: 50})

	warehouses := map[string]*domain.Warehouse{"wh_short": short, "wh_also": alsoShort}
	alerts := e.InventoryAlerts(warehouses)
	decisions := e.PlanReplenishment(context.Background(), warehouses, alerts)

	if len(decisions) != 0 {
		t.Fatalf("no warehouse has excess, got %d decisions", len(decisions))
	}
}
