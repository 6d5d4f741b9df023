package services

import (
	"context"
	"sort"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// InventoryAlerts evaluates every warehouse against the alert thresholds.
// Two conditions raise alerts: total stock strictly below the configured
// fraction of warehouse capacity (stock at exactly the threshold is
// healthy), and individual items strictly below their minimum threshold.
func (e *Engine) InventoryAlerts(warehouses map[string]*domain.Warehouse) []domain.InventoryAlert {
	alerts := make([]domain.InventoryAlert, 0)

	for _, wid := range sortedKeys(warehouses) {
		w := warehouses[wid]

		if w.Capacity > 0 {
			frac := w.StockFraction()
			if frac < e.cfg.InventoryAlertThreshold {
				severity := domain.SeverityMedium
				if frac < e.cfg.InventoryAlertThreshold/2 {
					severity = domain.SeverityHigh
				}
				alerts = append(alerts, domain.InventoryAlert{
					WarehouseID:   w.ID,
					WarehouseName: w.Name,
					Quantity:      w.TotalQuantity(),
					Threshold:     int(e.cfg.InventoryAlertThreshold * float64(w.Capacity)),
					StockFraction: frac,
					Reason:        domain.ReasonLowStock,
					Severity:      severity,
				})
				e.log.Warn("warehouse stock below alert threshold",
					"warehouse_id", w.ID, "stock_fraction", frac,
					"threshold", e.cfg.InventoryAlertThreshold)
			}
		}

		for _, iid := range sortedKeys(w.Items) {
			item := w.Items[iid]
			if !item.BelowThreshold() {
				continue
			}
			severity := domain.SeverityMedium
			if item.Quantity == 0 {
				severity = domain.SeverityHigh
			}
			alerts = append(alerts, domain.InventoryAlert{
				WarehouseID:   w.ID,
				WarehouseName: w.Name,
				ItemID:        item.ID,
				ItemName:      item.Name,
				Quantity:      item.Quantity,
				Threshold:     item.MinThreshold,
				Unit:          item.Unit,
				Reason:        domain.ReasonBelowThreshold,
				Severity:      severity,
			})
			e.log.Warn("item below minimum threshold",
				"warehouse_id", w.ID, "item_id", item.ID,
				"quantity", item.Quantity, "min_threshold", item.MinThreshold)
		}
	}

	return alerts
}

// PlanReplenishment turns per-item alerts into transfer decisions. For
// each shorted item the nearest warehouse holding excess stock becomes the
// source; the transfer tops the destination up to 150% of the item's
// minimum threshold, bounded by the source's excess. Items with no source
// are left to external procurement, which is outside this agent's remit.
func (e *Engine) PlanReplenishment(
	ctx context.Context,
	warehouses map[string]*domain.Warehouse,
	alerts []domain.InventoryAlert,
) []domain.TransferDecision {
	decisions := make([]domain.TransferDecision, 0)

	for _, alert := range alerts {
		if alert.ItemID == "" {
			continue
		}

		source, excess, ok := e.findSource(ctx, warehouses, alert.ItemID, alert.WarehouseID)
		if !ok {
			e.log.Info("no source warehouse for item, external procurement needed",
				"item_id", alert.ItemID, "warehouse_id", alert.WarehouseID)
			continue
		}

		// Replenish to 150% of the minimum threshold.
		target := alert.Threshold + alert.Threshold/2
		quantity := target - alert.Quantity
		if quantity > excess {
			quantity = excess
		}
		if quantity <= 0 {
			continue
		}

		priority := 5
		if alert.Severity == domain.SeverityHigh {
			priority = 8
		}

		decisions = append(decisions, domain.TransferDecision{
			ID:          decisionID("tr"),
			SourceID:    source,
			Destination: alert.WarehouseID,
			Items: []domain.ShipmentItem{{
				ID:       alert.ItemID,
				Name:     alert.ItemName,
				Quantity: quantity,
				Unit:     alert.Unit,
			}},
			Reason:   domain.ReasonBelowThreshold,
			Priority: priority,
		})
		e.log.Info("replenishment transfer decided",
			"item_id", alert.ItemID, "quantity", quantity,
			"source", source, "destination", alert.WarehouseID)
	}

	return decisions
}

// findSource picks the warehouse to pull an item from: nearest first, then
// largest excess, then warehouse ID.
func (e *Engine) findSource(
	ctx context.Context,
	warehouses map[string]*domain.Warehouse,
	itemID, destinationID string,
) (string, int, bool) {
	type candidate struct {
		id       string
		excess   int
		distance float64
	}

	var candidates []candidate
	for _, wid := range sortedKeys(warehouses) {
		if wid == destinationID {
			continue
		}
		item, ok := warehouses[wid].Items[itemID]
		if !ok || item.Excess() <= 0 {
			continue
		}
		candidates = append(candidates, candidate{
			id:       wid,
			excess:   item.Excess(),
			distance: e.distanceBetween(ctx, wid, destinationID),
		})
	}
	if len(candidates) == 0 {
		return "", 0, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.excess != b.excess {
			return a.excess > b.excess
		}
		return a.id < b.id
	})

	best := candidates[0]
	return best.id, best.excess, true
}
