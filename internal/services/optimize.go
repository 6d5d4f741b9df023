package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// BalanceInventory looks for items whose stock sits unevenly across
// warehouses and proposes low-priority transfers from the fullest sites to
// the emptiest. An imbalance means a warehouse sits more than 25% above or
// below the item's average fill fraction; transfers aim 15% past the
// average so small oscillations don't trigger back-and-forth moves.
func (e *Engine) BalanceInventory(
	ctx context.Context,
	warehouses map[string]*domain.Warehouse,
) []domain.TransferDecision {
	type holding struct {
		warehouseID string
		item        *domain.InventoryItem
	}

	byItem := map[string][]holding{}
	for _, wid := range sortedKeys(warehouses) {
		w := warehouses[wid]
		for _, iid := range sortedKeys(w.Items) {
			byItem[iid] = append(byItem[iid], holding{wid, w.Items[iid]})
		}
	}

	decisions := make([]domain.TransferDecision, 0)

	for _, itemID := range sortedKeys(byItem) {
		holdings := byItem[itemID]
		if len(holdings) <= 1 {
			continue
		}

		var total float64
		counted := 0
		for _, h := range holdings {
			if h.item.MaxThreshold > h.item.MinThreshold {
				total += h.item.ThresholdFraction()
				counted++
			}
		}
		if counted == 0 {
			continue
		}
		avg := total / float64(counted)

		excess := map[string]int{}
		deficit := map[string]int{}
		var name, unit string
		for _, h := range holdings {
			span := h.item.MaxThreshold - h.item.MinThreshold
			if span <= 0 {
				continue
			}
			name, unit = h.item.Name, h.item.Unit
			frac := h.item.ThresholdFraction()
			switch {
			case frac > avg+0.25:
				if amount := int((frac - avg - 0.15) * float64(span)); amount > 0 {
					excess[h.warehouseID] = amount
				}
			case frac < avg-0.25:
				if amount := int((avg - 0.15 - frac) * float64(span)); amount > 0 {
					deficit[h.warehouseID] = amount
				}
			}
		}
		if len(excess) == 0 || len(deficit) == 0 {
			continue
		}

		for _, deficitID := range sortedKeys(deficit) {
			need := deficit[deficitID]

			bestSource := ""
			bestDistance := 0.0
			for _, excessID := range sortedKeys(excess) {
				if excess[excessID] <= 0 {
					continue
				}
				d := e.distanceBetween(ctx, excessID, deficitID)
				if bestSource == "" || d < bestDistance {
					bestSource, bestDistance = excessID, d
				}
			}
			if bestSource == "" {
				continue
			}

			amount := min(excess[bestSource], need)
			excess[bestSource] -= amount

			decisions = append(decisions, domain.TransferDecision{
				ID:          decisionID("bal"),
				SourceID:    bestSource,
				Destination: deficitID,
				Items: []domain.ShipmentItem{{
					ID: itemID, Name: name, Quantity: amount, Unit: unit,
				}},
				Reason:   domain.ReasonBalancing,
				Priority: 3,
			})
			e.log.Info("inventory balancing transfer decided",
				"item_id", itemID, "quantity", amount,
				"source", bestSource, "destination", deficitID)
		}
	}

	return decisions
}

// StaggerSchedules spreads same-day deliveries to one destination into
// two-hour slots so receiving operations aren't swamped. Higher-priority
// shipments keep the earlier slots. Slots start at 09:00 local unless the
// earliest ETA is already later.
func (e *Engine) StaggerSchedules(
	shipments map[string]*domain.Shipment,
) []domain.ScheduleAdjustment {
	byDestination := map[string][]*domain.Shipment{}
	for _, id := range sortedKeys(shipments) {
		s := shipments[id]
		if s.EstimatedArrival.IsZero() || !s.Active() {
			continue
		}
		byDestination[s.Destination] = append(byDestination[s.Destination], s)
	}

	adjustments := make([]domain.ScheduleAdjustment, 0)

	for _, dest := range sortedKeys(byDestination) {
		group := byDestination[dest]
		if len(group) < 2 {
			continue
		}

		byDay := map[string][]*domain.Shipment{}
		for _, s := range group {
			day := s.EstimatedArrival.Format("2006-01-02")
			byDay[day] = append(byDay[day], s)
		}

		for _, day := range sortedKeys(byDay) {
			sameDay := byDay[day]
			if len(sameDay) < 2 {
				continue
			}

			sort.Slice(sameDay, func(i, j int) bool {
				if sameDay[i].Priority != sameDay[j].Priority {
					return sameDay[i].Priority > sameDay[j].Priority
				}
				return sameDay[i].ID < sameDay[j].ID
			})

			earliest := sameDay[0].EstimatedArrival
			for _, s := range sameDay[1:] {
				if s.EstimatedArrival.Before(earliest) {
					earliest = s.EstimatedArrival
				}
			}

			slot := time.Date(
				earliest.Year(), earliest.Month(), earliest.Day(),
				9, 0, 0, 0, earliest.Location(),
			)
			if earliest.After(slot) {
				slot = earliest
			}

			changes := make([]domain.ScheduleChange, 0, len(sameDay))
			for i, s := range sameDay {
				arrival := slot.Add(time.Duration(i) * 2 * time.Hour)
				changes = append(changes, domain.ScheduleChange{
					ShipmentID:       s.ID,
					EstimatedArrival: arrival,
					WindowStart:      arrival.Add(-30 * time.Minute),
					WindowEnd:        arrival.Add(30 * time.Minute),
				})
			}

			adjustments = append(adjustments, domain.ScheduleAdjustment{
				ID:          decisionID("adj"),
				Destination: dest,
				Changes:     changes,
				Reason:      domain.ReasonReceivingSpread,
			})
			e.log.Info("schedule adjustment decided",
				"destination", dest, "day", day, "shipments", len(changes))
		}
	}

	return adjustments
}

// ConsolidateRoutes groups in-transit shipments by destination region and
// asks the transport system for a faster route per shipment. Only strict
// ETA improvements are kept; a region with fewer than two candidates is
// not worth consolidating.
func (e *Engine) ConsolidateRoutes(
	ctx context.Context,
	shipments map[string]*domain.Shipment,
) []domain.RouteOptimization {
	byRegion := map[string][]*domain.Shipment{}
	for _, id := range sortedKeys(shipments) {
		s := shipments[id]
		if s.Status != domain.StatusInTransit || s.EstimatedArrival.IsZero() {
			continue
		}
		byRegion[region(s.Destination)] = append(byRegion[region(s.Destination)], s)
	}

	optimizations := make([]domain.RouteOptimization, 0)

	for _, reg := range sortedKeys(byRegion) {
		group := byRegion[reg]
		if len(group) < 2 {
			continue
		}

		newRoutes := map[string]string{}
		newETAs := map[string]time.Time{}
		for _, s := range group {
			options, err := e.routes.AlternativeRoutes(ctx, s.Origin, s.Destination)
			if err != nil {
				e.log.Debug("consolidation route lookup failed",
					"shipment_id", s.ID, "err", err)
				continue
			}
			best, ok := selectRoute(options, s.RouteID, 10, nil)
			if !ok || !best.EstimatedArrival.Before(s.EstimatedArrival) {
				continue
			}
			newRoutes[s.ID] = best.RouteID
			newETAs[s.ID] = best.EstimatedArrival
		}
		if len(newRoutes) == 0 {
			continue
		}

		optimizations = append(optimizations, domain.RouteOptimization{
			ID:        decisionID("opt"),
			Region:    reg,
			NewRoutes: newRoutes,
			NewETAs:   newETAs,
		})
		e.log.Info("route consolidation decided",
			"region", reg, "shipments", len(newRoutes))
	}

	return optimizations
}

// region extracts the coarse region key from a destination identifier
// ("north_depot_3" -> "north").
func region(destination string) string {
	if i := strings.IndexByte(destination, '_'); i > 0 {
		return destination[:i]
	}
	return destination
}
