package agent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
)

// checkInventory polls the inventory system, refreshes warehouse state,
// raises threshold alerts, and executes replenishment transfers.
func (a *Agent) checkInventory(ctx context.Context) error {
	now := a.now()

	raw, err := a.deps.Inventory.FetchInventory(ctx)
	if err != nil {
		return fmt.Errorf("fetch inventory: %w", err)
	}
	snap, err := a.normalizer.Inventory(raw, now)
	if err != nil {
		return fmt.Errorf("normalize inventory: %w", err)
	}

	for _, wid := range sortedKeys(snap.Items) {
		info := a.resolveWarehouseInfo(ctx, wid, snap.Info)
		w := &domain.Warehouse{
			ID:       wid,
			Name:     info.Name,
			Location: info.Location,
			Capacity: info.Capacity,
			Items:    snap.Items[wid],
		}
		a.warehouses[wid] = w
		a.persistWarehouse(ctx, w)
	}
	a.log.Debug("inventory refreshed", "warehouses", len(snap.Items))

	alerts := a.engine.InventoryAlerts(a.warehouses)
	for _, alert := range alerts {
		if alert.ItemID == "" {
			a.notify(ctx, "inventory_alert", domain.ChannelInventory, alert.Severity,
				fmt.Sprintf("warehouse %s stock at %.0f%% of capacity", alert.WarehouseID, alert.StockFraction*100),
				map[string]any{
					"warehouse_id": alert.WarehouseID,
					"quantity":     alert.Quantity,
					"threshold":    alert.Threshold,
					"target_level": a.cfg.InventoryTargetLevel,
					"reason":       alert.Reason,
				})
			continue
		}
		a.notify(ctx, "inventory_alert", domain.ChannelInventory, alert.Severity,
			fmt.Sprintf("item %s at warehouse %s below minimum: %d %s on hand, minimum %d",
				alert.ItemID, alert.WarehouseID, alert.Quantity, alert.Unit, alert.Threshold),
			map[string]any{
				"warehouse_id": alert.WarehouseID,
				"item_id":      alert.ItemID,
				"quantity":     alert.Quantity,
				"threshold":    alert.Threshold,
				"reason":       alert.Reason,
			})
	}

	transfers := a.engine.PlanReplenishment(ctx, a.warehouses, alerts)
	a.executeTransfers(ctx, transfers, "replenishment_transfer")

	return nil
}

// resolveWarehouseInfo prefers metadata embedded in the poll document,
// then the local lookup cache, then a direct API call. A failed lookup
// leaves the warehouse with bare identity; capacity alerts skip it.
func (a *Agent) resolveWarehouseInfo(ctx context.Context, warehouseID string, polled map[string]ports.WarehouseInfo) ports.WarehouseInfo {
	if info, ok := polled[warehouseID]; ok {
		a.warehouseInfo[warehouseID] = info
		return info
	}
	if info, ok := a.warehouseInfo[warehouseID]; ok {
		return info
	}

	info, err := a.deps.Inventory.WarehouseInfo(ctx, warehouseID)
	if err != nil {
		a.log.Warn("warehouse metadata lookup failed", "warehouse_id", warehouseID, "error", err)
		return ports.WarehouseInfo{ID: warehouseID, Name: warehouseID}
	}
	a.warehouseInfo[warehouseID] = info
	return info
}

// monitorShipments polls the transport system, retires finished
// shipments, flags delays, and executes reroute decisions.
func (a *Agent) monitorShipments(ctx context.Context) error {
	now := a.now()

	raw, err := a.deps.Transport.FetchActiveShipments(ctx)
	if err != nil {
		return fmt.Errorf("fetch shipments: %w", err)
	}
	shipments, err := a.normalizer.Shipments(raw, now)
	if err != nil {
		return fmt.Errorf("normalize shipments: %w", err)
	}

	polled := make(map[string]bool, len(shipments))
	for _, s := range shipments {
		polled[s.ID] = true
		if s.Status.Terminal() {
			a.retireShipment(ctx, s, now)
			continue
		}
		a.shipments[s.ID] = s
		a.persistShipment(ctx, s)
	}

	// A shipment the feed stops reporting is finished as far as the
	// transport system is concerned; dropping it keeps stale entries
	// from raising delay alerts forever.
	for _, id := range sortedKeys(a.shipments) {
		if polled[id] {
			continue
		}
		a.log.Info("shipment no longer reported, removing from working set", "shipment_id", id)
		delete(a.shipments, id)
	}
	a.log.Debug("shipments refreshed", "active", len(a.shipments))

	issues := a.engine.ShipmentIssues(a.shipments, now)
	for _, issue := range issues {
		a.notify(ctx, "shipment_delay", domain.ChannelShipments, issue.Severity,
			fmt.Sprintf("shipment %s to %s is %s behind schedule",
				issue.ShipmentID, issue.Destination, issue.Delay),
			map[string]any{
				"shipment_id": issue.ShipmentID,
				"route_id":    issue.RouteID,
				"delay_s":     int(issue.Delay.Seconds()),
				"priority":    issue.Priority,
			})
	}

	reroutes := a.engine.PlanReroutes(ctx, a.shipments, issues, a.routes)
	for _, d := range reroutes {
		if err := a.deps.Transport.UpdateRoute(ctx, d.ShipmentID, d.NewRouteID); err != nil {
			a.log.Error("route update rejected",
				"shipment_id", d.ShipmentID, "route_id", d.NewRouteID, "error", err)
			continue
		}

		severity := domain.SeverityMedium
		if s, ok := a.shipments[d.ShipmentID]; ok {
			s.Status = domain.StatusRerouting
			s.RouteID = d.NewRouteID
			if !d.NewETA.IsZero() {
				s.EstimatedArrival = d.NewETA
			}
			s.UpdatedAt = now
			a.persistShipment(ctx, s)
			if s.Priority >= 8 {
				severity = domain.SeverityHigh
			}
		}

		a.record(ctx, "reroute", d.ShipmentID, d.Reason, map[string]any{
			"old_route": d.OldRouteID,
			"new_route": d.NewRouteID,
			"new_eta":   d.NewETA,
		}, d.ID)
		a.notify(ctx, "shipment_reroute", domain.ChannelShipments, severity,
			fmt.Sprintf("shipment %s moved from route %s to %s (%s)",
				d.ShipmentID, d.OldRouteID, d.NewRouteID, d.Reason),
			map[string]any{
				"shipment_id": d.ShipmentID,
				"old_route":   d.OldRouteID,
				"new_route":   d.NewRouteID,
				"reason":      d.Reason,
			})
	}

	return nil
}

// retireShipment drops a finished shipment from the working set. A
// delivery credits its manifest to the destination warehouse so stock
// decisions stay sane until the next inventory poll reconciles.
func (a *Agent) retireShipment(ctx context.Context, s *domain.Shipment, now time.Time) {
	if s.Status == domain.StatusDelivered {
		if w, ok := a.warehouses[s.Destination]; ok {
			for _, item := range s.Items {
				if held, ok := w.Items[item.ID]; ok {
					held.Quantity += item.Quantity
					held.UpdatedAt = now
					continue
				}
				if w.Items == nil {
					w.Items = map[string]*domain.InventoryItem{}
				}
				w.Items[item.ID] = &domain.InventoryItem{
					ID:        item.ID,
					Name:      item.Name,
					Quantity:  item.Quantity,
					Unit:      item.Unit,
					UpdatedAt: now,
				}
			}
			a.persistWarehouse(ctx, w)
		}
		a.notify(ctx, "shipment_delivered", domain.ChannelShipments, domain.SeverityLow,
			fmt.Sprintf("shipment %s delivered to %s", s.ID, s.Destination),
			map[string]any{"shipment_id": s.ID, "destination": s.Destination})
	}

	delete(a.shipments, s.ID)
	if a.deps.Store != nil {
		if err := a.deps.Store.UpsertShipment(ctx, s); err != nil {
			a.log.Error("persisting final shipment state failed", "shipment_id", s.ID, "error", err)
		}
	}
}

// updateRouteConditions refreshes weather and road state for every route
// an active shipment is on and alerts on disruption transitions.
func (a *Agent) updateRouteConditions(ctx context.Context) error {
	now := a.now()

	inUse := map[string]bool{}
	for _, s := range a.shipments {
		if s.RouteID != "" && s.Active() {
			inUse[s.RouteID] = true
		}
	}

	for _, routeID := range sortedKeys(inUse) {
		weather, err := a.deps.Weather.RouteConditions(ctx, routeID)
		if err != nil {
			a.log.Warn("weather lookup failed", "route_id", routeID, "error", err)
			continue
		}
		road, err := a.deps.Transport.RoadConditions(ctx, routeID)
		if err != nil {
			a.log.Warn("road conditions lookup failed", "route_id", routeID, "error", err)
			continue
		}

		rc := &domain.RouteConditions{
			RouteID:   routeID,
			Weather:   weather,
			Road:      road,
			UpdatedAt: now,
		}
		a.engine.EvaluateDisruption(rc)

		prev := a.routes[routeID]
		a.routes[routeID] = rc
		a.persistRouteConditions(ctx, rc)

		switch {
		case rc.Disrupted && (prev == nil || !prev.Disrupted || prev.Reason != rc.Reason):
			a.notify(ctx, "route_disruption", domain.ChannelRoutes, domain.SeverityHigh,
				fmt.Sprintf("route %s disrupted: %s, expected delay %s",
					routeID, rc.Reason, rc.EstimatedDelay()),
				map[string]any{
					"route_id":        routeID,
					"reason":          rc.Reason,
					"estimated_delay": rc.EstimatedDelay().String(),
				})
		case !rc.Disrupted && prev != nil && prev.Disrupted:
			a.notify(ctx, "route_cleared", domain.ChannelRoutes, domain.SeverityLow,
				fmt.Sprintf("route %s is clear again", routeID),
				map[string]any{"route_id": routeID})
		}
	}

	return nil
}

// optimize runs the opportunistic improvements on whatever state the
// polls have assembled: stock balancing, delivery staggering, and route
// consolidation.
func (a *Agent) optimize(ctx context.Context) error {
	now := a.now()

	if len(a.warehouses) > 1 {
		transfers := a.engine.BalanceInventory(ctx, a.warehouses)
		a.executeTransfers(ctx, transfers, "inventory_balancing")
	}

	for _, adj := range a.engine.StaggerSchedules(a.shipments) {
		applied := make([]string, 0, len(adj.Changes))
		for _, change := range adj.Changes {
			update := ports.ScheduleUpdate{
				EstimatedArrival: change.EstimatedArrival,
				WindowStart:      change.WindowStart,
				WindowEnd:        change.WindowEnd,
			}
			if err := a.deps.Transport.UpdateSchedule(ctx, change.ShipmentID, update); err != nil {
				a.log.Error("schedule update rejected",
					"shipment_id", change.ShipmentID, "error", err)
				continue
			}
			if s, ok := a.shipments[change.ShipmentID]; ok {
				s.EstimatedArrival = change.EstimatedArrival
				s.UpdatedAt = now
				a.persistShipment(ctx, s)
			}
			applied = append(applied, change.ShipmentID)
		}
		if len(applied) == 0 {
			continue
		}

		a.record(ctx, "schedule_adjustment", adj.Destination, adj.Reason, map[string]any{
			"shipments": applied,
		}, adj.ID)
		a.notify(ctx, "schedule_adjustment", domain.ChannelShipments, domain.SeverityLow,
			fmt.Sprintf("staggered %d deliveries to %s", len(applied), adj.Destination),
			map[string]any{"destination": adj.Destination, "shipments": applied})
	}

	for _, opt := range a.engine.ConsolidateRoutes(ctx, a.shipments) {
		applied := make([]string, 0, len(opt.NewRoutes))
		for _, shipmentID := range sortedKeys(opt.NewRoutes) {
			routeID := opt.NewRoutes[shipmentID]
			if err := a.deps.Transport.UpdateRoute(ctx, shipmentID, routeID); err != nil {
				a.log.Error("route update rejected",
					"shipment_id", shipmentID, "route_id", routeID, "error", err)
				continue
			}
			if s, ok := a.shipments[shipmentID]; ok {
				s.RouteID = routeID
				if eta, ok := opt.NewETAs[shipmentID]; ok && !eta.IsZero() {
					s.EstimatedArrival = eta
				}
				s.UpdatedAt = now
				a.persistShipment(ctx, s)
			}
			applied = append(applied, shipmentID)
		}
		if len(applied) == 0 {
			continue
		}

		a.record(ctx, "route_optimization", opt.Region, "faster_route_available", map[string]any{
			"shipments": applied,
		}, opt.ID)
		a.notify(ctx, "route_optimization", domain.ChannelRoutes, domain.SeverityLow,
			fmt.Sprintf("moved %d shipments bound for %s onto faster routes", len(applied), opt.Region),
			map[string]any{"region": opt.Region, "shipments": applied})
	}

	return nil
}

// executeTransfers pushes transfer decisions to the inventory system and
// optimistically applies the stock movement locally.
func (a *Agent) executeTransfers(ctx context.Context, transfers []domain.TransferDecision, kind string) {
	now := a.now()

	for _, d := range transfers {
		req := ports.TransferRequest{
			SourceID:    d.SourceID,
			Destination: d.Destination,
			Items:       d.Items,
			RequestedBy: a.cfg.AgentName,
			Reason:      d.Reason,
		}
		transferID, err := a.deps.Inventory.CreateTransfer(ctx, req)
		if err != nil {
			a.log.Error("transfer rejected",
				"source", d.SourceID, "destination", d.Destination, "error", err)
			continue
		}

		a.applyTransfer(ctx, d, now)

		severity := domain.SeverityLow
		switch {
		case d.Priority >= 8:
			severity = domain.SeverityHigh
		case d.Priority >= 5:
			severity = domain.SeverityMedium
		}

		a.record(ctx, kind, d.Destination, d.Reason, map[string]any{
			"transfer_id": transferID,
			"source":      d.SourceID,
			"destination": d.Destination,
			"items":       d.Items,
		}, d.ID)
		a.notify(ctx, kind, domain.ChannelInventory, severity,
			fmt.Sprintf("transfer %s: %d items from %s to %s (%s)",
				transferID, len(d.Items), d.SourceID, d.Destination, d.Reason),
			map[string]any{
				"transfer_id": transferID,
				"source":      d.SourceID,
				"destination": d.Destination,
				"reason":      d.Reason,
			})
	}
}

// applyTransfer moves the transferred quantities in local state so the
// same shortage isn't acted on twice before the next poll.
func (a *Agent) applyTransfer(ctx context.Context, d domain.TransferDecision, now time.Time) {
	source, srcOK := a.warehouses[d.SourceID]
	dest, dstOK := a.warehouses[d.Destination]

	for _, item := range d.Items {
		if srcOK {
			if held, ok := source.Items[item.ID]; ok {
				held.Quantity -= item.Quantity
				if held.Quantity < 0 {
					held.Quantity = 0
				}
				held.UpdatedAt = now
			}
		}
		if dstOK {
			if held, ok := dest.Items[item.ID]; ok {
				held.Quantity += item.Quantity
				held.UpdatedAt = now
			}
		}
	}

	if srcOK {
		a.persistWarehouse(ctx, source)
	}
	if dstOK {
		a.persistWarehouse(ctx, dest)
	}
}

func (a *Agent) persistWarehouse(ctx context.Context, w *domain.Warehouse) {
	if a.deps.Store != nil {
		if err := a.deps.Store.UpsertWarehouse(ctx, w); err != nil {
			a.log.Error("persisting warehouse failed", "warehouse_id", w.ID, "error", err)
		}
	}
	if a.deps.Cache != nil {
		if err := a.deps.Cache.StoreWarehouse(ctx, w); err != nil {
			a.log.Warn("caching warehouse failed", "warehouse_id", w.ID, "error", err)
		}
	}
}

func (a *Agent) persistShipment(ctx context.Context, s *domain.Shipment) {
	if a.deps.Store != nil {
		if err := a.deps.Store.UpsertShipment(ctx, s); err != nil {
			a.log.Error("persisting shipment failed", "shipment_id", s.ID, "error", err)
		}
	}
	if a.deps.Cache != nil {
		if err := a.deps.Cache.StoreShipment(ctx, s); err != nil {
			a.log.Warn("caching shipment failed", "shipment_id", s.ID, "error", err)
		}
	}
}

func (a *Agent) persistRouteConditions(ctx context.Context, rc *domain.RouteConditions) {
	if a.deps.Store != nil {
		if err := a.deps.Store.UpsertRouteConditions(ctx, rc); err != nil {
			a.log.Error("persisting route conditions failed", "route_id", rc.RouteID, "error", err)
		}
	}
	if a.deps.Cache != nil {
		if err := a.deps.Cache.StoreRouteConditions(ctx, rc); err != nil {
			a.log.Warn("caching route conditions failed", "route_id", rc.RouteID, "error", err)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
