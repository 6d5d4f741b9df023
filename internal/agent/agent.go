package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
	"github.com/hbsurial/logistics-coordination-agent/internal/services"
)

// Deps are the external systems the agent coordinates.
type Deps struct {
	Inventory ports.InventorySource
	Transport ports.TransportSource
	Weather   ports.WeatherSource

	Store     ports.StateStore
	Cache     ports.StateCache
	Distances ports.DistanceCache
	Notifier  ports.Notifier
}

// Agent runs the coordination loop: poll the external systems on their
// own intervals, normalize what they report, evaluate it, and push the
// resulting decisions back out. One failing task logs and alerts but
// never stops the loop.
type Agent struct {
	cfg  *config.Config
	deps Deps
	log  hclog.Logger

	normalizer *services.Normalizer
	engine     *services.Engine

	now func() time.Time

	warehouses    map[string]*domain.Warehouse
	shipments     map[string]*domain.Shipment
	routes        map[string]*domain.RouteConditions
	warehouseInfo map[string]ports.WarehouseInfo

	lastInventoryCheck time.Time
	lastShipmentCheck  time.Time
	lastWeatherCheck   time.Time
}

func New(cfg *config.Config, deps Deps, log hclog.Logger) *Agent {
	a := &Agent{
		cfg:  cfg,
		deps: deps,
		log:  log.Named("agent"),
		now:  time.Now,

		warehouses:    map[string]*domain.Warehouse{},
		shipments:     map[string]*domain.Shipment{},
		routes:        map[string]*domain.RouteConditions{},
		warehouseInfo: map[string]ports.WarehouseInfo{},
	}
	a.normalizer = services.NewNormalizer(log)
	a.engine = services.NewEngine(cfg, log, deps.Transport, a.distanceBetween)
	return a
}

// Run drives the main loop until the context is cancelled. The first
// cycle runs immediately so a fresh start doesn't idle a full interval.
func (a *Agent) Run(ctx context.Context) error {
	a.log.Info("agent starting",
		"name", a.cfg.AgentName,
		"main_loop_interval", a.cfg.MainLoopInterval.String())

	a.warmStart(ctx)

	ticker := time.NewTicker(a.cfg.MainLoopInterval)
	defer ticker.Stop()

	a.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			a.log.Info("agent stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

// tick runs every task whose interval has elapsed. Optimization runs on
// whatever state the polls have assembled, every cycle.
func (a *Agent) tick(ctx context.Context) {
	now := a.now()

	if now.Sub(a.lastInventoryCheck) >= a.cfg.InventoryCheckInterval {
		a.lastInventoryCheck = now
		a.runTask(ctx, "inventory_check", a.checkInventory)
	}
	if now.Sub(a.lastShipmentCheck) >= a.cfg.ShipmentCheckInterval {
		a.lastShipmentCheck = now
		a.runTask(ctx, "shipment_monitor", a.monitorShipments)
	}
	if now.Sub(a.lastWeatherCheck) >= a.cfg.WeatherCheckInterval {
		a.lastWeatherCheck = now
		a.runTask(ctx, "route_conditions", a.updateRouteConditions)
	}

	a.runTask(ctx, "optimize", a.optimize)
}

// runTask isolates one task: a failure is logged and alerted, then the
// loop moves on.
func (a *Agent) runTask(ctx context.Context, name string, task func(ctx context.Context) error) {
	if ctx.Err() != nil {
		return
	}

	start := a.now()
	err := task(ctx)
	if err == nil {
		a.log.Debug("task done", "task", name, "dur_ms", a.now().Sub(start).Milliseconds())
		return
	}

	a.log.Error("task failed", "task", name, "error", err)
	a.notify(ctx, "task_failure", domain.ChannelAlerts, domain.SeverityHigh,
		"agent task "+name+" failed: "+err.Error(),
		map[string]any{"task": name})
}

// warmStart preloads state from the short-lived cache so decisions don't
// wait for a full poll cycle after a restart. Cache trouble is not
// fatal; the polls rebuild everything anyway.
func (a *Agent) warmStart(ctx context.Context) {
	if a.deps.Cache == nil {
		return
	}

	warehouses, err := a.deps.Cache.LoadWarehouses(ctx)
	if err != nil {
		a.log.Warn("warm start: loading warehouses failed", "error", err)
	}
	for _, w := range warehouses {
		a.warehouses[w.ID] = w
	}

	shipments, err := a.deps.Cache.LoadShipments(ctx)
	if err != nil {
		a.log.Warn("warm start: loading shipments failed", "error", err)
	}
	for _, s := range shipments {
		a.shipments[s.ID] = s
	}

	if len(a.warehouses) > 0 || len(a.shipments) > 0 {
		a.log.Info("state warmed from cache",
			"warehouses", len(a.warehouses), "shipments", len(a.shipments))
	}
}

// distanceBetween resolves a warehouse-pair distance through the cache,
// asking the transport system only on a miss.
func (a *Agent) distanceBetween(ctx context.Context, origin, destination string) (float64, error) {
	if a.deps.Distances != nil {
		if r, ok, err := a.deps.Distances.Get(ctx, origin, destination); err != nil {
			a.log.Warn("distance cache read failed",
				"origin", origin, "destination", destination, "error", err)
		} else if ok {
			return r.DistanceKM, nil
		}
	}

	r, err := a.deps.Transport.EstimateDistance(ctx, origin, destination)
	if err != nil {
		return 0, err
	}

	if a.deps.Distances != nil {
		if err := a.deps.Distances.Put(ctx, origin, destination, r); err != nil {
			a.log.Warn("distance cache write failed",
				"origin", origin, "destination", destination, "error", err)
		}
	}
	return r.DistanceKM, nil
}

// notify publishes one notification; delivery failure is logged and
// swallowed so a broken sink can't wedge a task.
func (a *Agent) notify(ctx context.Context, kind, channel string, severity domain.Severity, message string, details map[string]any) {
	if a.deps.Notifier == nil {
		return
	}

	n := domain.Notification{
		ID:        "ntf_" + uuid.NewString(),
		Kind:      kind,
		Channel:   channel,
		Severity:  severity,
		Message:   message,
		Details:   details,
		CreatedAt: a.now().UTC(),
	}
	if err := a.deps.Notifier.Publish(ctx, n); err != nil {
		a.log.Error("notification delivery failed", "kind", kind, "error", err)
	}
}

// record appends one decision to the audit log. Audit failures are
// logged but never veto a decision already made.
func (a *Agent) record(ctx context.Context, kind, subject, reason string, details map[string]any, id string) {
	if a.deps.Store == nil {
		return
	}

	rec := domain.DecisionRecord{
		ID:        id,
		Kind:      kind,
		Subject:   subject,
		Reason:    reason,
		Details:   details,
		CreatedAt: a.now().UTC(),
	}
	if err := a.deps.Store.RecordDecision(ctx, rec); err != nil {
		a.log.Error("recording decision failed", "decision_id", id, "error", err)
	}
}
