package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// RouteFinder supplies alternative routes between two locations.
type RouteFinder interface {
	AlternativeRoutes(ctx context.Context, origin, destination string) ([]domain.RouteOption, error)
}

// DistanceFunc returns the distance in kilometers between two locations.
type DistanceFunc func(ctx context.Context, origin, destination string) (float64, error)

// Engine evaluates normalized state against the configured thresholds and
// produces decisions. Every evaluation is deterministic for a given input:
// candidate orderings carry explicit tie-breaks.
type Engine struct {
	cfg      *config.Config
	log      hclog.Logger
	routes   RouteFinder
	distance DistanceFunc
}

func NewEngine(cfg *config.Config, log hclog.Logger, routes RouteFinder, distance DistanceFunc) *Engine {
	return &Engine{
		cfg:      cfg,
		log:      log.Named("decision"),
		routes:   routes,
		distance: distance,
	}
}

// EvaluateDisruption fills the Disrupted flag and reason on a route
// snapshot. Checks run weather first, then road state; the first
// condition that trips wins.
func (e *Engine) EvaluateDisruption(rc *domain.RouteConditions) {
	switch {
	case rc.Weather.Severe:
		rc.Disrupted, rc.Reason = true, domain.DisruptSevereWeather
	case rc.Weather.VisibilityMeters < e.cfg.MinVisibilityMeters:
		rc.Disrupted, rc.Reason = true, domain.DisruptLowVisibility
	case rc.Weather.WindSpeedKMH > float64(e.cfg.MaxWindSpeedKMH):
		rc.Disrupted, rc.Reason = true, domain.DisruptHighWinds
	case rc.Road.Closed:
		rc.Disrupted, rc.Reason = true, domain.DisruptRoadClosed
	case rc.Road.SevereDamage:
		rc.Disrupted, rc.Reason = true, domain.DisruptRoadDamage
	case rc.Road.Flooding:
		rc.Disrupted, rc.Reason = true, domain.DisruptFlooding
	default:
		rc.Disrupted, rc.Reason = false, ""
	}
}

// ShipmentIssues flags active shipments running behind their ETA.
// Shipments already being handled (rerouting, on hold) are skipped.
func (e *Engine) ShipmentIssues(shipments map[string]*domain.Shipment, now time.Time) []domain.ShipmentIssue {
	issues := make([]domain.ShipmentIssue, 0)

	ids := sortedKeys(shipments)
	for _, id := range ids {
		s := shipments[id]
		if s.Status == domain.StatusRerouting || s.Status == domain.StatusOnHold {
			continue
		}

		delay := s.Delay(now)
		if delay <= 0 {
			continue
		}

		severity := domain.SeverityMedium
		if s.Priority >= 8 {
			severity = domain.SeverityHigh
		}

		issues = append(issues, domain.ShipmentIssue{
			ShipmentID:  s.ID,
			Origin:      s.Origin,
			Destination: s.Destination,
			RouteID:     s.RouteID,
			Status:      s.Status,
			Delay:       delay,
			Priority:    s.Priority,
			Severity:    severity,
		})

		e.log.Warn("shipment behind schedule",
			"shipment_id", s.ID, "delay", delay.String(), "priority", s.Priority)
	}

	return issues
}

// PlanReroutes decides which delayed shipments to move onto a new route.
// A shipment is reroute-eligible when its current route is disrupted, or
// when its delay strictly exceeds the configured threshold; a delay of
// exactly the threshold does not qualify.
func (e *Engine) PlanReroutes(
	ctx context.Context,
	shipments map[string]*domain.Shipment,
	issues []domain.ShipmentIssue,
	routes map[string]*domain.RouteConditions,
) []domain.RerouteDecision {
	decisions := make([]domain.RerouteDecision, 0)

	for _, issue := range issues {
		s, ok := shipments[issue.ShipmentID]
		if !ok {
			continue
		}

		var reason string
		if rc, ok := routes[s.RouteID]; ok && rc.Disrupted {
			reason = domain.ReasonRouteDisruption
		} else if issue.Delay > e.cfg.RerouteDelayThreshold {
			reason = domain.ReasonSignificantDelay
		} else {
			continue
		}

		options, err := e.routes.AlternativeRoutes(ctx, s.Origin, s.Destination)
		if err != nil {
			e.log.Error("alternative route lookup failed",
				"shipment_id", s.ID, "err", err)
			continue
		}

		best, ok := selectRoute(options, s.RouteID, s.Priority, routes)
		if !ok {
			e.log.Warn("no alternative route available",
				"shipment_id", s.ID, "reason", reason)
			continue
		}

		decisions = append(decisions, domain.RerouteDecision{
			ID:         uuid.NewString(),
			ShipmentID: s.ID,
			OldRouteID: s.RouteID,
			NewRouteID: best.RouteID,
			NewETA:     best.EstimatedArrival,
			Reason:     reason,
		})
		e.log.Info("reroute decided",
			"shipment_id", s.ID, "old_route", s.RouteID,
			"new_route", best.RouteID, "reason", reason)
	}

	return decisions
}

// selectRoute picks the best candidate for the shipment's priority band:
// high priority minimizes travel time, medium balances time and fuel, low
// minimizes fuel. Known-disrupted candidates are excluded unless nothing
// else remains. Ties break on route ID.
func selectRoute(
	options []domain.RouteOption,
	currentRoute string,
	priority int,
	routes map[string]*domain.RouteConditions,
) (domain.RouteOption, bool) {
	candidates := make([]domain.RouteOption, 0, len(options))
	for _, o := range options {
		if o.RouteID == currentRoute {
			continue
		}
		if rc, ok := routes[o.RouteID]; ok && rc.Disrupted {
			continue
		}
		candidates = append(candidates, o)
	}
	if len(candidates) == 0 {
		for _, o := range options {
			if o.RouteID != currentRoute {
				candidates = append(candidates, o)
			}
		}
	}
	if len(candidates) == 0 {
		return domain.RouteOption{}, false
	}

	less := func(a, b domain.RouteOption) int {
		var c int
		switch {
		case priority >= 8:
			c = cmpFloat(a.DurationHours, b.DurationHours)
		case priority >= 5:
			if c = cmpFloat(a.DurationHours, b.DurationHours); c == 0 {
				c = cmpFloat(a.FuelLiters, b.FuelLiters)
			}
		default:
			c = cmpFloat(a.FuelLiters, b.FuelLiters)
		}
		if c == 0 {
			if a.RouteID < b.RouteID {
				return -1
			}
			if a.RouteID > b.RouteID {
				return 1
			}
		}
		return c
	}
	slices.SortFunc(candidates, less)

	return candidates[0], true
}

func cmpFloat(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// distanceBetween resolves a warehouse-pair distance, falling back to a
// large constant when the lookup fails so selection still terminates.
func (e *Engine) distanceBetween(ctx context.Context, origin, destination string) float64 {
	const unknownDistanceKM = 1000

	if e.distance == nil {
		return unknownDistanceKM
	}
	km, err := e.distance(ctx, origin, destination)
	if err != nil {
		e.log.Debug("distance lookup failed",
			"origin", origin, "destination", destination, "err", err)
		return unknownDistanceKM
	}
	return km
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func decisionID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString())
}
