package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
)

// TransportAPI talks to the transportation tracking system. Same auth
// scheme as the inventory connector.
type TransportAPI struct {
	c *client
}

func NewTransportAPI(cfg *config.Config, log hclog.Logger) (*TransportAPI, error) {
	if cfg.TransportAPIURL == "" || cfg.TransportAPIKey == "" || cfg.TransportAPISecret == "" {
		return nil, errors.New("transport api: TRANSPORT_API_URL, TRANSPORT_API_KEY and TRANSPORT_API_SECRET are required")
	}

	decorate := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+cfg.TransportAPIKey)
		req.Header.Set("X-API-Secret", cfg.TransportAPISecret)
	}

	return &TransportAPI{
		c: newClient(cfg.TransportAPIURL, cfg.APITimeout, cfg.APIRetryAttempts, cfg.APIRetryDelay, decorate, log.Named("transport-api")),
	}, nil
}

// FetchActiveShipments returns the raw active-shipment document.
func (a *TransportAPI) FetchActiveShipments(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := a.c.getJSON(ctx, "shipments/active", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch active shipments: %w", err)
	}
	return raw, nil
}

func (a *TransportAPI) RoadConditions(ctx context.Context, routeID string) (domain.RoadConditions, error) {
	var resp struct {
		Closed          bool `json:"closed"`
		SevereDamage    bool `json:"severe_damage"`
		Flooding        bool `json:"flooding"`
		CongestionLevel int  `json:"congestion_level"`
	}
	if err := a.c.getJSON(ctx, "routes/"+routeID+"/conditions", nil, &resp); err != nil {
		return domain.RoadConditions{}, fmt.Errorf("road conditions %s: %w", routeID, err)
	}
	return domain.RoadConditions{
		Closed:          resp.Closed,
		SevereDamage:    resp.SevereDamage,
		Flooding:        resp.Flooding,
		CongestionLevel: resp.CongestionLevel,
	}, nil
}

func (a *TransportAPI) AlternativeRoutes(ctx context.Context, origin, destination string) ([]domain.RouteOption, error) {
	query := url.Values{}
	query.Set("origin", origin)
	query.Set("destination", destination)

	var resp struct {
		Routes []struct {
			RouteID          string    `json:"route_id"`
			DurationHours    float64   `json:"estimated_duration_hours"`
			EstimatedArrival time.Time `json:"estimated_arrival"`
			DistanceKM       float64   `json:"distance_km"`
			FuelLiters       float64   `json:"fuel_consumption_liters"`
		} `json:"routes"`
	}
	if err := a.c.getJSON(ctx, "routes/alternatives", query, &resp); err != nil {
		return nil, fmt.Errorf("alternative routes %s -> %s: %w", origin, destination, err)
	}

	options := make([]domain.RouteOption, 0, len(resp.Routes))
	for _, r := range resp.Routes {
		options = append(options, domain.RouteOption{
			RouteID:          r.RouteID,
			DurationHours:    r.DurationHours,
			EstimatedArrival: r.EstimatedArrival,
			DistanceKM:       r.DistanceKM,
			FuelLiters:       r.FuelLiters,
		})
	}
	return options, nil
}

// UpdateRoute moves a shipment onto a different route.
func (a *TransportAPI) UpdateRoute(ctx context.Context, shipmentID, routeID string) error {
	body := struct {
		RouteID string `json:"route_id"`
	}{RouteID: routeID}

	if err := a.c.putJSON(ctx, "shipments/"+shipmentID+"/route", body); err != nil {
		return fmt.Errorf("update route for %s: %w", shipmentID, err)
	}
	return nil
}

// UpdateSchedule pushes a revised delivery slot for a shipment.
func (a *TransportAPI) UpdateSchedule(ctx context.Context, shipmentID string, s ports.ScheduleUpdate) error {
	body := struct {
		EstimatedArrival time.Time `json:"estimated_arrival"`
		WindowStart      time.Time `json:"delivery_window_start"`
		WindowEnd        time.Time `json:"delivery_window_end"`
	}{
		EstimatedArrival: s.EstimatedArrival,
		WindowStart:      s.WindowStart,
		WindowEnd:        s.WindowEnd,
	}

	if err := a.c.putJSON(ctx, "shipments/"+shipmentID+"/schedule", body); err != nil {
		return fmt.Errorf("update schedule for %s: %w", shipmentID, err)
	}
	return nil
}

func (a *TransportAPI) EstimateDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	query := url.Values{}
	query.Set("origin", origin)
	query.Set("destination", destination)

	var resp struct {
		DistanceKM      float64 `json:"distance_km"`
		DurationSeconds int     `json:"duration_seconds"`
	}
	if err := a.c.getJSON(ctx, "routes/distance", query, &resp); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("estimate distance %s -> %s: %w", origin, destination, err)
	}
	return ports.DistanceResult{
		DistanceKM:      resp.DistanceKM,
		DurationSeconds: resp.DurationSeconds,
	}, nil
}
