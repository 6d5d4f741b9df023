package domain

import "time"

// Weather observed along a route.
type WeatherConditions struct {
	Severe           bool
	VisibilityMeters int
	WindSpeedKMH     float64
	PrecipitationMM  float64
	Summary          string
}

// Road and infrastructure state along a route.
type RoadConditions struct {
	Closed          bool
	SevereDamage    bool
	Flooding        bool
	CongestionLevel int
}

// Disruption reason codes recorded on RouteConditions.
const (
	DisruptSevereWeather = "severe_weather"
	DisruptLowVisibility = "low_visibility"
	DisruptHighWinds     = "high_winds"
	DisruptRoadClosed    = "road_closed"
	DisruptRoadDamage    = "road_damage"
	DisruptFlooding      = "flooding"
)

// Snapshot of one route's conditions at UpdatedAt.
type RouteConditions struct {
	RouteID   string
	Weather   WeatherConditions
	Road      RoadConditions
	Disrupted bool
	Reason    string
	UpdatedAt time.Time
}

// Nominal extra travel time attributed to each disruption cause.
var disruptionDelays = map[string]time.Duration{
	DisruptSevereWeather: 2 * time.Hour,
	DisruptLowVisibility: 90 * time.Minute,
	DisruptHighWinds:     time.Hour,
	DisruptRoadClosed:    4 * time.Hour,
	DisruptRoadDamage:    3 * time.Hour,
	DisruptFlooding:      210 * time.Minute,
}

// EstimatedDelay returns the nominal delay for the recorded disruption
// cause, or zero when the route is clear.
func (r *RouteConditions) EstimatedDelay() time.Duration {
	if !r.Disrupted {
		return 0
	}
	if d, ok := disruptionDelays[r.Reason]; ok {
		return d
	}
	return time.Hour
}

// A candidate route between two locations, as offered by the transport
// system when rerouting.
type RouteOption struct {
	RouteID          string
	DurationHours    float64
	EstimatedArrival time.Time
	DistanceKM       float64
	FuelLiters       float64
}
