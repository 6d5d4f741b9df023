package connectors

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// Visibility reported when the service omits the field.
const clearVisibilityMeters = 10000

// WeatherAPI talks to the weather data service. The service authenticates
// with a key query parameter rather than headers.
type WeatherAPI struct {
	c      *client
	apiKey string
}

func NewWeatherAPI(cfg *config.Config, log hclog.Logger) (*WeatherAPI, error) {
	if cfg.WeatherAPIURL == "" || cfg.WeatherAPIKey == "" {
		return nil, errors.New("weather api: WEATHER_API_URL and WEATHER_API_KEY are required")
	}

	return &WeatherAPI{
		c:      newClient(cfg.WeatherAPIURL, cfg.APITimeout, cfg.APIRetryAttempts, cfg.APIRetryDelay, nil, log.Named("weather-api")),
		apiKey: cfg.WeatherAPIKey,
	}, nil
}

func (a *WeatherAPI) RouteConditions(ctx context.Context, routeID string) (domain.WeatherConditions, error) {
	query := url.Values{}
	query.Set("key", a.apiKey)

	var resp struct {
		SevereWeather    bool    `json:"severe_weather"`
		VisibilityMeters *int    `json:"visibility_meters"`
		WindSpeedKMH     float64 `json:"wind_speed_kmh"`
		PrecipitationMM  float64 `json:"precipitation_mm"`
		Summary          string  `json:"summary"`
	}
	if err := a.c.getJSON(ctx, "conditions/route/"+routeID, query, &resp); err != nil {
		return domain.WeatherConditions{}, fmt.Errorf("weather conditions %s: %w", routeID, err)
	}

	// A payload without a visibility reading means no restriction, not
	// zero visibility.
	visibility := clearVisibilityMeters
	if resp.VisibilityMeters != nil {
		visibility = *resp.VisibilityMeters
	}

	return domain.WeatherConditions{
		Severe:           resp.SevereWeather,
		VisibilityMeters: visibility,
		WindSpeedKMH:     resp.WindSpeedKMH,
		PrecipitationMM:  resp.PrecipitationMM,
		Summary:          resp.Summary,
	}, nil
}
