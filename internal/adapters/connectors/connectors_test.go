package connectors

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
)

func connectorConfig(url string) *config.Config {
	return &config.Config{
		AgentName: "TestCoordinator",

		InventoryAPIURL: url, InventoryAPIKey: "inv-key", InventoryAPISecret: "inv-secret",
		TransportAPIURL: url, TransportAPIKey: "tr-key", TransportAPISecret: "tr-secret",
		WeatherAPIURL: url, WeatherAPIKey: "wx-key",

		APITimeout:       5 * time.Second,
		APIRetryAttempts: 3,
		APIRetryDelay:    time.Millisecond,
	}
}

func TestInventoryAPIAuthHeaders(t *testing.T) {
	var gotAuth, gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSecret = r.Header.Get("X-API-Secret")
		io.WriteString(w, `{"warehouses": []}`)
	}))
	defer srv.Close()

	api, err := NewInventoryAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewInventoryAPI: %v", err)
	}
	if _, err := api.FetchInventory(context.Background()); err != nil {
		t.Fatalf("FetchInventory: %v", err)
	}

	if gotAuth != "Bearer inv-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotSecret != "inv-secret" {
		t.Errorf("X-API-Secret = %q", gotSecret)
	}
}

func TestInventoryAPICreateTransfer(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"transfer_id": "tr_42"}`)
	}))
	defer srv.Close()

	api, err := NewInventoryAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewInventoryAPI: %v", err)
	}

	id, err := api.CreateTransfer(context.Background(), ports.TransferRequest{
		SourceID:    "wh_src",
		Destination: "wh_dst",
		Items:       []domain.ShipmentItem{{ID: "bolts", Name: "Bolts", Quantity: 10, Unit: "box"}},
		Reason:      "inventory_below_threshold",
	})
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}
	if id != "tr_42" {
		t.Errorf("transfer id = %q", id)
	}
	if gotPath != "POST /transfers" {
		t.Errorf("request = %q", gotPath)
	}
	if gotBody["source_warehouse"] != "wh_src" || gotBody["destination_warehouse"] != "wh_dst" {
		t.Errorf("body = %v", gotBody)
	}
	if gotBody["requested_by"] != "TestCoordinator" {
		t.Errorf("requested_by = %v", gotBody["requested_by"])
	}
}

func TestCreateTransferRejectsEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	api, _ := NewInventoryAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	if _, err := api.CreateTransfer(context.Background(), ports.TransferRequest{}); err == nil {
		t.Fatal("expected an error when the response has no transfer_id")
	}
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"shipments": []}`)
	}))
	defer srv.Close()

	api, err := NewTransportAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewTransportAPI: %v", err)
	}
	if _, err := api.FetchActiveShipments(context.Background()); err != nil {
		t.Fatalf("FetchActiveShipments after retries: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("server saw %d attempts, want 3", attempts)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	api, _ := NewTransportAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	if _, err := api.FetchActiveShipments(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("a 401 must not be retried, server saw %d attempts", attempts)
	}
}

func TestTransportAlternativeRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/routes/alternatives" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("origin") != "a" || r.URL.Query().Get("destination") != "b" {
			t.Errorf("query = %v", r.URL.Query())
		}
		io.WriteString(w, `{"routes": [
			{"route_id": "r9", "estimated_duration_hours": 3.5,
			 "distance_km": 280, "fuel_consumption_liters": 95}
		]}`)
	}))
	defer srv.Close()

	api, _ := NewTransportAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	options, err := api.AlternativeRoutes(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("AlternativeRoutes: %v", err)
	}
	if len(options) != 1 {
		t.Fatalf("got %d options", len(options))
	}
	if options[0].RouteID != "r9" || options[0].DurationHours != 3.5 || options[0].FuelLiters != 95 {
		t.Errorf("option = %+v", options[0])
	}
}

func TestTransportUpdateRoute(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	api, _ := NewTransportAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	if err := api.UpdateRoute(context.Background(), "shp_1", "r2"); err != nil {
		t.Fatalf("UpdateRoute: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/shipments/shp_1/route" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["route_id"] != "r2" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestWeatherAPIKeyParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conditions/route/r1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "wx-key" {
			t.Errorf("missing key param: %v", r.URL.Query())
		}
		io.WriteString(w, `{"severe_weather": true, "visibility_meters": 120,
			"wind_speed_kmh": 60.5, "summary": "thunderstorm"}`)
	}))
	defer srv.Close()

	api, err := NewWeatherAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewWeatherAPI: %v", err)
	}
	got, err := api.RouteConditions(context.Background(), "r1")
	if err != nil {
		t.Fatalf("RouteConditions: %v", err)
	}
	want := domain.WeatherConditions{Severe: true, VisibilityMeters: 120, WindSpeedKMH: 60.5, Summary: "thunderstorm"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestWeatherMissingVisibilityMeansClear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"severe_weather": false, "wind_speed_kmh": 10}`)
	}))
	defer srv.Close()

	api, err := NewWeatherAPI(connectorConfig(srv.URL), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewWeatherAPI: %v", err)
	}
	got, err := api.RouteConditions(context.Background(), "r1")
	if err != nil {
		t.Fatalf("RouteConditions: %v", err)
	}
	if got.VisibilityMeters != 10000 {
		t.Fatalf("visibility without a reading = %d, want 10000", got.VisibilityMeters)
	}

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"severe_weather": false, "visibility_meters": 0, "wind_speed_kmh": 10}`)
	}))
	defer srv2.Close()

	api2, _ := NewWeatherAPI(connectorConfig(srv2.URL), hclog.NewNullLogger())
	got2, err := api2.RouteConditions(context.Background(), "r1")
	if err != nil {
		t.Fatalf("RouteConditions: %v", err)
	}
	if got2.VisibilityMeters != 0 {
		t.Fatalf("an explicit zero reading must survive, got %d", got2.VisibilityMeters)
	}
}

func TestConnectorsRequireCredentials(t *testing.T) {
	cfg := &config.Config{}
	if _, err := NewInventoryAPI(cfg, hclog.NewNullLogger()); err == nil {
		t.Error("inventory connector must reject empty credentials")
	}
	if _, err := NewTransportAPI(cfg, hclog.NewNullLogger()); err == nil {
		t.Error("transport connector must reject empty credentials")
	}
	if _, err := NewWeatherAPI(cfg, hclog.NewNullLogger()); err == nil {
		t.Error("weather connector must reject empty credentials")
	}
}
