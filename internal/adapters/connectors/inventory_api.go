package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
)

// InventoryAPI talks to the inventory management system. Requests carry
// the API key as a bearer token and the shared secret in X-API-Secret.
type InventoryAPI struct {
	c         *client
	agentName string
}

func NewInventoryAPI(cfg *config.Config, log hclog.Logger) (*InventoryAPI, error) {
	if cfg.InventoryAPIURL == "" || cfg.InventoryAPIKey == "" || cfg.InventoryAPISecret == "" {
		return nil, errors.New("inventory api: INVENTORY_API_URL, INVENTORY_API_KEY and INVENTORY_API_SECRET are required")
	}

	decorate := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+cfg.InventoryAPIKey)
		req.Header.Set("X-API-Secret", cfg.InventoryAPISecret)
	}

	return &InventoryAPI{
		c:         newClient(cfg.InventoryAPIURL, cfg.APITimeout, cfg.APIRetryAttempts, cfg.APIRetryDelay, decorate, log.Named("inventory-api")),
		agentName: cfg.AgentName,
	}, nil
}

// FetchInventory returns the raw inventory document for all warehouses.
func (a *InventoryAPI) FetchInventory(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := a.c.getJSON(ctx, "inventory", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	return raw, nil
}

func (a *InventoryAPI) WarehouseInfo(ctx context.Context, warehouseID string) (ports.WarehouseInfo, error) {
	var info ports.WarehouseInfo
	if err := a.c.getJSON(ctx, "warehouses/"+warehouseID, nil, &info); err != nil {
		return ports.WarehouseInfo{}, fmt.Errorf("warehouse info %s: %w", warehouseID, err)
	}
	return info, nil
}

// CreateTransfer submits an inventory transfer and returns its ID.
func (a *InventoryAPI) CreateTransfer(ctx context.Context, req ports.TransferRequest) (string, error) {
	type transferItem struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Unit     string `json:"unit"`
	}
	body := struct {
		SourceWarehouse      string         `json:"source_warehouse"`
		DestinationWarehouse string         `json:"destination_warehouse"`
		Items                []transferItem `json:"items"`
		RequestedBy          string         `json:"requested_by"`
		Reason               string         `json:"reason"`
	}{
		SourceWarehouse:      req.SourceID,
		DestinationWarehouse: req.Destination,
		RequestedBy:          a.agentName,
		Reason:               req.Reason,
	}
	for _, it := range req.Items {
		body.Items = append(body.Items, transferItem{
			ID: it.ID, Name: it.Name, Quantity: it.Quantity, Unit: it.Unit,
		})
	}

	var resp struct {
		TransferID string `json:"transfer_id"`
	}
	if err := a.c.postJSON(ctx, "transfers", body, &resp); err != nil {
		return "", fmt.Errorf("create transfer: %w", err)
	}
	if resp.TransferID == "" {
		return "", errors.New("create transfer: no transfer_id in response")
	}
	return resp.TransferID, nil
}
