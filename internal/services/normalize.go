package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
)

// Normalizer cleans connector payloads into the domain model. External
// deployments emit several JSON shapes for the same data; individual
// records that fail to parse are skipped with a warning, never fatal.
type Normalizer struct {
	log hclog.Logger
}

func NewNormalizer(log hclog.Logger) *Normalizer {
	return &Normalizer{log: log.Named("normalize")}
}

// InventorySnapshot is the normalized result of one inventory poll.
type InventorySnapshot struct {
	// Items keyed by warehouse ID, then item ID.
	Items map[string]map[string]*domain.InventoryItem
	// Warehouse metadata, present only when the payload carried it.
	Info map[string]ports.WarehouseInfo
}

type wireItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	MinThreshold int    `json:"min_threshold"`
	MaxThreshold int    `json:"max_threshold"`
	LastUpdated  string `json:"last_updated"`
}

type wireWarehouse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Location string            `json:"location"`
	Capacity int               `json:"capacity"`
	Items    []json.RawMessage `json:"items"`
}

// Inventory normalizes an inventory poll document. Two shapes are
// accepted: an envelope {"warehouses": [...]} with embedded metadata, and
// a map of warehouse ID to item-ID-keyed items (bare or wrapped in an
// "inventory" key).
func (n *Normalizer) Inventory(raw json.RawMessage, now time.Time) (*InventorySnapshot, error) {
	snap := &InventorySnapshot{
		Items: map[string]map[string]*domain.InventoryItem{},
		Info:  map[string]ports.WarehouseInfo{},
	}

	var envelope struct {
		Warehouses []wireWarehouse                       `json:"warehouses"`
		Inventory  map[string]map[string]json.RawMessage `json:"inventory"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Warehouses) > 0 {
		for _, w := range envelope.Warehouses {
			if strings.TrimSpace(w.ID) == "" {
				n.log.Warn("skipping warehouse without id")
				continue
			}
			snap.Info[w.ID] = ports.WarehouseInfo{
				ID: w.ID, Name: w.Name, Location: w.Location, Capacity: w.Capacity,
			}
			items := map[string]*domain.InventoryItem{}
			for _, rawItem := range w.Items {
				item, ok := n.item(rawItem, now)
				if !ok {
					continue
				}
				items[item.ID] = item
			}
			snap.Items[w.ID] = items
		}
		return snap, nil
	}

	byWarehouse := envelope.Inventory
	if byWarehouse == nil {
		if err := json.Unmarshal(raw, &byWarehouse); err != nil {
			return nil, fmt.Errorf("normalize inventory: unrecognized payload shape: %w", err)
		}
	}

	for warehouseID, rawItems := range byWarehouse {
		items := map[string]*domain.InventoryItem{}
		for itemID, rawItem := range rawItems {
			item, ok := n.item(rawItem, now)
			if !ok {
				continue
			}
			if item.ID == "" {
				item.ID = itemID
			}
			items[item.ID] = item
		}
		snap.Items[warehouseID] = items
	}

	return snap, nil
}

func (n *Normalizer) item(raw json.RawMessage, now time.Time) (*domain.InventoryItem, bool) {
	var w wireItem
	if err := json.Unmarshal(raw, &w); err != nil {
		n.log.Warn("skipping unparseable inventory item", "err", err)
		return nil, false
	}

	item := &domain.InventoryItem{
		ID:           w.ID,
		Name:         w.Name,
		Category:     w.Category,
		Quantity:     w.Quantity,
		Unit:         w.Unit,
		MinThreshold: w.MinThreshold,
		MaxThreshold: w.MaxThreshold,
		UpdatedAt:    parseTime(w.LastUpdated, now),
	}
	if item.Unit == "" {
		item.Unit = "unit"
	}
	return item, true
}

type wireShipmentItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

type wireShipment struct {
	ID               string             `json:"id"`
	Origin           string             `json:"origin"`
	Destination      string             `json:"destination"`
	Items            []wireShipmentItem `json:"items"`
	Status           string             `json:"status"`
	Priority         int                `json:"priority"`
	Route            string             `json:"route"`
	EstimatedArrival string             `json:"estimated_arrival"`
	ActualArrival    string             `json:"actual_arrival"`
}

// Shipments normalizes a shipment poll document. Accepted shapes: an
// envelope {"shipments": [...]} and a map of shipment ID to shipment.
func (n *Normalizer) Shipments(raw json.RawMessage, now time.Time) ([]*domain.Shipment, error) {
	var envelope struct {
		Shipments []json.RawMessage `json:"shipments"`
	}
	var records []json.RawMessage

	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Shipments != nil {
		records = envelope.Shipments
	} else {
		var byID map[string]json.RawMessage
		if err := json.Unmarshal(raw, &byID); err != nil {
			return nil, fmt.Errorf("normalize shipments: unrecognized payload shape: %w", err)
		}
		for id, rec := range byID {
			if id == "shipments" {
				continue
			}
			records = append(records, rec)
		}
	}

	shipments := make([]*domain.Shipment, 0, len(records))
	for _, rec := range records {
		var w wireShipment
		if err := json.Unmarshal(rec, &w); err != nil {
			n.log.Warn("skipping unparseable shipment", "err", err)
			continue
		}
		if strings.TrimSpace(w.ID) == "" {
			n.log.Warn("skipping shipment without id")
			continue
		}

		status := domain.ShipmentStatus(w.Status)
		if !status.Valid() {
			if w.Status != "" {
				n.log.Warn("unknown shipment status", "shipment_id", w.ID, "status", w.Status)
			}
			status = domain.StatusPending
		}

		priority := w.Priority
		if priority < 1 || priority > 10 {
			priority = 5
		}

		items := make([]domain.ShipmentItem, 0, len(w.Items))
		for _, it := range w.Items {
			unit := it.Unit
			if unit == "" {
				unit = "unit"
			}
			items = append(items, domain.ShipmentItem{
				ID: it.ID, Name: it.Name, Quantity: it.Quantity, Unit: unit,
			})
		}

		shipments = append(shipments, &domain.Shipment{
			ID:               w.ID,
			Origin:           w.Origin,
			Destination:      w.Destination,
			Items:            items,
			Status:           status,
			Priority:         priority,
			RouteID:          w.Route,
			EstimatedArrival: parseTimeZero(w.EstimatedArrival),
			ActualArrival:    parseTimeZero(w.ActualArrival),
			UpdatedAt:        now,
		})
	}

	return shipments, nil
}

// parseTime accepts RFC 3339 timestamps and falls back to the poll time.
func parseTime(s string, fallback time.Time) time.Time {
	if t := parseTimeZero(s); !t.IsZero() {
		return t
	}
	return fallback
}

func parseTimeZero(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
