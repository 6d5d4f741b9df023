package domain

import "time"

// Notification channels routed by the communication layer.
const (
	ChannelAlerts    = "alerts"
	ChannelShipments = "shipments"
	ChannelInventory = "inventory"
	ChannelRoutes    = "routes"
)

// A stakeholder-facing event emitted by the agent.
type Notification struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Channel   string         `json:"channel"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
