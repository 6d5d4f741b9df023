package ports

import (
	"context"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// Port: a delivery channel for stakeholder notifications.
type Notifier interface {
	Publish(ctx context.Context, n domain.Notification) error
}
