package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
	"github.com/hbsurial/logistics-coordination-agent/internal/ports"
)

// Manager fans a notification out to every configured sink whose
// severity floor it meets. A sink failure is reported but never stops
// delivery to the remaining sinks.
type Manager struct {
	sinks []sink
	log   hclog.Logger
}

type sink struct {
	name   string
	target ports.Notifier
	floor  domain.Severity
}

func NewManager(log hclog.Logger) *Manager {
	return &Manager{log: log.Named("notify")}
}

// AddSink registers a delivery target. Notifications below floor are
// not sent to it.
func (m *Manager) AddSink(name string, target ports.Notifier, floor domain.Severity) {
	m.sinks = append(m.sinks, sink{name: name, target: target, floor: floor})
}

func (m *Manager) Publish(ctx context.Context, n domain.Notification) error {
	if len(m.sinks) == 0 {
		m.log.Debug("no notification sinks configured", "id", n.ID, "kind", n.Kind)
		return nil
	}

	var errs []error
	for _, s := range m.sinks {
		if severityRank(n.Severity) < severityRank(s.floor) {
			continue
		}
		if err := s.target.Publish(ctx, n); err != nil {
			m.log.Error("notification sink failed", "sink", s.name, "id", n.ID, "error", err)
			errs = append(errs, fmt.Errorf("sink %s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("publish notification %s: %w", n.ID, errors.Join(errs...))
	}
	return nil
}

func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityHigh:
		return 2
	case domain.SeverityMedium:
		return 1
	default:
		return 0
	}
}
