package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

// Webhook POSTs each notification to a configured HTTP endpoint.
type Webhook struct {
	url     string
	session *http.Client
	agent   string
	log     hclog.Logger
}

func NewWebhook(url, agentName string, timeout time.Duration, log hclog.Logger) (*Webhook, error) {
	if url == "" {
		return nil, errors.New("webhook notifier: url is required")
	}

	return &Webhook{
		url:     url,
		session: &http.Client{Timeout: timeout},
		agent:   agentName,
		log:     log.Named("notify-webhook"),
	}, nil
}

func (w *Webhook) Publish(ctx context.Context, n domain.Notification) error {
	envelope := struct {
		Source       string              `json:"source"`
		Notification domain.Notification `json:"notification"`
	}{w.agent, n}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("webhook notification %s: encode: %w", n.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook notification %s: build request: %w", n.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.session.Do(req)
	if err != nil {
		return fmt.Errorf("webhook notification %s: %w", n.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook notification %s: endpoint returned HTTP %d", n.ID, resp.StatusCode)
	}

	w.log.Debug("notification delivered", "id", n.ID, "channel", n.Channel, "kind", n.Kind)
	return nil
}
