package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// NotifyLevel severity of a notification
type NotifyLevel string

const (
	NotifyInfo     NotifyLevel = "info"
	NotifyWarning  NotifyLevel = "warning"
	NotifyCritical NotifyLevel = "critical"
)

// Notifier is the external notification collaborator. Fire-and-forget:
// delivery failures are swallowed and logged, never propagated to the
// operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, level NotifyLevel, title, component, description string, actionRequired bool, actionDescription string)
}

// WebhookNotifier posts notifications to a configured webhook and
// always logs them. An empty URL degrades to log-only.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier; url may be empty
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type notifyPayload struct {
	Level             NotifyLevel `json:"level"`
	Title             string      `json:"title"`
	Component         string      `json:"component"`
	Description       string      `json:"description"`
	ActionRequired    bool        `json:"action_required"`
	ActionDescription string      `json:"action_description,omitempty"`
	Timestamp         time.Time   `json:"timestamp"`
}

// Notify logs the notification and posts it to the webhook if configured
func (n *WebhookNotifier) Notify(ctx context.Context, level NotifyLevel, title, component, description string, actionRequired bool, actionDescription string) {
	event := pkglogger.GetLogger().Info()
	if level == NotifyCritical {
		event = pkglogger.GetLogger().Error()
	} else if level == NotifyWarning {
		event = pkglogger.GetLogger().Warn()
	}
	event.
		Str("component", component).
		Str("title", title).
		Bool("action_required", actionRequired).
		Msg(description)

	if n.url == "" {
		return
	}

	payload := notifyPayload{
		Level:             level,
		Title:             title,
		Component:         component,
		Description:       description,
		ActionRequired:    actionRequired,
		ActionDescription: actionDescription,
		Timestamp:         time.Now(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("notification encode failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("notification request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("notification delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		pkglogger.GetLogger().Warn().Int("status", resp.StatusCode).Msg("notification delivery rejected")
	}
}
