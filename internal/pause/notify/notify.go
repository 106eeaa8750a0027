// Package notify delivers adverse-event notifications. The real delivery
// infrastructure (email/push/sms) lives outside this service; the HTTP
// notifier forwards to it, the log notifier covers deployments without one.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/circuit"
)

// HTTPNotifier forwards notifications to the delivery service.
type HTTPNotifier struct {
	url  string
	http *http.Client
}

func NewHTTP(url string) *HTTPNotifier {
	return &HTTPNotifier{
		url:  strings.TrimRight(url, "/") + "/notify",
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, clientID id.ClientID, channels []models.Channel, message string) error {
	payload, err := json.Marshal(map[string]any{
		"client_id": clientID.String(),
		"channels":  channels,
		"message":   message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("notifier unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notifier returned %d", resp.StatusCode)
	}
	return nil
}

// FallbackNotifier tries the primary notifier and falls back on failure.
// A circuit breaker tracks the primary's health so outages are logged once
// on open and once on recovery instead of on every notification.
type FallbackNotifier struct {
	primary  ports.Notifier
	fallback ports.Notifier
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func WithFallback(primary, fallback ports.Notifier, logger *slog.Logger) *FallbackNotifier {
	return &FallbackNotifier{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("notifier", circuit.WithFailureThreshold(3)),
		logger:   logger,
	}
}

func (n *FallbackNotifier) Notify(ctx context.Context, clientID id.ClientID, channels []models.Channel, message string) error {
	err := n.primary.Notify(ctx, clientID, channels, message)
	if err == nil {
		if _, change := n.breaker.RecordSuccess(); change.Closed {
			n.logger.InfoContext(ctx, "notifier circuit closed")
		}
		return nil
	}

	if _, change := n.breaker.RecordFailure(); change.Opened {
		n.logger.WarnContext(ctx, "notifier circuit opened", "error", err.Error())
	}
	return n.fallback.Notify(ctx, clientID, channels, message)
}

// LogNotifier records notifications in the log only. Used when no delivery
// service is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, clientID id.ClientID, channels []models.Channel, message string) error {
	n.logger.InfoContext(ctx, "notification dispatched (log only)",
		"client_id", clientID.String(),
		"channels", channels,
		"message", message,
	)
	return nil
}
