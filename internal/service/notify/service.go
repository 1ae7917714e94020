package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
	"github.com/mamadbah2/watermeter/internal/metrics"
	client "github.com/mamadbah2/watermeter/pkg/clients/webhook"
)

// Notifier delivers the periodic alert digest.
type Notifier interface {
	SendDigest(ctx context.Context, day time.Time, alerts []models.HomeAlert) error
}

// WebhookNotifier posts the digest to an incoming webhook.
type WebhookNotifier struct {
	client  client.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

type digestPayload struct {
	Text   string             `json:"text"`
	Date   string             `json:"date"`
	Alerts []models.HomeAlert `json:"alerts"`
}

// NewWebhookNotifier wires a new notifier instance.
func NewWebhookNotifier(c client.Client, m *metrics.Metrics, logger *zap.Logger) *WebhookNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{client: c, metrics: m, logger: logger}
}

// SendDigest posts one message listing every alerting home. Nothing is sent
// when there are no alerts.
func (n *WebhookNotifier) SendDigest(ctx context.Context, day time.Time, alerts []models.HomeAlert) error {
	if len(alerts) == 0 {
		n.logger.Debug("no alerts, digest skipped")
		return nil
	}
	if n.client == nil {
		return errors.New("alert webhook client is not configured")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := n.client.Post(ctxWithTimeout, digestPayload{
		Text:   FormatDigest(day, alerts),
		Date:   day.Format(models.DateLayout),
		Alerts: alerts,
	})
	n.metrics.IncDigest(err)
	if err != nil {
		return fmt.Errorf("send alert digest: %w", err)
	}

	n.logger.Info("alert digest sent", zap.Int("homes", len(alerts)))
	return nil
}

// FormatDigest renders the alerts as a plain text message, one line per home
// in the order given.
func FormatDigest(day time.Time, alerts []models.HomeAlert) string {
	var critical int
	for _, a := range alerts {
		if a.Status == models.AlertCritical {
			critical++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Water usage alerts for %s: %d homes over threshold (%d critical).",
		day.Format(models.DateLayout), len(alerts), critical)
	for _, a := range alerts {
		fmt.Fprintf(&b, "\n[%s] %s: %.1f L of %.1f L (%.2f%%)",
			strings.ToUpper(string(a.Status)), a.HomeName, a.Consumption, a.Limit, a.PercentageUsed)
	}
	return b.String()
}
