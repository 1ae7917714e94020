package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

type recordingClient struct {
	payloads []any
	err      error
}

func (c *recordingClient) Post(_ context.Context, payload any) error {
	c.payloads = append(c.payloads, payload)
	return c.err
}

var digestDay = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func sampleAlerts() []models.HomeAlert {
	return []models.HomeAlert{
		{HomeID: "a", HomeName: "Home A", Consumption: 120, Limit: 100, PercentageUsed: 120, Status: models.AlertCritical},
		{HomeID: "b", HomeName: "Home B", Consumption: 85, Limit: 100, PercentageUsed: 85, Status: models.AlertWarning},
	}
}

func TestFormatDigest(t *testing.T) {
	text := FormatDigest(digestDay, sampleAlerts())

	assert.Equal(t, "Water usage alerts for 2024-06-01: 2 homes over threshold (1 critical).\n"+
		"[CRITICAL] Home A: 120.0 L of 100.0 L (120.00%)\n"+
		"[WARNING] Home B: 85.0 L of 100.0 L (85.00%)", text)
}

func TestSendDigestPostsPayload(t *testing.T) {
	c := &recordingClient{}
	n := NewWebhookNotifier(c, nil, zap.NewNop())

	require.NoError(t, n.SendDigest(context.Background(), digestDay, sampleAlerts()))
	require.Len(t, c.payloads, 1)

	payload, ok := c.payloads[0].(digestPayload)
	require.True(t, ok)
	assert.Equal(t, "2024-06-01", payload.Date)
	assert.Len(t, payload.Alerts, 2)
	assert.Contains(t, payload.Text, "Home A")
}

func TestSendDigestSkipsEmptyAlertList(t *testing.T) {
	c := &recordingClient{}
	n := NewWebhookNotifier(c, nil, nil)

	require.NoError(t, n.SendDigest(context.Background(), digestDay, nil))
	assert.Empty(t, c.payloads)
}

func TestSendDigestWrapsClientError(t *testing.T) {
	boom := errors.New("502")
	n := NewWebhookNotifier(&recordingClient{err: boom}, nil, zap.NewNop())

	err := n.SendDigest(context.Background(), digestDay, sampleAlerts())
	assert.ErrorIs(t, err, boom)
}

func TestSendDigestWithoutClient(t *testing.T) {
	n := NewWebhookNotifier(nil, nil, zap.NewNop())
	assert.Error(t, n.SendDigest(context.Background(), digestDay, sampleAlerts()))
}
