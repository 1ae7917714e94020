package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/watermeter/internal/config"
)

// Client posts JSON payloads to an incoming-webhook endpoint.
type Client interface {
	Post(ctx context.Context, payload any) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.AlertsConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.WebhookToken != "" {
		restyClient.SetAuthToken(cfg.WebhookToken)
	}

	return &APIClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// apiError is the error body most webhook receivers return.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Post sends payload as JSON and fails on any non-2xx response.
func (c *APIClient) Post(ctx context.Context, payload any) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
