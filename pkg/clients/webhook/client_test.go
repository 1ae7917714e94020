package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/watermeter/internal/config"
)

func TestPostSendsJSONWithBearerToken(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(config.AlertsConfig{WebhookURL: server.URL, WebhookToken: "secret"})
	err := client.Post(context.Background(), map[string]any{"text": "hello"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "hello", gotBody["text"])
}

func TestPostSurfacesErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_payload"}`))
	}))
	defer server.Close()

	client := NewClient(config.AlertsConfig{WebhookURL: server.URL})
	err := client.Post(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=400")
	assert.Contains(t, err.Error(), "invalid_payload")
}

func TestPostFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewClient(config.AlertsConfig{WebhookURL: server.URL}).Post(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad Gateway")
}
