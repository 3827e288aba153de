package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnowkids/minnow-push-api/config"
)

func TestGatewaySend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name": "projects/minnow-kids/messages/0:123"}`))
	}))
	defer srv.Close()

	g := &GatewayClient{Endpoint: srv.URL, HTTPClient: srv.Client()}

	msg := Message{
		Token:        "device-token",
		Notification: &Notification{Title: "Flash sale", Body: "40% off rompers"},
		Data:         map[string]string{"deeplink": "/sale", "campaignId": "abc"},
		Android:      &AndroidConfig{Priority: "high"},
		Webpush:      &WebpushConfig{FCMOptions: &WebpushFCMOptions{Link: "/sale"}},
	}
	err := g.Send(context.Background(), "bearer-123", msg)
	require.NoError(t, err)

	assert.Equal(t, "Bearer bearer-123", gotAuth)
	sent, ok := gotBody["message"]
	require.True(t, ok, "payload must wrap the message in a message envelope")
	assert.Equal(t, "device-token", sent.Token)
	assert.Equal(t, "Flash sale", sent.Notification.Title)
	assert.Equal(t, "/sale", sent.Data["deeplink"])
	assert.Equal(t, "high", sent.Android.Priority)
	assert.Equal(t, "/sale", sent.Webpush.FCMOptions.Link)
}

func TestGatewaySendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"status": "UNREGISTERED"}}`))
	}))
	defer srv.Close()

	g := &GatewayClient{Endpoint: srv.URL, HTTPClient: srv.Client()}

	err := g.Send(context.Background(), "bearer-123", Message{Token: "stale-token"})
	require.Error(t, err)

	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, http.StatusNotFound, sendErr.StatusCode)
	assert.Contains(t, sendErr.Body, "UNREGISTERED")
}

func TestNewGatewayClientEndpoint(t *testing.T) {
	g := NewGatewayClient(&config.Config{FCMProjectID: "minnow-kids"})
	assert.Equal(t, "https://fcm.googleapis.com/v1/projects/minnow-kids/messages:send", g.Endpoint)
}
