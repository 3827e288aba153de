package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minnowkids/minnow-push-api/config"
)

// Message is the per-recipient payload posted to the gateway's send endpoint
type Message struct {
	Token        string            `json:"token"`
	Notification *Notification     `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *AndroidConfig    `json:"android,omitempty"`
	Webpush      *WebpushConfig    `json:"webpush,omitempty"`
}

// Notification is the visible block of a push message
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
}

// AndroidConfig carries mobile delivery hints
type AndroidConfig struct {
	Priority string `json:"priority,omitempty"`
}

// WebpushConfig carries browser delivery hints
type WebpushConfig struct {
	FCMOptions *WebpushFCMOptions `json:"fcm_options,omitempty"`
}

// WebpushFCMOptions sets the click-through link for web notifications
type WebpushFCMOptions struct {
	Link string `json:"link,omitempty"`
}

// SendError is a non-2xx response from the gateway; the body is preserved so
// the dispatch engine can record it on the delivery row
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("push gateway returned status %d: %s", e.StatusCode, e.Body)
}

// Sender delivers one message to one recipient
type Sender interface {
	Send(ctx context.Context, bearerToken string, msg Message) error
}

// GatewayClient posts messages to the FCM v1 per-project send endpoint
type GatewayClient struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewGatewayClient builds a client for the project configured in conf
func NewGatewayClient(conf *config.Config) *GatewayClient {
	return &GatewayClient{
		Endpoint:   fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", conf.FCMProjectID),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts one message with the bearer token. A non-2xx response returns a
// *SendError carrying the response body.
func (g *GatewayClient) Send(ctx context.Context, bearerToken string, msg Message) error {
	payload, err := json.Marshal(map[string]Message{"message": msg})
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &SendError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
