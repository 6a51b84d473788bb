package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// NotifyAction is a button the gateway renders under a notification. The
// gateway echoes Verb and EntityID back on the matching callback route.
type NotifyAction struct {
	Label    string `json:"label"`
	Verb     string `json:"verb"`
	EntityID string `json:"entity_id"`
}

// Notifier delivers messages to accounts through the chat-platform gateway.
// Delivery is always best-effort: callers log failures and move on, and
// never call Notify inside an open transaction.
type Notifier interface {
	Notify(externalID, text string, actions []NotifyAction) error
}

// GatewayNotifier posts notifications to the gateway's notify endpoint.
type GatewayNotifier struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewGatewayNotifier builds a notifier from NOTIFY_URL / SUPPORT_SERVICE_TOKEN.
// Returns a no-op notifier when NOTIFY_URL is unset so local runs work.
func NewGatewayNotifier() Notifier {
	baseURL := os.Getenv("NOTIFY_URL")
	if baseURL == "" {
		log.Println("⚠️  NOTIFY_URL not set — notifications disabled")
		return NopNotifier{}
	}
	return &GatewayNotifier{
		BaseURL: baseURL,
		Token:   os.Getenv("SUPPORT_SERVICE_TOKEN"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *GatewayNotifier) Notify(externalID, text string, actions []NotifyAction) error {
	payload := struct {
		UserID  string         `json:"user_id"`
		Text    string         `json:"text"`
		Actions []NotifyAction `json:"actions,omitempty"`
	}{UserID: externalID, Text: text, Actions: actions}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequest("POST", n.BaseURL+"/notify", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", n.Token)

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

// NopNotifier swallows notifications; used in tests and unconfigured runs.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string, []NotifyAction) error { return nil }

// notifyQuietly sends a notification and logs failures. State has already
// committed by the time this runs, so errors must never propagate upward.
func notifyQuietly(n Notifier, externalID, text string, actions []NotifyAction) {
	if externalID == "" {
		return
	}
	if err := n.Notify(externalID, text, actions); err != nil {
		log.Printf("⚠️  Failed to notify %s: %v", externalID, err)
	}
}
