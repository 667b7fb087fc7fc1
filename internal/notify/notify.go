// Package notify delivers engine events to an external push gateway over a
// webhook. Delivery is fire-and-forget: the engine's transitions never wait
// on, or fail because of, the gateway.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tandem-app/tandem/internal/logger"
)

// Payload is the wire shape posted to the gateway.
type Payload struct {
	UserID  string            `json:"user_id"`
	Event   string            `json:"event"`
	Context map[string]string `json:"context,omitempty"`
}

// Webhook posts events to a configured gateway URL, authenticated with a
// shared secret header. Construct one at startup and hand it to the engine;
// there is no package-level client.
type Webhook struct {
	url    string
	secret string
	client *http.Client
}

func NewWebhook(url, secret string) *Webhook {
	return &Webhook{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Dispatch sends the event asynchronously. Transient gateway failures are
// retried once; anything else is logged and dropped.
func (w *Webhook) Dispatch(userID, event string, context map[string]string) {
	if w.url == "" {
		return
	}

	go func() {
		payload := Payload{UserID: userID, Event: event, Context: context}
		if err := w.post(payload); err != nil {
			// One retry covers a dropped connection; beyond that the event
			// is best-effort by contract.
			if err = w.post(payload); err != nil {
				logger.Warn("Notification dropped", "user", userID, "event", event, "error", err)
			}
		}
	}()
}

func (w *Webhook) post(payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set("X-Tandem-Secret", w.secret)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
