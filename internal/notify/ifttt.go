package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// IFTTTNotifier fires a Maker Webhooks trigger with the three notification values.
type IFTTTNotifier struct {
	url        string
	httpClient *http.Client
}

// TriggerURL expands the {event} and {key} placeholders of triggerPath and
// joins the result to baseURL.
func TriggerURL(baseURL, triggerPath, event, key string) string {
	path := strings.NewReplacer(
		"{event}", url.PathEscape(event),
		"{key}", url.PathEscape(key),
	).Replace(triggerPath)
	return strings.TrimRight(baseURL, "/") + path
}

// NewIFTTTNotifier builds a notifier posting to the trigger for event, authenticated by key.
func NewIFTTTNotifier(baseURL, triggerPath, event, key string, timeout time.Duration) *IFTTTNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IFTTTNotifier{
		url:        TriggerURL(baseURL, triggerPath, event, key),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Notify posts {"value1","value2","value3"} as JSON to the trigger URL.
func (n *IFTTTNotifier) Notify(ctx context.Context, notification Notification) error {
	raw, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal ifttt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build ifttt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		// The URL embeds the secret key; keep it out of logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("send ifttt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &DeliveryError{
			Provider:   "ifttt",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
