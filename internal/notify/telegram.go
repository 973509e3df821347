package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier mirrors notifications into a Telegram chat through a bot.
type TelegramNotifier struct {
	apiURL     string
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewTelegramNotifier builds a Telegram notifier with the supplied credentials.
func NewTelegramNotifier(botToken, chatID string, timeout time.Duration) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramNotifier{
		apiURL:     telegramAPI,
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Notify sends the notification as a plain text message to the configured chat.
func (t *TelegramNotifier) Notify(ctx context.Context, n Notification) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken)
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", renderMessage(n))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &DeliveryError{
			Provider:   "telegram",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func renderMessage(n Notification) string {
	var sb strings.Builder
	sb.WriteString(n.Value1)
	sb.WriteString("\n")
	sb.WriteString(n.Value2)
	sb.WriteString("\n")
	sb.WriteString(n.Value3)
	return sb.String()
}
