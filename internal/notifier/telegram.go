package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dyli/olx-iphone-bot/internal/models"
)

const telegramAPIBase = "https://api.telegram.org"

// Client posts listing alerts to a Telegram chat via the Bot API. A
// client with an empty bot token is a no-op sender that only logs, so
// the pipeline behaves the same with notifications switched off.
type Client struct {
	botToken           string
	chatID             string
	maxMessageLength   int
	includeDescription bool
	httpClient         *http.Client
	rateLimiter        *rate.Limiter
	apiBase            string
}

func New(botToken, chatID string, maxMessageLength int, includeDescription bool) *Client {
	return &Client{
		botToken:           botToken,
		chatID:             chatID,
		maxMessageLength:   maxMessageLength,
		includeDescription: includeDescription,
		httpClient:         &http.Client{Timeout: 10 * time.Second},
		// Telegram allows ~1 msg/sec per chat; stay under it.
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
		apiBase:     telegramAPIBase,
	}
}

// NewWithAPIBase overrides the Bot API endpoint; used by tests.
func NewWithAPIBase(botToken, chatID string, maxMessageLength int, includeDescription bool, apiBase string) *Client {
	c := New(botToken, chatID, maxMessageLength, includeDescription)
	c.apiBase = apiBase
	return c
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send delivers one listing alert. Retries on 429 (honoring Retry-After)
// and 5xx; other client errors fail immediately.
func (c *Client) Send(ctx context.Context, listing models.Listing) error {
	message := c.formatMessage(listing)

	if c.botToken == "" || c.chatID == "" {
		slog.Info("Telegram disabled, logging match instead", "title", listing.Title, "price", listing.Price, "url", listing.URL)
		return nil
	}

	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		retryAfter, err := c.post(ctx, message)
		if err == nil {
			slog.Info("Notification sent", "model", listing.Variant.String(), "price", listing.Price, "url", listing.URL)
			return nil
		}
		lastErr = err
		if retryAfter < 0 {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}
		slog.Warn("Telegram send failed, retrying", "attempt", attempt+1, "wait", retryAfter, "error", err)
		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("failed to send Telegram message after %d attempts: %w", maxAttempts, lastErr)
}

// post performs one sendMessage call. On retryable failure it returns
// the wait before the next attempt; a negative duration means do not
// retry.
func (c *Client) post(ctx context.Context, text string) (time.Duration, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return -1, err
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: false,
	})
	if err != nil {
		return -1, fmt.Errorf("failed to marshal Telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return -1, fmt.Errorf("failed to create Telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 2 * time.Second, fmt.Errorf("telegram request failed: %w", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

	switch {
	case res.StatusCode == http.StatusOK:
		return 0, nil
	case res.StatusCode == http.StatusTooManyRequests:
		wait := 2 * time.Second
		if s := res.Header.Get("Retry-After"); s != "" {
			if secs, parseErr := strconv.Atoi(s); parseErr == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
		return wait, fmt.Errorf("telegram rate limited: status %d", res.StatusCode)
	case res.StatusCode >= 500:
		return 2 * time.Second, fmt.Errorf("telegram server error: status %d", res.StatusCode)
	default:
		return -1, fmt.Errorf("telegram rejected message: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
}

// formatMessage renders the alert text and enforces the length cap.
func (c *Client) formatMessage(listing models.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📱 *%s*\n", listing.Variant.String())
	fmt.Fprintf(&b, "💰 %.2f zł\n", listing.Price)
	fmt.Fprintf(&b, "📝 %s\n", listing.Title)
	if c.includeDescription && listing.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", listing.Description)
	}
	fmt.Fprintf(&b, "\n🔗 %s", listing.URL)

	message := b.String()
	runes := []rune(message)
	if c.maxMessageLength > 3 && len(runes) > c.maxMessageLength {
		message = string(runes[:c.maxMessageLength-3]) + "..."
	}
	return message
}
