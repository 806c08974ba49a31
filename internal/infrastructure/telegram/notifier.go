package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"FeaturedSelector/internal/ports"
)

const (
	apiBaseURL = "https://api.telegram.org"
	// maxMessageRunes is the Bot API limit for one sendMessage text.
	maxMessageRunes = 4096
	truncationMark  = "\n…"
	maxRetryAfter   = 30 * time.Second
)

// Notifier sends build summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  apiBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse is the envelope every Bot API method answers with.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// APIError is a rejected Bot API call.
type APIError struct {
	Status      int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram: status %d", e.Status)
	}
	return fmt.Sprintf("telegram: status %d: %s", e.Status, e.Description)
}

// PublishSummary posts a Markdown message to Telegram. A flood-control answer
// (429) is retried once after the advertised delay.
func (n *Notifier) PublishSummary(ctx context.Context, summary string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  truncate(summary, maxMessageRunes),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	retryAfter, err := n.send(ctx, body)
	if err == nil || retryAfter <= 0 {
		return err
	}
	if retryAfter > maxRetryAfter {
		return err
	}

	timer := time.NewTimer(retryAfter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	_, err = n.send(ctx, body)
	return err
}

// send performs one sendMessage call and returns the retry delay Telegram asked for, if any.
func (n *Notifier) send(ctx context.Context, body []byte) (time.Duration, error) {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var out apiResponse
	if jsonErr := json.Unmarshal(raw, &out); jsonErr != nil {
		if resp.StatusCode != http.StatusOK {
			return 0, &APIError{Status: resp.StatusCode, Description: http.StatusText(resp.StatusCode)}
		}
		return 0, fmt.Errorf("decode response: %w", jsonErr)
	}
	if resp.StatusCode == http.StatusOK && out.OK {
		return 0, nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Description: out.Description}
	if resp.StatusCode == http.StatusTooManyRequests {
		delay := out.Parameters.RetryAfter
		if delay == 0 {
			delay, _ = strconv.Atoi(resp.Header.Get("Retry-After"))
		}
		return time.Duration(delay) * time.Second, apiErr
	}
	return 0, apiErr
}

// truncate cuts s to at most limit runes, marking the cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(truncationMark)
	runes := []rune(s)
	return string(runes[:keep]) + truncationMark
}
