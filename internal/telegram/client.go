package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxMessageLen is Telegram's hard cap for message text.
const maxMessageLen = 4096

// Client sends messages to one Telegram chat via the bot API.
type Client struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

func NewClient(botToken, chatID string) *Client {
	return &Client{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SendText posts a Markdown message with link previews disabled.
func (c *Client) SendText(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", truncate(text))
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")

	return c.post(ctx, "sendMessage", form)
}

// SendPhoto posts a photo by URL with a Markdown caption.
func (c *Client) SendPhoto(ctx context.Context, photoURL, caption string) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("photo", photoURL)
	form.Set("caption", truncate(caption))
	form.Set("parse_mode", "Markdown")

	return c.post(ctx, "sendPhoto", form)
}

func (c *Client) post(ctx context.Context, method string, form url.Values) error {
	if c.botToken == "" || c.chatID == "" {
		return fmt.Errorf("telegram client misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram %s: %s", method, resp.Status)
	}
	return nil
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLen {
		return text
	}
	return string(runes[:maxMessageLen-1]) + "…"
}
