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

const slackHost = "hooks.slack.com"

// WebhookError is a non-200 answer from the Slack webhook.
type WebhookError struct {
	Status int
	Body   string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("slack webhook returned %d: %s", e.Status, e.Body)
}

// SlackSender posts recipe events to a Slack incoming webhook.
type SlackSender struct {
	webhook string
	channel string
	client  *http.Client
	accept  func(*Event) bool
}

// SlackOption configures a SlackSender.
type SlackOption func(*SlackSender)

// WithWebhook sets the incoming webhook URL.
func WithWebhook(url string) SlackOption {
	return func(s *SlackSender) { s.webhook = url }
}

// WithDefaultChannel overrides the channel the webhook posts to.
func WithDefaultChannel(channel string) SlackOption {
	return func(s *SlackSender) { s.channel = channel }
}

// WithHTTPClient replaces the HTTP client used for posting.
func WithHTTPClient(client *http.Client) SlackOption {
	return func(s *SlackSender) { s.client = client }
}

// WithFailuresOnly drops successful events.
func WithFailuresOnly() SlackOption {
	return func(s *SlackSender) {
		s.accept = func(e *Event) bool { return !e.Success }
	}
}

// NewSlackSender returns a sender that posts every event unless filtered by
// an option.
func NewSlackSender(opts ...SlackOption) *SlackSender {
	s := &SlackSender{
		client: &http.Client{Timeout: 10 * time.Second},
		accept: func(*Event) bool { return true },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns "slack".
func (s *SlackSender) Name() string {
	return "slack"
}

// Send posts event to the webhook.
func (s *SlackSender) Send(ctx context.Context, event *Event) error {
	if !s.accept(event) {
		return nil
	}

	if s.webhook == "" {
		return errors.New("slack: no webhook configured")
	}

	payload, err := json.Marshal(FormatSlackMessage(event, s.channel))
	if err != nil {
		return fmt.Errorf("slack: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhook, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("slack: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	return &WebhookError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// ValidateWebhookURL accepts only https URLs under hooks.slack.com/services/.
func ValidateWebhookURL(raw string) error {
	if raw == "" {
		return errors.New("slack: webhook URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("slack: invalid webhook URL: %w", err)
	}

	if u.Scheme != "https" || u.Host != slackHost || !strings.HasPrefix(u.Path, "/services/") {
		return fmt.Errorf("slack: webhook URL must start with https://%s/services/", slackHost)
	}

	return nil
}
