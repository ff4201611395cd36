// Package notify delivers push notifications through an external collaborator.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
)

var (
	ErrMissingToken = errors.New("device token is required")
	ErrDelivery     = errors.New("notification delivery failed")
)

type Notification struct {
	DeviceToken string `json:"deviceToken"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.DeviceToken) == "" {
		return ErrMissingToken
	}
	return nil
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// WebhookSender posts the notification as JSON to a push gateway.
type WebhookSender struct {
	url    string
	client *http.Client
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSender) Send(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: gateway returned %d", ErrDelivery, resp.StatusCode)
	}
	return nil
}

// LogSender only logs. It stands in when no gateway is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	logger.Info("notification", "title", n.Title, "token_len", len(n.DeviceToken))
	return nil
}

// New picks the webhook sender when url is set.
func New(url string) Sender {
	if url == "" {
		return LogSender{}
	}
	return NewWebhookSender(url)
}
