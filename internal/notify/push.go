package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/config"
	"github.com/divyanshu-1/RoadX/internal/domain"
)

// FCMClient sends push messages through the FCM HTTP endpoint.
type FCMClient struct {
	endpoint  string
	serverKey string
	logger    *slog.Logger
	http      *http.Client
}

func NewFCMClient(cfg config.PushConfig, logger *slog.Logger) *FCMClient {
	return &FCMClient{
		endpoint:  cfg.Endpoint,
		serverKey: cfg.ServerKey,
		logger:    logger,
		http:      &http.Client{Timeout: 5 * time.Second},
	}
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

func (c *FCMClient) Send(ctx context.Context, msg domain.PushMessage) error {
	if msg.Token == "" {
		return fmt.Errorf("fcm: empty device token")
	}

	body, err := json.Marshal(fcmRequest{
		To:           msg.Token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	})
	if err != nil {
		return fmt.Errorf("fcm: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fcm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fcm: send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fcm: send failed: %s", resp.Status)
	}

	return nil
}
