package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/divyanshu-1/RoadX/internal/config"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioClient sends SMS through the Twilio Messages REST endpoint.
type TwilioClient struct {
	accountSID string
	authToken  string
	from       string
	logger     *slog.Logger
	http       *http.Client
}

// NewTwilioClient returns nil when credentials are unconfigured; callers
// treat a nil sender as "SMS channel disabled".
func NewTwilioClient(cfg config.SMSConfig, logger *slog.Logger) *TwilioClient {
	if !cfg.Configured() {
		logger.Warn("Twilio not configured, SMS alerts disabled")
		return nil
	}
	return &TwilioClient{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		logger:     logger,
		http:       &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *TwilioClient) Send(ctx context.Context, to, body string) error {
	if to == "" {
		return fmt.Errorf("twilio: empty destination number")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, c.accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twilio: send failed: %s", resp.Status)
	}

	return nil
}
