package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

// ErrSubscriptionGone signals that the push endpoint rejected the
// subscription permanently and it should be pruned.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Payload is the notification body delivered to a push endpoint
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Client delivers push payloads to subscription endpoints
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new push client
func NewClient(logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Send posts the payload to the subscription endpoint. A 404 or 410 from
// the endpoint returns ErrSubscriptionGone so the caller can drop the
// subscription; transient failures are retried with backoff.
func (c *Client) Send(ctx context.Context, sub models.Subscription, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("TTL", "86400")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return backoff.Permanent(ErrSubscriptionGone)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("push endpoint returned status %d", resp.StatusCode))
		default:
			return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
		}
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(expBackoff, ctx)); err != nil {
		if errors.Is(err, ErrSubscriptionGone) {
			return ErrSubscriptionGone
		}
		return fmt.Errorf("failed to deliver push notification: %w", err)
	}

	return nil
}
