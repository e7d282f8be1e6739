package booknode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/PaulExplorer/OeuvresTrack/internal/config"
)

// Client scrapes book and book-series data from Booknode. Booknode has no
// public API, so detail pages are fetched as HTML and parsed; only the
// search endpoint returns JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
	logger     *logrus.Logger
}

// NewClient creates a new Booknode client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.BooknodeURL == "" {
		return nil, fmt.Errorf("booknode URL is required")
	}

	return &Client{
		baseURL:    cfg.BooknodeURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      gocache.New(20*time.Minute, 10*time.Minute),
		logger:     logger,
	}, nil
}

// get fetches a Booknode page with retries and returns the response body
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.baseURL + path
	c.logger.WithField("url", fullURL).Debug("Fetching Booknode page")

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", "oeuvrestrack/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("booknode returned status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(expBackoff, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// parse fetches a Booknode page and parses it into an HTML document
func (c *Client) parse(ctx context.Context, path string) (*html.Node, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse booknode page: %w", err)
	}
	return doc, nil
}
