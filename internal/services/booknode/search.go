package booknode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/services/tmdb"
)

type searchResponse struct {
	Series []map[string]interface{} `json:"series"`
	Books  []map[string]interface{} `json:"books"`
}

// Search queries the Booknode search endpoint and returns the hits in two
// groups: book series first, standalone books second. Series hits only
// carry an href, so their id is extracted from its last path segment.
func (c *Client) Search(ctx context.Context, query string) (*tmdb.SearchResult, error) {
	cacheKey := "search:" + query
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(*tmdb.SearchResult), nil
	}

	// form encoding turns spaces into "+", which is what the endpoint expects
	path := fmt.Sprintf("/search-json?q=%s&exclude_series_from_books=1", url.QueryEscape(strings.ToLower(query)))

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("booknode search failed: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode booknode search response: %w", err)
	}

	for _, hit := range resp.Series {
		hit["type"] = "books"
		if href, ok := hit["href"].(string); ok {
			parts := strings.Split(href, "/")
			hit["id"] = parts[len(parts)-1]
		}
	}
	for _, hit := range resp.Books {
		hit["type"] = "book"
	}

	result := &tmdb.SearchResult{
		Source: "booknode",
		Type:   "book",
		Terms:  query,
		Results: []tmdb.ResultGroup{
			{Title: "Book series results:", Contents: resp.Series},
			{Title: "Standalone book results:", Contents: resp.Books},
		},
	}

	c.cache.Set(cacheKey, result, gocache.DefaultExpiration)
	c.logger.WithFields(logrus.Fields{
		"series": len(resp.Series),
		"books":  len(resp.Books),
	}).Debug("Booknode search completed")

	return result, nil
}
