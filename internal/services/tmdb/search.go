package tmdb

import (
	"context"
	"fmt"
	"net/url"

	gocache "github.com/patrickmn/go-cache"
)

// ResultGroup is one titled group of raw catalog search hits
type ResultGroup struct {
	Title    string                   `json:"title"`
	Contents []map[string]interface{} `json:"contents"`
}

// SearchResult is the response returned to search endpoints: the raw
// upstream hits grouped under a generic heading, tagged with the source
// catalog and media type they should be added as.
type SearchResult struct {
	Source  string        `json:"source"`
	Type    string        `json:"type"`
	Terms   string        `json:"terms"`
	Results []ResultGroup `json:"results"`
}

type searchResponse struct {
	Results []map[string]interface{} `json:"results"`
}

// SearchMovies searches TMDB for movies matching the query
func (c *Client) SearchMovies(ctx context.Context, query string, includeAdult bool) (*SearchResult, error) {
	return c.search(ctx, "movie", "Movie results:", query, includeAdult)
}

// SearchTV searches TMDB for tv shows matching the query
func (c *Client) SearchTV(ctx context.Context, query string, includeAdult bool) (*SearchResult, error) {
	return c.search(ctx, "tv", "TV show results:", query, includeAdult)
}

func (c *Client) search(ctx context.Context, mediaType, groupTitle, query string, includeAdult bool) (*SearchResult, error) {
	cacheKey := fmt.Sprintf("search:%s:%t:%s", mediaType, includeAdult, query)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(*SearchResult), nil
	}

	path := fmt.Sprintf("/search/%s?query=%s&include_adult=%t&page=1",
		mediaType, url.QueryEscape(query), includeAdult)

	var resp searchResponse
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("TMDB search failed: %w", err)
	}

	result := &SearchResult{
		Source: "tmdb",
		Type:   mediaType,
		Terms:  query,
		Results: []ResultGroup{
			{Title: groupTitle, Contents: resp.Results},
		},
	}

	c.cache.Set(cacheKey, result, gocache.DefaultExpiration)
	c.logger.WithField("count", len(resp.Results)).Debug("TMDB search completed")

	return result, nil
}
