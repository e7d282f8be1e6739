package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/sirupsen/logrus"
)

// CatalogController manages the shared catalog: it resolves items already
// known, fetches unknown ones from their source catalog, and refreshes
// stale ones on the cadence stamped into RecommendedRefresh.
type CatalogController struct {
	store  CatalogStore
	screen ScreenFetcher
	books  BookFetcher
	logger *logrus.Logger
}

// NewCatalogController creates a new catalog controller
func NewCatalogController(store CatalogStore, screen ScreenFetcher, books BookFetcher, logger *logrus.Logger) *CatalogController {
	return &CatalogController{
		store:  store,
		screen: screen,
		books:  books,
		logger: logger,
	}
}

// ChangeKind classifies what a catalog refresh found
type ChangeKind string

const (
	ChangeNewSeason  ChangeKind = "new_season"
	ChangeNewEpisode ChangeKind = "new_episode"
	ChangeNewTome    ChangeKind = "new_tome"
)

// Change describes one piece of content gained by a catalog item
type Change struct {
	Kind ChangeKind `json:"change"`

	SeasonTitle   string `json:"season_title,omitempty"`
	SeasonNumber  int    `json:"season_number,omitempty"`
	EpisodeNumber int    `json:"episode_number,omitempty"`

	TomeIndex int    `json:"tome_index,omitempty"`
	TomeTitle string `json:"tome_title,omitempty"`
	TomeCount int    `json:"tome_count,omitempty"`
}

// GetOrFetch returns the catalog item for (type, originalID), fetching and
// storing it with a fresh internal id when the catalog does not know it yet
func (c *CatalogController) GetOrFetch(ctx context.Context, t models.MediaType, originalID string) (*models.CatalogItem, error) {
	item, err := c.store.GetCatalogItem(t, originalID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	item, err = c.fetch(ctx, t, originalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item.LastUpdate = now
	item.RecommendedRefresh = refreshDate(item, now)

	if err := c.store.CreateCatalogItem(item); err != nil {
		return nil, fmt.Errorf("failed to store catalog item: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"id":      item.ID,
		"type":    item.Type,
		"title":   item.Title,
		"refresh": item.RecommendedRefresh.Format("2006-01-02"),
	}).Info("Catalog item added")

	return item, nil
}

// Refresh re-fetches an item from its source catalog, stores the fresh
// version under the same internal id, and reports the content it gained
func (c *CatalogController) Refresh(ctx context.Context, item *models.CatalogItem) ([]Change, error) {
	fresh, err := c.fetch(ctx, item.Type, item.OriginalID)
	if err != nil {
		return nil, err
	}

	changes := diffContents(item, fresh)

	now := time.Now()
	fresh.ID = item.ID
	fresh.LastUpdate = now
	fresh.RecommendedRefresh = refreshDate(fresh, now)

	if err := c.store.UpdateCatalogItem(fresh); err != nil {
		return nil, fmt.Errorf("failed to update catalog item: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"id":      item.ID,
		"type":    item.Type,
		"title":   fresh.Title,
		"changes": len(changes),
	}).Info("Catalog item refreshed")

	return changes, nil
}

func (c *CatalogController) fetch(ctx context.Context, t models.MediaType, originalID string) (*models.CatalogItem, error) {
	switch t {
	case models.MediaTypeMovie:
		return c.screen.Movie(ctx, originalID)
	case models.MediaTypeTV:
		return c.screen.TV(ctx, originalID)
	case models.MediaTypeBook:
		return c.books.Book(ctx, originalID)
	case models.MediaTypeBookSeries:
		return c.books.Series(ctx, originalID)
	}
	return nil, fmt.Errorf("%w: media type %q", models.ErrInvalidFormat, t)
}

// refreshDate computes when an item should next be re-fetched: works within
// 14 days of their release date refresh weekly, then movies settle to 60
// days and tv to 30; standalone books get 60 days and book series 7 (series
// grow unpredictably).
func refreshDate(item *models.CatalogItem, now time.Time) time.Time {
	switch item.Type {
	case models.MediaTypeTV:
		if recentlyReleased(item.ReleaseDate, now) {
			return now.AddDate(0, 0, 7)
		}
		return now.AddDate(0, 0, 30)
	case models.MediaTypeMovie:
		if recentlyReleased(item.ReleaseDate, now) {
			return now.AddDate(0, 0, 7)
		}
		return now.AddDate(0, 0, 60)
	case models.MediaTypeBook:
		return now.AddDate(0, 0, 60)
	case models.MediaTypeBookSeries:
		return now.AddDate(0, 0, 7)
	}
	return now.AddDate(0, 0, 30)
}

func recentlyReleased(releaseDate string, now time.Time) bool {
	if releaseDate == "" {
		return false
	}
	released, err := time.Parse("2006-01-02", releaseDate)
	if err != nil {
		return false
	}
	return released.AddDate(0, 0, 14).After(now)
}

// diffContents reports the content units fresh gained over old
func diffContents(old, fresh *models.CatalogItem) []Change {
	var changes []Change

	switch fresh.Type {
	case models.MediaTypeTV:
		for i := range fresh.Contents {
			unit := &fresh.Contents[i]
			known := old.SeasonByNumber(unit.SeasonNumber)
			if known == nil {
				changes = append(changes, Change{
					Kind:         ChangeNewSeason,
					SeasonTitle:  unit.Title,
					SeasonNumber: unit.SeasonNumber,
				})
				continue
			}
			if len(unit.Contents) > len(known.Contents) {
				changes = append(changes, Change{
					Kind:          ChangeNewEpisode,
					SeasonTitle:   unit.Title,
					SeasonNumber:  unit.SeasonNumber,
					EpisodeNumber: len(unit.Contents),
				})
			}
		}
	case models.MediaTypeBookSeries:
		group := fresh.TomeGroup()
		known := old.TomeGroup()
		if group == nil {
			return nil
		}
		knownCount := 0
		if known != nil {
			knownCount = len(known.Contents)
		}
		for i := knownCount; i < len(group.Contents); i++ {
			changes = append(changes, Change{
				Kind:      ChangeNewTome,
				TomeIndex: i + 1,
				TomeTitle: group.Contents[i],
				TomeCount: len(group.Contents),
			})
		}
	}

	return changes
}
