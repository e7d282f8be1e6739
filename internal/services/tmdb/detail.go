package tmdb

import (
	"context"
	"fmt"
	"time"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

const imageBaseURL = "https://image.tmdb.org/t/p/original"

type movieResponse struct {
	Title        string `json:"title"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
	ReleaseDate  string `json:"release_date"`
	Status       string `json:"status"`
}

type tvResponse struct {
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
	FirstAirDate string `json:"first_air_date"`
	Seasons      []struct {
		SeasonNumber int `json:"season_number"`
	} `json:"seasons"`
}

type seasonResponse struct {
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	SeasonNumber int    `json:"season_number"`
	AirDate      string `json:"air_date"`
	Episodes     []struct {
		Name    string `json:"name"`
		AirDate string `json:"air_date"`
	} `json:"episodes"`
}

// Movie fetches a movie by its TMDB id
func (c *Client) Movie(ctx context.Context, originalID string) (*models.CatalogItem, error) {
	var resp movieResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%s", originalID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch movie %s: %w", originalID, err)
	}

	return &models.CatalogItem{
		OriginalID:  originalID,
		Type:        models.MediaTypeMovie,
		Title:       resp.Title,
		Overview:    resp.Overview,
		Image:       imageMap(resp.PosterPath, resp.BackdropPath),
		Source:      models.SourceTMDB,
		Finished:    resp.Status == "Released",
		ReleaseDate: resp.ReleaseDate,
	}, nil
}

// TV fetches a tv show by its TMDB id, including every season with its
// episode list. Specials (season 0) are moved to the end so regular
// seasons keep their natural order.
func (c *Client) TV(ctx context.Context, originalID string) (*models.CatalogItem, error) {
	var resp tvResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%s", originalID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch tv show %s: %w", originalID, err)
	}

	item := &models.CatalogItem{
		OriginalID:  originalID,
		Type:        models.MediaTypeTV,
		Title:       resp.Name,
		Overview:    resp.Overview,
		Image:       imageMap(resp.PosterPath, resp.BackdropPath),
		Source:      models.SourceTMDB,
		Finished:    true,
		ReleaseDate: resp.FirstAirDate,
	}

	for _, s := range resp.Seasons {
		season, err := c.season(ctx, originalID, s.SeasonNumber)
		if err != nil {
			return nil, err
		}
		item.Contents = append(item.Contents, *season)
		if !season.Finished && season.SeasonNumber != 0 {
			item.Finished = false
		}
	}

	if len(item.Contents) > 0 && item.Contents[0].SeasonNumber == 0 {
		specials := item.Contents[0]
		item.Contents = append(item.Contents[1:], specials)
	}

	return item, nil
}

func (c *Client) season(ctx context.Context, showID string, number int) (*models.Season, error) {
	var resp seasonResponse
	path := fmt.Sprintf("/tv/%s/season/%d", showID, number)
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch season %d of show %s: %w", number, showID, err)
	}

	today := time.Now().Format("2006-01-02")
	finished := true
	season := &models.Season{
		Title:        resp.Name,
		Overview:     resp.Overview,
		Image:        resp.PosterPath,
		SeasonNumber: resp.SeasonNumber,
		AirDate:      resp.AirDate,
		Finished:     true,
		LastUpdate:   time.Now(),
	}

	for _, episode := range resp.Episodes {
		if episode.AirDate == "" || episode.AirDate > today {
			finished = false
		}
		season.Contents = append(season.Contents, episode.Name)
	}
	season.Finished = finished

	return season, nil
}

func imageMap(poster, backdrop string) map[string]string {
	images := make(map[string]string)
	if poster != "" {
		images["poster"] = imageBaseURL + poster
	}
	if backdrop != "" {
		images["backdrop"] = imageBaseURL + backdrop
	}
	return images
}
