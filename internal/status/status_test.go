package status

import (
	"testing"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

func showWithSeasons(counts ...int) *models.CatalogItem {
	item := &models.CatalogItem{Type: models.MediaTypeTV}
	for i, count := range counts {
		episodes := make([]string, count)
		for e := range episodes {
			episodes[e] = "Episode"
		}
		item.Contents = append(item.Contents, models.Season{
			SeasonNumber: i + 1,
			Contents:     episodes,
			Finished:     true,
		})
	}
	return item
}

func TestDeriveNoProgress(t *testing.T) {
	item := showWithSeasons(10, 8)
	progress := &models.UserProgress{Type: models.MediaTypeTV}

	if got := Derive(item, progress, false, Options{}); got != models.StatusToWatch {
		t.Errorf("Expected towatch, got %s", got)
	}
}

func TestDerivePartialSeason(t *testing.T) {
	item := showWithSeasons(10, 8)
	progress := &models.UserProgress{
		Type: models.MediaTypeTV,
		Seasons: []models.SeasonProgress{
			{SeasonNumber: 1, Watched: "1-5"},
		},
	}

	if got := Derive(item, progress, false, Options{}); got != models.StatusOnWatch {
		t.Errorf("Expected onwatch, got %s", got)
	}
}

func TestDeriveAllSeasonsWatched(t *testing.T) {
	item := showWithSeasons(10, 8)
	progress := &models.UserProgress{
		Type: models.MediaTypeTV,
		Seasons: []models.SeasonProgress{
			{SeasonNumber: 1, Watched: "1-10"},
			{SeasonNumber: 2, Watched: "1-8"},
		},
	}

	if got := Derive(item, progress, false, Options{}); got != models.StatusDone {
		t.Errorf("Expected done, got %s", got)
	}
}

func TestDeriveGiveUpWins(t *testing.T) {
	item := showWithSeasons(10)
	progress := &models.UserProgress{
		Type:   models.MediaTypeTV,
		Status: models.StatusGiveUp,
		Seasons: []models.SeasonProgress{
			{SeasonNumber: 1, Watched: "1-10"},
		},
	}

	if got := Derive(item, progress, false, Options{}); got != models.StatusGiveUp {
		t.Errorf("Expected giveup to win, got %s", got)
	}
	if got := Derive(item, progress, true, Options{}); got != models.StatusDone {
		t.Errorf("Expected done when recomputing through giveup, got %s", got)
	}
}

func TestDeriveSkipsSpecials(t *testing.T) {
	item := showWithSeasons(10)
	item.Contents = append(item.Contents, models.Season{
		SeasonNumber: 0,
		Contents:     []string{"Special 1", "Special 2"},
		Finished:     true,
	})
	progress := &models.UserProgress{
		Type: models.MediaTypeTV,
		Seasons: []models.SeasonProgress{
			{SeasonNumber: 1, Watched: "1-10"},
		},
	}

	if got := Derive(item, progress, false, Options{IgnoreSpecials: true}); got != models.StatusDone {
		t.Errorf("Expected done when specials are ignored, got %s", got)
	}
	if got := Derive(item, progress, false, Options{}); got != models.StatusOnWatch {
		t.Errorf("Expected onwatch when specials count, got %s", got)
	}
}

// A season with a single known episode only blocks completion once the
// catalog marks it finished; an airing single-episode season does not.
func TestDeriveSinglePartUnit(t *testing.T) {
	item := showWithSeasons(10)
	item.Contents = append(item.Contents, models.Season{
		SeasonNumber: 2,
		Contents:     []string{"Episode"},
		Finished:     false,
	})
	progress := &models.UserProgress{
		Type: models.MediaTypeTV,
		Seasons: []models.SeasonProgress{
			{SeasonNumber: 1, Watched: "1-10"},
		},
	}

	if got := Derive(item, progress, false, Options{}); got != models.StatusDone {
		t.Errorf("Expected done with unreleased single-episode season, got %s", got)
	}

	item.Contents[1].Finished = true
	if got := Derive(item, progress, false, Options{}); got != models.StatusOnWatch {
		t.Errorf("Expected onwatch once season is fully released, got %s", got)
	}
}

func TestDeriveMovie(t *testing.T) {
	item := &models.CatalogItem{Type: models.MediaTypeMovie}

	progress := &models.UserProgress{Type: models.MediaTypeMovie}
	if got := Derive(item, progress, false, Options{}); got != models.StatusToWatch {
		t.Errorf("Expected towatch, got %s", got)
	}

	progress.Consumed = true
	if got := Derive(item, progress, false, Options{}); got != models.StatusDone {
		t.Errorf("Expected done, got %s", got)
	}
}

func TestDeriveBookSeries(t *testing.T) {
	item := &models.CatalogItem{
		Type: models.MediaTypeBookSeries,
		Contents: []models.Season{
			{Title: "Tomes:", Contents: []string{"T1", "T2", "T3"}},
		},
	}

	progress := &models.UserProgress{
		Type:    models.MediaTypeBookSeries,
		Seasons: []models.SeasonProgress{{Watched: "1-2"}},
	}
	if got := Derive(item, progress, false, Options{}); got != models.StatusOnWatch {
		t.Errorf("Expected onwatch, got %s", got)
	}

	progress.Seasons[0].Watched = "1-3"
	if got := Derive(item, progress, false, Options{}); got != models.StatusDone {
		t.Errorf("Expected done, got %s", got)
	}
}
