package tmdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/config"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := NewClient(&config.Config{TMDBToken: "token", TMDBURL: server.URL}, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestMovie(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("Missing bearer token")
		}
		w.Write([]byte(`{
			"title": "The Matrix",
			"overview": "A hacker learns the truth.",
			"poster_path": "/poster.jpg",
			"backdrop_path": "/backdrop.jpg",
			"release_date": "1999-03-31",
			"status": "Released"
		}`))
	})

	item, err := client.Movie(context.Background(), "603")
	if err != nil {
		t.Fatalf("Movie failed: %v", err)
	}
	if item.Title != "The Matrix" || item.Type != models.MediaTypeMovie {
		t.Errorf("Unexpected item %+v", item)
	}
	if !item.Finished {
		t.Errorf("Released movie should be finished")
	}
	if item.Image["poster"] != imageBaseURL+"/poster.jpg" {
		t.Errorf("Unexpected poster URL %s", item.Image["poster"])
	}
	if item.ReleaseDate != "1999-03-31" {
		t.Errorf("Unexpected release date %s", item.ReleaseDate)
	}
}

func TestTVMovesSpecialsLast(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/42":
			w.Write([]byte(`{
				"name": "Show",
				"overview": "",
				"first_air_date": "2020-01-01",
				"seasons": [{"season_number": 0}, {"season_number": 1}]
			}`))
		case "/tv/42/season/0":
			w.Write([]byte(`{
				"name": "Specials",
				"season_number": 0,
				"episodes": [{"name": "Special", "air_date": "2020-06-01"}]
			}`))
		case "/tv/42/season/1":
			w.Write([]byte(`{
				"name": "Season 1",
				"season_number": 1,
				"episodes": [
					{"name": "Pilot", "air_date": "2020-01-01"},
					{"name": "Finale", "air_date": "2020-01-08"}
				]
			}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	item, err := client.TV(context.Background(), "42")
	if err != nil {
		t.Fatalf("TV failed: %v", err)
	}
	if len(item.Contents) != 2 {
		t.Fatalf("Expected 2 seasons, got %d", len(item.Contents))
	}
	if item.Contents[0].SeasonNumber != 1 || item.Contents[1].SeasonNumber != 0 {
		t.Errorf("Expected specials moved last, got %d then %d",
			item.Contents[0].SeasonNumber, item.Contents[1].SeasonNumber)
	}
	if len(item.Contents[0].Contents) != 2 || item.Contents[0].Contents[1] != "Finale" {
		t.Errorf("Unexpected episode list %+v", item.Contents[0].Contents)
	}
	if !item.Contents[0].Finished {
		t.Errorf("Fully aired season should be finished")
	}
	if !item.Finished {
		t.Errorf("Show with all regular seasons aired should be finished")
	}
}

func TestTVUnairedEpisode(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/42":
			w.Write([]byte(`{"name": "Show", "seasons": [{"season_number": 1}]}`))
		case "/tv/42/season/1":
			w.Write([]byte(`{
				"name": "Season 1",
				"season_number": 1,
				"episodes": [
					{"name": "Pilot", "air_date": "2020-01-01"},
					{"name": "Upcoming", "air_date": "2999-01-01"}
				]
			}`))
		}
	})

	item, err := client.TV(context.Background(), "42")
	if err != nil {
		t.Fatalf("TV failed: %v", err)
	}
	if item.Contents[0].Finished {
		t.Errorf("Season with unaired episode must not be finished")
	}
	if item.Finished {
		t.Errorf("Show with airing season must not be finished")
	}
}

func TestSearchCaching(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"results": [{"title": "Hit"}]}`))
	})

	for i := 0; i < 2; i++ {
		result, err := client.SearchMovies(context.Background(), "matrix", false)
		if err != nil {
			t.Fatalf("SearchMovies failed: %v", err)
		}
		if result.Source != "tmdb" || result.Type != "movie" || result.Terms != "matrix" {
			t.Errorf("Unexpected result envelope %+v", result)
		}
		if len(result.Results) != 1 || len(result.Results[0].Contents) != 1 {
			t.Errorf("Unexpected result groups %+v", result.Results)
		}
	}

	if calls != 1 {
		t.Errorf("Expected second search to hit the cache, got %d upstream calls", calls)
	}
}
