package models

import "time"

// Image maps a variant name to an image URL. TMDB items carry
// "poster"/"backdrop" variants, Booknode items carry width variants
// ("264", "121", "66", "30").
type Image map[string]string

// Season is one content unit inside a tv show or book series: a season of
// episodes, or the single tome group of a series
type Season struct {
	Title        string    `json:"title"`
	Image        string    `json:"image,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	SeasonNumber int       `json:"season_number"`
	AirDate      string    `json:"air_date,omitempty"`
	Contents     []string  `json:"contents"` // episode or tome titles, in order
	Finished     bool      `json:"finished"` // all known contents are released
	LastUpdate   time.Time `json:"last_update,omitempty"`
}

// CatalogItem is the canonical, user-independent description of a trackable
// work. Items are shared across users and refreshed from their source catalog
// when RecommendedRefresh passes.
type CatalogItem struct {
	ID         uint64    `boltholdKey:"ID" json:"id"`
	OriginalID string    `boltholdIndex:"OriginalID" json:"original_id"` // id on the source catalog (TMDB id, Booknode id or slug)
	Type       MediaType `boltholdIndex:"Type" json:"type"`

	Title    string `json:"title"`
	Overview string `json:"overview"`
	Image    Image  `json:"image"`
	Source   Source `json:"source"`

	// Contents is the ordered content units: seasons for tv (specials moved
	// last), exactly one tome group for book series, empty otherwise.
	Contents []Season `json:"contents,omitempty"`

	// Finished is true once the work itself is fully released
	Finished bool `json:"finished"`

	// ReleaseDate is the first air/release date as reported by the source,
	// ISO formatted. Empty for books.
	ReleaseDate string `json:"release_date,omitempty"`

	LastUpdate         time.Time `json:"last_update"`
	RecommendedRefresh time.Time `json:"recommended_refresh"`
}

// SeasonByNumber returns the content unit with the given season number, or
// nil if the catalog does not know it
func (c *CatalogItem) SeasonByNumber(n int) *Season {
	for i := range c.Contents {
		if c.Contents[i].SeasonNumber == n {
			return &c.Contents[i]
		}
	}
	return nil
}

// TomeGroup returns the sole tome group of a book series, or nil
func (c *CatalogItem) TomeGroup() *Season {
	if len(c.Contents) == 0 {
		return nil
	}
	return &c.Contents[0]
}
