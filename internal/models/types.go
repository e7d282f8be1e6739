package models

// MediaType represents the kind of trackable work
type MediaType string

const (
	MediaTypeMovie      MediaType = "movie"
	MediaTypeTV         MediaType = "tv"
	MediaTypeBook       MediaType = "book"
	MediaTypeBookSeries MediaType = "books"
)

// Valid reports whether t is one of the known media types
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypeBook, MediaTypeBookSeries:
		return true
	}
	return false
}

// HasContents reports whether works of this type carry nested content units
// (seasons for tv, a single tome group for book series)
func (t MediaType) HasContents() bool {
	return t == MediaTypeTV || t == MediaTypeBookSeries
}

// Status represents a user's completion state for a tracked work
type Status string

const (
	StatusToWatch Status = "towatch"
	StatusOnWatch Status = "onwatch"
	StatusDone    Status = "done"
	StatusGiveUp  Status = "giveup"
)

// Checked reports whether the status renders as a ticked list entry
func (s Status) Checked() bool {
	return s == StatusDone || s == StatusGiveUp
}

// Source represents which external catalog a work came from
type Source string

const (
	SourceTMDB     Source = "tmdb"
	SourceBooknode Source = "booknode"
)
