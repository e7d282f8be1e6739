// Package status derives a user's completion status for a tracked work from
// the catalog's content structure and the user's progress record.
package status

import (
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/ranges"
)

// Options tunes status derivation per user preferences
type Options struct {
	// IgnoreSpecials skips season 0 of tv shows
	IgnoreSpecials bool
}

// Derive computes the status of one tracked work. The stored give-up status
// wins unless ignoreGiveUp is set (the toggle path recomputes through it).
func Derive(item *models.CatalogItem, progress *models.UserProgress, ignoreGiveUp bool, opts Options) models.Status {
	if progress.Status == models.StatusGiveUp && !ignoreGiveUp {
		return models.StatusGiveUp
	}

	finished := true
	started := false

	switch item.Type {
	case models.MediaTypeTV, models.MediaTypeBookSeries:
		for i := range item.Contents {
			unit := &item.Contents[i]

			if item.Type == models.MediaTypeTV && unit.SeasonNumber == 0 && opts.IgnoreSpecials {
				continue
			}

			var entry *models.SeasonProgress
			if item.Type == models.MediaTypeTV {
				entry = progress.SeasonByNumber(unit.SeasonNumber)
			} else {
				entry = progress.FirstSeason()
			}

			if entry == nil || entry.Watched == "" {
				if blocksCompletion(unit) {
					finished = false
				}
				continue
			}

			started = true
			if ranges.Upper(entry.Watched) != len(unit.Contents) {
				finished = false
			}
		}
	default:
		// movies and standalone books reduce to the consumed flag
		finished = progress.Consumed
	}

	switch {
	case finished:
		return models.StatusDone
	case started:
		return models.StatusOnWatch
	default:
		return models.StatusToWatch
	}
}

// blocksCompletion decides whether a unit with no recorded progress keeps the
// whole work from counting as done. A multi-part unit always blocks; a unit
// with exactly one part blocks only once the catalog marks it fully released.
func blocksCompletion(unit *models.Season) bool {
	return (len(unit.Contents) > 0 && unit.Finished) || len(unit.Contents) > 1
}
