package lexicon

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/ranges"
	"github.com/PaulExplorer/OeuvresTrack/internal/utils"
)

// fragment is one emitted piece of display text. Fragments are ordered by
// position, ties broken by emission order.
type fragment struct {
	text     string
	position int
}

// Render produces the display text for one tracked work. A nil progress is
// the preview mode used before a user adds the item. Render never mutates
// the catalog item, the progress record or the lexicon.
func Render(item *models.CatalogItem, progress *models.UserProgress, lex models.Lexicon) string {
	if len(lex) == 0 {
		lex = defaultLexicon
	}

	var fragments []fragment
	emit := func(event string, args ...any) {
		for _, entry := range lex[event] {
			if entry.Disabled {
				continue
			}
			fragments = append(fragments, fragment{
				text:     expand(entry.Text, args...),
				position: entry.Position,
			})
		}
	}

	emit(OnTitle, item.Title)

	if item.Type == models.MediaTypeTV && progress != nil {
		for _, sp := range progress.Seasons {
			if sp.Watched != "" {
				emit(OnStartedSeason, sp.SeasonNumber)
			}
		}
		// finished-season is a superset condition of started-season; both
		// hooks fire independently
		for _, sp := range progress.Seasons {
			if sp.Watched != "" && coversWholeSeason(item, sp) {
				emit(OnFinishSeason, sp.SeasonNumber)
			}
		}
	}

	if item.Type == models.MediaTypeTV {
		if progress == nil {
			for i := range item.Contents {
				emit(OnUnfinishedSeason, item.Contents[i].SeasonNumber)
			}
		} else {
			for _, sp := range progress.Seasons {
				if sp.Watched != "" && !coversWholeSeason(item, sp) {
					emit(OnUnfinishedSeason, sp.SeasonNumber)
				}
			}
		}

		if !item.Finished {
			emit(OnUnfinishedRelease)
		}
	}

	if progress != nil && progress.Status == models.StatusDone {
		emit(OnFinishStatus)
	}

	if item.Type == models.MediaTypeBookSeries {
		current := 0
		if progress != nil {
			if sp := progress.FirstSeason(); sp != nil {
				current = ranges.Upper(sp.Watched)
			}
		}
		total := 0
		if group := item.TomeGroup(); group != nil {
			total = len(group.Contents)
		}
		emit(OnTome, current, total)
	}

	if item.Type == models.MediaTypeTV && progress != nil {
		if episode := lastWatchedEpisode(progress); episode > 0 {
			emit(OnEpisode, episode)
		}
	}

	if progress != nil && progress.Rank != "" {
		emit(OnRank, progress.Rank)
	}

	if progress != nil && progress.Status == models.StatusGiveUp {
		emit(OnGiveUp)
	}

	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].position < fragments[j].position
	})

	parts := make([]string, len(fragments))
	for i, f := range fragments {
		parts[i] = f.text
	}

	return utils.MarkdownToHTML(strings.Join(parts, " "))
}

// coversWholeSeason reports whether a progress entry spans every known
// episode of its season
func coversWholeSeason(item *models.CatalogItem, sp models.SeasonProgress) bool {
	unit := item.SeasonByNumber(sp.SeasonNumber)
	if unit == nil || len(unit.Contents) == 0 {
		return false
	}
	r, err := ranges.Parse(sp.Watched)
	if err != nil {
		return false
	}
	return r.Start == 1 && r.End == len(unit.Contents)
}

// lastWatchedEpisode returns the highest episode number watched in the most
// recently started season, 0 when nothing has been started
func lastWatchedEpisode(progress *models.UserProgress) int {
	last := -1
	for i, sp := range progress.Seasons {
		if sp.Watched != "" {
			last = i
		}
	}
	if last < 0 {
		return 0
	}
	return ranges.Upper(progress.Seasons[last].Watched)
}

// expand substitutes positional {0}, {1}, ... placeholders in a template
func expand(template string, args ...any) string {
	for i, arg := range args {
		template = strings.ReplaceAll(template, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return template
}
