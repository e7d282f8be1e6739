// Package lexicon renders a tracked work into its one-line display text,
// driven by a per-user mapping from rendering events to positioned text
// fragments.
package lexicon

import (
	"fmt"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

// Rendering event names. Each event contributes zero or more fragments to
// the final line; which events fire depends on the item type and progress.
const (
	OnTitle             = "OnTitle"
	OnStartedSeason     = "OnStartedSeason"
	OnFinishSeason      = "OnFinishSeason"
	OnUnfinishedSeason  = "OnUnfinishedSeason"
	OnTome              = "OnTome"
	OnEpisode           = "OnEpisode"
	OnRank              = "OnRank"
	OnFinishStatus      = "OnFinishStatus"
	OnGiveUp            = "OnGiveUp"
	OnUnfinishedRelease = "OnUnfinishedRelease"
)

// Events lists every rendering event a lexicon must define
var Events = []string{
	OnTitle,
	OnStartedSeason,
	OnFinishSeason,
	OnUnfinishedSeason,
	OnTome,
	OnEpisode,
	OnRank,
	OnFinishStatus,
	OnGiveUp,
	OnUnfinishedRelease,
}

// defaultLexicon is the process-wide default. It is never handed out
// directly; Default returns it and callers must not mutate it, user
// customization goes through Clone.
var defaultLexicon = models.Lexicon{
	OnFinishStatus: {
		{Text: "~~", Position: 0},
		{Text: "~~", Position: 6},
	},
	OnTitle: {
		{Text: "{0}", Position: 1},
	},
	OnUnfinishedSeason: {
		{Text: "*s{0}*", Position: 2, Disabled: true},
	},
	OnFinishSeason: {
		{Text: "s{0}", Position: 2, Disabled: true},
	},
	OnStartedSeason: {
		{Text: "s{0}", Position: 2},
	},
	OnTome: {
		{Text: "t{0}/t{1}", Position: 2},
	},
	OnEpisode: {
		{Text: "e{0}", Position: 3},
	},
	OnRank: {
		{Text: "**{0}r**", Position: 5},
	},
	OnGiveUp: {
		{Text: "~~", Position: 0},
		{Text: "(given up)~~", Position: 6},
	},
	OnUnfinishedRelease: {
		{Text: "*(still airing)*", Position: 4},
	},
}

// Default returns the built-in lexicon. Treat it as immutable.
func Default() models.Lexicon {
	return defaultLexicon
}

// Validate checks a user-submitted lexicon: every event must be present and
// every entry must carry a template and a non-negative position
func Validate(lex models.Lexicon) error {
	for _, event := range Events {
		entries, ok := lex[event]
		if !ok {
			return fmt.Errorf("%w: missing lexicon event %s", models.ErrInvalidFormat, event)
		}
		for _, entry := range entries {
			if entry.Text == "" {
				return fmt.Errorf("%w: empty template in lexicon event %s", models.ErrInvalidFormat, event)
			}
			if entry.Position < 0 {
				return fmt.Errorf("%w: negative position in lexicon event %s", models.ErrInvalidFormat, event)
			}
		}
	}
	return nil
}
