package models

// LexiconEntry is one text fragment template attached to a rendering event.
// Position orders fragments in the final line; Disabled entries are skipped.
type LexiconEntry struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Lexicon maps a rendering event name to its ordered fragment templates.
// The event names and the built-in default live in the lexicon package.
type Lexicon map[string][]LexiconEntry

// Clone returns a deep copy, so user edits never touch the shared default
func (l Lexicon) Clone() Lexicon {
	if l == nil {
		return nil
	}
	out := make(Lexicon, len(l))
	for event, entries := range l {
		copied := make([]LexiconEntry, len(entries))
		copy(copied, entries)
		out[event] = copied
	}
	return out
}
