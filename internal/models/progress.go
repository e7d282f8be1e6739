package models

import "time"

// SeasonProgress records how far a user got through one content unit.
// Watched holds a single range token ("N" or "N-M"), empty when nothing in
// the unit has been consumed yet.
type SeasonProgress struct {
	SeasonNumber int    `json:"season_number"`
	Watched      string `json:"watched"`
}

// UserProgress is the per-user record of what portion of a work has been
// consumed. For tv/book series the Seasons slice carries at most one entry
// per season number; for movies and standalone books Consumed is the whole
// state. Status is derived but persisted for fast list reads.
type UserProgress struct {
	ID     uint64    `boltholdKey:"ID"`
	UserID uint64    `boltholdIndex:"UserID" json:"user_id"`
	ItemID string    `boltholdIndex:"ItemID" json:"id"`
	Type   MediaType `json:"type"`

	Seasons  []SeasonProgress `json:"watch,omitempty"`
	Consumed bool             `json:"consumed,omitempty"`

	Rank   string `json:"rank"`
	Status Status `json:"status"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// SeasonByNumber returns the progress entry for a season number, or nil
func (p *UserProgress) SeasonByNumber(n int) *SeasonProgress {
	for i := range p.Seasons {
		if p.Seasons[i].SeasonNumber == n {
			return &p.Seasons[i]
		}
	}
	return nil
}

// FirstSeason returns the sole progress entry of a book series, or nil
func (p *UserProgress) FirstSeason() *SeasonProgress {
	if len(p.Seasons) == 0 {
		return nil
	}
	return &p.Seasons[0]
}

// ListEntry is one denormalized row of a user's list: catalog identity plus
// the cached rendered text. Entries are a pure function of catalog item,
// progress record and lexicon, and are only written by the list controller.
type ListEntry struct {
	ItemID  string    `json:"id"`
	Type    MediaType `json:"type"`
	Text    string    `json:"text"`
	Checked bool      `json:"checked"`
	Status  Status    `json:"status"`
}

// UserList is the ordered cached list of one user
type UserList struct {
	ID      uint64      `boltholdKey:"ID"`
	UserID  uint64      `boltholdIndex:"UserID" json:"user_id"`
	Entries []ListEntry `json:"list"`
}

// EntryIndex returns the position of the entry for (itemID, type), or -1
func (l *UserList) EntryIndex(itemID string, t MediaType) int {
	for i := range l.Entries {
		if l.Entries[i].ItemID == itemID && l.Entries[i].Type == t {
			return i
		}
	}
	return -1
}

// Subscription is one push endpoint registered by a user's browser
type Subscription struct {
	Endpoint string            `json:"endpoint"`
	Keys     map[string]string `json:"keys,omitempty"`
}

// UserSettings holds per-user preferences, including the custom lexicon.
// A zero lexicon means "use the built-in default".
type UserSettings struct {
	ID     uint64 `boltholdKey:"ID"`
	UserID uint64 `boltholdIndex:"UserID" json:"user_id"`

	IncludeAdult   bool `json:"adult-result"`
	IgnoreSpecials bool `json:"ignore-overs"`

	Lexicon Lexicon `json:"lexicon,omitempty"`

	Subscriptions []Subscription `json:"-"`
}
