package controllers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/PaulExplorer/OeuvresTrack/internal/lexicon"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/ranges"
	"github.com/PaulExplorer/OeuvresTrack/internal/status"
	"github.com/sirupsen/logrus"
)

// ListController is the only writer of progress records and cached list
// entries. Every mutation recomputes status and display text so the cache
// can never drift from the records within one operation.
type ListController struct {
	catalog  CatalogLookup
	progress ProgressStore
	list     ListStore
	settings SettingsStore
	logger   *logrus.Logger

	// mu guards users; the per-user locks serialize read-modify-write
	// sequences on the same list (two users never contend)
	mu    sync.Mutex
	users map[uint64]*sync.Mutex
}

// NewListController creates a new list controller
func NewListController(catalog CatalogLookup, progress ProgressStore, list ListStore, settings SettingsStore, logger *logrus.Logger) *ListController {
	return &ListController{
		catalog:  catalog,
		progress: progress,
		list:     list,
		settings: settings,
		logger:   logger,
		users:    make(map[uint64]*sync.Mutex),
	}
}

func (c *ListController) userLock(userID uint64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		c.users[userID] = lock
	}
	return lock
}

// CatalogInfo is the catalog subset returned alongside list entries
type CatalogInfo struct {
	Title    string       `json:"title"`
	Overview string       `json:"overview"`
	Image    models.Image `json:"image"`
}

// EntryView is the structured result of a list mutation
type EntryView struct {
	ID      string           `json:"id"`
	Type    models.MediaType `json:"type"`
	Text    string           `json:"text"`
	Status  models.Status    `json:"status"`
	Checked bool             `json:"checked"`
	Catalog *CatalogInfo     `json:"catalog,omitempty"`
}

// ProgressChange carries one progress mutation. Ranges applies to tv and
// book series (every token must be valid range notation); Consumed applies
// to movies and standalone books.
type ProgressChange struct {
	SeasonNumber int
	Ranges       []string
	Consumed     bool
}

// lexiconFor returns the user's lexicon, falling back to the default
func (c *ListController) lexiconFor(userID uint64) models.Lexicon {
	lex, err := c.settings.GetLexicon(userID)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load lexicon, using default")
		return lexicon.Default()
	}
	if len(lex) == 0 {
		return lexicon.Default()
	}
	return lex
}

// statusOptions returns the user's status derivation options
func (c *ListController) statusOptions(userID uint64) status.Options {
	settings, err := c.settings.GetSettings(userID)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load settings, using defaults")
		return status.Options{IgnoreSpecials: true}
	}
	return status.Options{IgnoreSpecials: settings.IgnoreSpecials}
}

// AddItem starts tracking an item for a user. The initial cached text is the
// preview rendering (no progress yet).
func (c *ListController) AddItem(userID uint64, t models.MediaType, originalID string) (*EntryView, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	_, err := c.progress.GetProgress(userID, originalID, t)
	if err == nil {
		return nil, fmt.Errorf("%w: %s/%s", models.ErrAlreadyTracked, t, originalID)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	item, err := c.catalog.GetCatalogItem(t, originalID)
	if err != nil {
		return nil, fmt.Errorf("catalog item %s/%s: %w", t, originalID, err)
	}

	progress, err := c.ensureTracked(userID, item)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    t,
		"item_id": originalID,
	}).Info("Item added to list")

	view := c.view(item, progress, lexicon.Render(item, nil, c.lexiconFor(userID)))
	view.Catalog = &CatalogInfo{Title: item.Title, Overview: item.Overview, Image: item.Image}
	return view, nil
}

// RemoveItem stops tracking an item, deleting both the progress record and
// the cached entry
func (c *ListController) RemoveItem(userID uint64, t models.MediaType, originalID string) error {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := c.progress.GetProgress(userID, originalID, t); err != nil {
		return fmt.Errorf("progress %s/%s: %w", t, originalID, err)
	}
	if err := c.progress.DeleteProgress(userID, originalID, t); err != nil {
		return err
	}
	if err := c.list.RemoveEntry(userID, originalID, t); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    t,
		"item_id": originalID,
	}).Info("Item removed from list")
	return nil
}

// UpdateProgress applies a watched-range or consumed-flag change, creating
// the tracking records first if the user never added the item
func (c *ListController) UpdateProgress(userID uint64, t models.MediaType, originalID string, change ProgressChange) (*EntryView, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	item, err := c.catalog.GetCatalogItem(t, originalID)
	if err != nil {
		return nil, fmt.Errorf("catalog item %s/%s: %w", t, originalID, err)
	}

	token := ""
	if t.HasContents() {
		for _, candidate := range change.Ranges {
			if !ranges.Valid(candidate) {
				return nil, fmt.Errorf("%w: range token %q", models.ErrInvalidFormat, candidate)
			}
			token = candidate
		}
		if token != "" {
			var unit *models.Season
			if t == models.MediaTypeTV {
				unit = item.SeasonByNumber(change.SeasonNumber)
			} else {
				unit = item.TomeGroup()
			}
			if unit != nil && ranges.Upper(token) > len(unit.Contents) {
				return nil, fmt.Errorf("%w: range %q exceeds %d known contents", models.ErrInvalidFormat, token, len(unit.Contents))
			}
		}
	}

	progress, err := c.ensureTracked(userID, item)
	if err != nil {
		return nil, err
	}

	if t.HasContents() {
		sp := progress.SeasonByNumber(change.SeasonNumber)
		if sp == nil {
			progress.Seasons = append(progress.Seasons, models.SeasonProgress{SeasonNumber: change.SeasonNumber})
			sp = &progress.Seasons[len(progress.Seasons)-1]
		}
		sp.Watched = token
	} else {
		progress.Consumed = change.Consumed
	}

	progress.Status = status.Derive(item, progress, false, c.statusOptions(userID))
	return c.persist(userID, item, progress)
}

// ToggleGiveUp flips an item between given-up and the status its watch data
// would otherwise derive
func (c *ListController) ToggleGiveUp(userID uint64, t models.MediaType, originalID string) (*EntryView, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	item, err := c.catalog.GetCatalogItem(t, originalID)
	if err != nil {
		return nil, fmt.Errorf("catalog item %s/%s: %w", t, originalID, err)
	}
	progress, err := c.progress.GetProgress(userID, originalID, t)
	if err != nil {
		return nil, fmt.Errorf("progress %s/%s: %w", t, originalID, err)
	}

	if progress.Status == models.StatusGiveUp {
		progress.Status = status.Derive(item, progress, true, c.statusOptions(userID))
	} else {
		progress.Status = models.StatusGiveUp
	}

	return c.persist(userID, item, progress)
}

// SetRank stores a free-text tier label, creating the tracking records first
// if needed. The status is unaffected.
func (c *ListController) SetRank(userID uint64, t models.MediaType, originalID string, rank string) (*EntryView, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	item, err := c.catalog.GetCatalogItem(t, originalID)
	if err != nil {
		return nil, fmt.Errorf("catalog item %s/%s: %w", t, originalID, err)
	}
	progress, err := c.ensureTracked(userID, item)
	if err != nil {
		return nil, err
	}

	progress.Rank = rank
	return c.persist(userID, item, progress)
}

// UserList returns the cached list joined with catalog display info. Entries
// whose catalog item disappeared are filtered out.
func (c *ListController) UserList(userID uint64) ([]ListRow, error) {
	list, err := c.list.GetList(userID)
	if err != nil {
		return nil, err
	}

	rows := make([]ListRow, 0, len(list.Entries))
	for _, entry := range list.Entries {
		item, err := c.catalog.GetCatalogItem(entry.Type, entry.ItemID)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"type":    entry.Type,
				"item_id": entry.ItemID,
			}).Warn("List entry without catalog item, skipping")
			continue
		}
		rows = append(rows, ListRow{
			ListEntry: entry,
			Catalog:   CatalogInfo{Title: item.Title, Overview: item.Overview, Image: item.Image},
		})
	}
	return rows, nil
}

// ListRow is one joined row of the user's rendered list
type ListRow struct {
	models.ListEntry
	Catalog CatalogInfo `json:"catalog"`
}

// Progress returns the raw progress record for the edit modal
func (c *ListController) Progress(userID uint64, t models.MediaType, originalID string) (*models.UserProgress, error) {
	return c.progress.GetProgress(userID, originalID, t)
}

// ensureTracked returns the existing progress record for an item, creating
// the record and its preview list entry when the user never added it. The
// implicit-add operations (update, rank) funnel through here.
func (c *ListController) ensureTracked(userID uint64, item *models.CatalogItem) (*models.UserProgress, error) {
	progress, err := c.progress.GetProgress(userID, item.OriginalID, item.Type)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	progress = &models.UserProgress{
		UserID: userID,
		ItemID: item.OriginalID,
		Type:   item.Type,
		Status: models.StatusToWatch,
	}
	if err := c.progress.UpsertProgress(progress); err != nil {
		return nil, err
	}

	text := lexicon.Render(item, nil, c.lexiconFor(userID))
	entry := models.ListEntry{
		ItemID:  item.OriginalID,
		Type:    item.Type,
		Text:    text,
		Checked: false,
		Status:  models.StatusToWatch,
	}
	if err := c.list.AppendEntry(userID, entry); err != nil {
		return nil, err
	}
	return progress, nil
}

// persist writes an already-mutated progress record, re-renders the cached
// text and rewrites the list entry. Both views reflect the new state before
// the call returns.
func (c *ListController) persist(userID uint64, item *models.CatalogItem, progress *models.UserProgress) (*EntryView, error) {
	if err := c.progress.UpsertProgress(progress); err != nil {
		return nil, err
	}

	text := lexicon.Render(item, progress, c.lexiconFor(userID))
	if err := c.list.ReplaceEntryFields(userID, item.OriginalID, item.Type, text, progress.Status, progress.Status.Checked()); err != nil {
		return nil, err
	}

	return c.view(item, progress, text), nil
}

func (c *ListController) view(item *models.CatalogItem, progress *models.UserProgress, text string) *EntryView {
	return &EntryView{
		ID:      item.OriginalID,
		Type:    item.Type,
		Text:    text,
		Status:  progress.Status,
		Checked: progress.Status.Checked(),
	}
}
