package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Catalog operations

// CreateCatalogItem inserts a new catalog item and assigns its internal id
func (db *Database) CreateCatalogItem(item *CatalogItem) error {
	return db.store.Insert(bolthold.NextSequence(), item)
}

// UpdateCatalogItem updates an existing catalog item in place
func (db *Database) UpdateCatalogItem(item *CatalogItem) error {
	return db.store.Update(item.ID, item)
}

// GetCatalogItem retrieves a catalog item by source id and type
func (db *Database) GetCatalogItem(t MediaType, originalID string) (*CatalogItem, error) {
	var item CatalogItem
	err := db.store.FindOne(&item, bolthold.Where("OriginalID").Eq(originalID).And("Type").Eq(t))
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetCatalogItemByID retrieves a catalog item by internal id
func (db *Database) GetCatalogItemByID(id uint64) (*CatalogItem, error) {
	var item CatalogItem
	err := db.store.Get(id, &item)
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// CatalogItemsDueRefresh retrieves catalog items whose recommended refresh
// date has passed
func (db *Database) CatalogItemsDueRefresh(now time.Time) ([]*CatalogItem, error) {
	var items []*CatalogItem
	if err := db.store.Find(&items, nil); err != nil {
		return nil, err
	}

	var due []*CatalogItem
	for _, item := range items {
		if !item.RecommendedRefresh.After(now) {
			due = append(due, item)
		}
	}
	return due, nil
}

// Progress operations

// GetProgress retrieves one user's progress record for an item
func (db *Database) GetProgress(userID uint64, itemID string, t MediaType) (*UserProgress, error) {
	var progress UserProgress
	err := db.store.FindOne(&progress,
		bolthold.Where("UserID").Eq(userID).And("ItemID").Eq(itemID).And("Type").Eq(t))
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// UpsertProgress inserts or updates a progress record
func (db *Database) UpsertProgress(progress *UserProgress) error {
	progress.UpdatedAt = time.Now()
	if progress.ID == 0 {
		progress.CreatedAt = progress.UpdatedAt
		return db.store.Insert(bolthold.NextSequence(), progress)
	}
	return db.store.Update(progress.ID, progress)
}

// DeleteProgress deletes one user's progress record for an item
func (db *Database) DeleteProgress(userID uint64, itemID string, t MediaType) error {
	progress, err := db.GetProgress(userID, itemID, t)
	if err != nil {
		return err
	}
	return db.store.Delete(progress.ID, &UserProgress{})
}

// ProgressByUser retrieves all progress records of one user
func (db *Database) ProgressByUser(userID uint64) ([]*UserProgress, error) {
	var progresses []*UserProgress
	err := db.store.Find(&progresses, bolthold.Where("UserID").Eq(userID))
	return progresses, err
}

// ProgressByItem retrieves the progress records of every user tracking an
// item, used to resolve notification followers
func (db *Database) ProgressByItem(itemID string, t MediaType) ([]*UserProgress, error) {
	var progresses []*UserProgress
	err := db.store.Find(&progresses, bolthold.Where("ItemID").Eq(itemID).And("Type").Eq(t))
	return progresses, err
}

// BulkSetStatus writes a batch of already-mutated progress records inside a
// single transaction
func (db *Database) BulkSetStatus(progresses []*UserProgress) error {
	if len(progresses) == 0 {
		return nil
	}
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		for _, progress := range progresses {
			progress.UpdatedAt = time.Now()
			if err := db.store.TxUpdate(tx, progress.ID, progress); err != nil {
				return err
			}
		}
		return nil
	})
}

// List operations

// GetList retrieves a user's cached list, or an empty one if none exists yet
func (db *Database) GetList(userID uint64) (*UserList, error) {
	var list UserList
	err := db.store.FindOne(&list, bolthold.Where("UserID").Eq(userID))
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return &UserList{UserID: userID}, nil
		}
		return nil, err
	}
	return &list, nil
}

func (db *Database) saveList(list *UserList) error {
	if list.ID == 0 {
		return db.store.Insert(bolthold.NextSequence(), list)
	}
	return db.store.Update(list.ID, list)
}

// AppendEntry appends one entry to a user's list
func (db *Database) AppendEntry(userID uint64, entry ListEntry) error {
	list, err := db.GetList(userID)
	if err != nil {
		return err
	}
	list.Entries = append(list.Entries, entry)
	return db.saveList(list)
}

// RemoveEntry removes the entry matching (itemID, type) from a user's list
func (db *Database) RemoveEntry(userID uint64, itemID string, t MediaType) error {
	list, err := db.GetList(userID)
	if err != nil {
		return err
	}
	i := list.EntryIndex(itemID, t)
	if i < 0 {
		return nil
	}
	list.Entries = append(list.Entries[:i], list.Entries[i+1:]...)
	return db.saveList(list)
}

// ReplaceEntryFields rewrites the cached fields of one list entry
func (db *Database) ReplaceEntryFields(userID uint64, itemID string, t MediaType, text string, status Status, checked bool) error {
	list, err := db.GetList(userID)
	if err != nil {
		return err
	}
	i := list.EntryIndex(itemID, t)
	if i < 0 {
		return ErrNotFound
	}
	list.Entries[i].Text = text
	list.Entries[i].Status = status
	list.Entries[i].Checked = checked
	return db.saveList(list)
}

// ReplaceList rewrites a user's whole cached list in one write
func (db *Database) ReplaceList(userID uint64, entries []ListEntry) error {
	list, err := db.GetList(userID)
	if err != nil {
		return err
	}
	list.Entries = entries
	return db.saveList(list)
}

// Settings operations

// GetSettings retrieves a user's settings, falling back to defaults
func (db *Database) GetSettings(userID uint64) (*UserSettings, error) {
	var settings UserSettings
	err := db.store.FindOne(&settings, bolthold.Where("UserID").Eq(userID))
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return &UserSettings{UserID: userID, IgnoreSpecials: true}, nil
		}
		return nil, err
	}
	return &settings, nil
}

// SaveSettings inserts or updates a settings record
func (db *Database) SaveSettings(settings *UserSettings) error {
	if settings.ID == 0 {
		return db.store.Insert(bolthold.NextSequence(), settings)
	}
	return db.store.Update(settings.ID, settings)
}

// GetLexicon retrieves a user's custom lexicon, nil when unset
func (db *Database) GetLexicon(userID uint64) (Lexicon, error) {
	settings, err := db.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	if len(settings.Lexicon) == 0 {
		return nil, nil
	}
	return settings.Lexicon, nil
}

// SetLexicon stores a user's custom lexicon
func (db *Database) SetLexicon(userID uint64, lexicon Lexicon) error {
	settings, err := db.GetSettings(userID)
	if err != nil {
		return err
	}
	settings.Lexicon = lexicon
	return db.SaveSettings(settings)
}

// Subscription operations

// AddSubscription registers a push endpoint for a user, ignoring duplicates
func (db *Database) AddSubscription(userID uint64, sub Subscription) error {
	settings, err := db.GetSettings(userID)
	if err != nil {
		return err
	}
	for _, existing := range settings.Subscriptions {
		if existing.Endpoint == sub.Endpoint {
			return nil
		}
	}
	settings.Subscriptions = append(settings.Subscriptions, sub)
	return db.SaveSettings(settings)
}

// Subscriptions retrieves the push endpoints of a user
func (db *Database) Subscriptions(userID uint64) ([]Subscription, error) {
	settings, err := db.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	return settings.Subscriptions, nil
}

// RemoveSubscription drops a push endpoint that is no longer reachable
func (db *Database) RemoveSubscription(userID uint64, endpoint string) error {
	settings, err := db.GetSettings(userID)
	if err != nil {
		return err
	}
	kept := settings.Subscriptions[:0]
	for _, sub := range settings.Subscriptions {
		if sub.Endpoint != endpoint {
			kept = append(kept, sub)
		}
	}
	settings.Subscriptions = kept
	return db.SaveSettings(settings)
}
