package controllers

import (
	"context"
	"time"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/push"
)

// The controllers own every write to progress records and cached lists; the
// stores below are the narrow surfaces they consume. *models.Database
// satisfies all of them.

// CatalogLookup resolves catalog items already present in the shared catalog
type CatalogLookup interface {
	GetCatalogItem(t models.MediaType, originalID string) (*models.CatalogItem, error)
}

// CatalogStore extends CatalogLookup with the write side used by the
// catalog controller and the refresh job
type CatalogStore interface {
	CatalogLookup
	GetCatalogItemByID(id uint64) (*models.CatalogItem, error)
	CreateCatalogItem(item *models.CatalogItem) error
	UpdateCatalogItem(item *models.CatalogItem) error
	CatalogItemsDueRefresh(now time.Time) ([]*models.CatalogItem, error)
}

// ProgressStore persists per-user progress records
type ProgressStore interface {
	GetProgress(userID uint64, itemID string, t models.MediaType) (*models.UserProgress, error)
	UpsertProgress(progress *models.UserProgress) error
	DeleteProgress(userID uint64, itemID string, t models.MediaType) error
	ProgressByUser(userID uint64) ([]*models.UserProgress, error)
	ProgressByItem(itemID string, t models.MediaType) ([]*models.UserProgress, error)
	BulkSetStatus(progresses []*models.UserProgress) error
}

// ListStore persists the denormalized cached lists
type ListStore interface {
	GetList(userID uint64) (*models.UserList, error)
	AppendEntry(userID uint64, entry models.ListEntry) error
	RemoveEntry(userID uint64, itemID string, t models.MediaType) error
	ReplaceEntryFields(userID uint64, itemID string, t models.MediaType, text string, status models.Status, checked bool) error
	ReplaceList(userID uint64, entries []models.ListEntry) error
}

// SettingsStore persists per-user settings and lexicons. GetLexicon returns
// nil when the user never customized theirs.
type SettingsStore interface {
	GetSettings(userID uint64) (*models.UserSettings, error)
	SaveSettings(settings *models.UserSettings) error
	GetLexicon(userID uint64) (models.Lexicon, error)
	SetLexicon(userID uint64, lex models.Lexicon) error
}

// SubscriptionStore persists push endpoints
type SubscriptionStore interface {
	Subscriptions(userID uint64) ([]models.Subscription, error)
	RemoveSubscription(userID uint64, endpoint string) error
}

// ScreenFetcher retrieves movie and tv metadata from the source catalog
type ScreenFetcher interface {
	Movie(ctx context.Context, originalID string) (*models.CatalogItem, error)
	TV(ctx context.Context, originalID string) (*models.CatalogItem, error)
}

// BookFetcher retrieves book and book-series metadata from the source catalog
type BookFetcher interface {
	Book(ctx context.Context, originalID string) (*models.CatalogItem, error)
	Series(ctx context.Context, originalID string) (*models.CatalogItem, error)
}

// PushSender delivers one notification payload to one subscription
type PushSender interface {
	Send(ctx context.Context, sub models.Subscription, payload push.Payload) error
}
