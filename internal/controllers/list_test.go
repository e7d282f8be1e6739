package controllers

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

type fakeStore struct {
	items    map[string]*models.CatalogItem
	progress map[string]*models.UserProgress
	lists    map[uint64]*models.UserList
	settings map[uint64]*models.UserSettings
	lexicons map[uint64]models.Lexicon

	nextID      uint64
	bulkWrites  int
	bulkRecords int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:    make(map[string]*models.CatalogItem),
		progress: make(map[string]*models.UserProgress),
		lists:    make(map[uint64]*models.UserList),
		settings: make(map[uint64]*models.UserSettings),
		lexicons: make(map[uint64]models.Lexicon),
	}
}

func itemKey(t models.MediaType, id string) string {
	return string(t) + "/" + id
}

func progressKey(userID uint64, itemID string, t models.MediaType) string {
	return fmt.Sprintf("%d/%s/%s", userID, t, itemID)
}

func (s *fakeStore) addItem(item *models.CatalogItem) {
	s.items[itemKey(item.Type, item.OriginalID)] = item
}

func (s *fakeStore) GetCatalogItem(t models.MediaType, originalID string) (*models.CatalogItem, error) {
	item, ok := s.items[itemKey(t, originalID)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return item, nil
}

func (s *fakeStore) GetProgress(userID uint64, itemID string, t models.MediaType) (*models.UserProgress, error) {
	p, ok := s.progress[progressKey(userID, itemID, t)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) UpsertProgress(progress *models.UserProgress) error {
	if progress.ID == 0 {
		s.nextID++
		progress.ID = s.nextID
	}
	s.progress[progressKey(progress.UserID, progress.ItemID, progress.Type)] = progress
	return nil
}

func (s *fakeStore) DeleteProgress(userID uint64, itemID string, t models.MediaType) error {
	delete(s.progress, progressKey(userID, itemID, t))
	return nil
}

func (s *fakeStore) ProgressByUser(userID uint64) ([]*models.UserProgress, error) {
	var out []*models.UserProgress
	for _, p := range s.progress {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) ProgressByItem(itemID string, t models.MediaType) ([]*models.UserProgress, error) {
	var out []*models.UserProgress
	for _, p := range s.progress {
		if p.ItemID == itemID && p.Type == t {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) BulkSetStatus(progresses []*models.UserProgress) error {
	if len(progresses) == 0 {
		return nil
	}
	s.bulkWrites++
	s.bulkRecords += len(progresses)
	for _, p := range progresses {
		s.progress[progressKey(p.UserID, p.ItemID, p.Type)] = p
	}
	return nil
}

func (s *fakeStore) GetList(userID uint64) (*models.UserList, error) {
	list, ok := s.lists[userID]
	if !ok {
		return &models.UserList{UserID: userID}, nil
	}
	return list, nil
}

func (s *fakeStore) AppendEntry(userID uint64, entry models.ListEntry) error {
	list, _ := s.GetList(userID)
	list.Entries = append(list.Entries, entry)
	s.lists[userID] = list
	return nil
}

func (s *fakeStore) RemoveEntry(userID uint64, itemID string, t models.MediaType) error {
	list, _ := s.GetList(userID)
	if i := list.EntryIndex(itemID, t); i >= 0 {
		list.Entries = append(list.Entries[:i], list.Entries[i+1:]...)
	}
	s.lists[userID] = list
	return nil
}

func (s *fakeStore) ReplaceEntryFields(userID uint64, itemID string, t models.MediaType, text string, status models.Status, checked bool) error {
	list, _ := s.GetList(userID)
	i := list.EntryIndex(itemID, t)
	if i < 0 {
		return models.ErrNotFound
	}
	list.Entries[i].Text = text
	list.Entries[i].Status = status
	list.Entries[i].Checked = checked
	s.lists[userID] = list
	return nil
}

func (s *fakeStore) ReplaceList(userID uint64, entries []models.ListEntry) error {
	list, _ := s.GetList(userID)
	list.Entries = entries
	s.lists[userID] = list
	return nil
}

func (s *fakeStore) GetSettings(userID uint64) (*models.UserSettings, error) {
	if settings, ok := s.settings[userID]; ok {
		return settings, nil
	}
	return &models.UserSettings{UserID: userID, IgnoreSpecials: true}, nil
}

func (s *fakeStore) SaveSettings(settings *models.UserSettings) error {
	s.settings[settings.UserID] = settings
	return nil
}

func (s *fakeStore) GetLexicon(userID uint64) (models.Lexicon, error) {
	return s.lexicons[userID], nil
}

func (s *fakeStore) SetLexicon(userID uint64, lex models.Lexicon) error {
	s.lexicons[userID] = lex
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestController(store *fakeStore) *ListController {
	return NewListController(store, store, store, store, testLogger())
}

func testShow() *models.CatalogItem {
	episodes := make([]string, 12)
	for i := range episodes {
		episodes[i] = fmt.Sprintf("Episode %d", i+1)
	}
	return &models.CatalogItem{
		ID:         1,
		OriginalID: "100",
		Type:       models.MediaTypeTV,
		Title:      "Title",
		Finished:   true,
		Contents: []models.Season{
			{SeasonNumber: 1, Contents: episodes, Finished: true},
		},
	}
}

func TestAddAndRemoveItem(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	view, err := ctrl.AddItem(7, models.MediaTypeTV, "100")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if view.Status != models.StatusToWatch || view.Checked {
		t.Errorf("Expected unchecked towatch entry, got %s checked=%t", view.Status, view.Checked)
	}
	if view.Text != "Title" {
		t.Errorf("Expected preview text %q, got %q", "Title", view.Text)
	}
	if view.Catalog == nil || view.Catalog.Title != "Title" {
		t.Errorf("Expected catalog info on add")
	}

	list, _ := store.GetList(7)
	if len(list.Entries) != 1 {
		t.Fatalf("Expected 1 list entry, got %d", len(list.Entries))
	}

	if err := ctrl.RemoveItem(7, models.MediaTypeTV, "100"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	list, _ = store.GetList(7)
	if len(list.Entries) != 0 {
		t.Errorf("Expected empty list after remove, got %d entries", len(list.Entries))
	}
	if _, err := store.GetProgress(7, "100", models.MediaTypeTV); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected progress record gone after remove")
	}
}

func TestAddItemTwice(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	if _, err := ctrl.AddItem(7, models.MediaTypeTV, "100"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := ctrl.AddItem(7, models.MediaTypeTV, "100"); !errors.Is(err, models.ErrAlreadyTracked) {
		t.Fatalf("Expected ErrAlreadyTracked, got %v", err)
	}

	list, _ := store.GetList(7)
	if len(list.Entries) != 1 {
		t.Errorf("Duplicate add must not duplicate the entry, got %d", len(list.Entries))
	}
}

func TestRemoveUntracked(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	if err := ctrl.RemoveItem(7, models.MediaTypeTV, "100"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProgressLifecycle(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	// implicit add: update without a prior AddItem creates the records
	view, err := ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"1-5"},
	})
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if view.Status != models.StatusOnWatch {
		t.Errorf("Expected onwatch, got %s", view.Status)
	}

	view, err = ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"1-12"},
	})
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if view.Status != models.StatusDone || !view.Checked {
		t.Errorf("Expected checked done, got %s checked=%t", view.Status, view.Checked)
	}
	if view.Text != "<del> Title s1 e12 </del>" {
		t.Errorf("Unexpected rendered text %q", view.Text)
	}

	list, _ := store.GetList(7)
	if list.Entries[0].Text != view.Text || list.Entries[0].Status != view.Status {
		t.Errorf("Cached entry out of sync with returned view")
	}
}

func TestUpdateProgressLastTokenWins(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	if _, err := ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"1-3", "1-7"},
	}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	progress, err := ctrl.Progress(7, models.MediaTypeTV, "100")
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if got := progress.Seasons[0].Watched; got != "1-7" {
		t.Errorf("Expected last token to win, got %q", got)
	}
}

func TestUpdateProgressInvalidToken(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	if _, err := ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"1-5"},
	}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	_, err := ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"7-3"},
	})
	if !errors.Is(err, models.ErrInvalidFormat) {
		t.Fatalf("Expected ErrInvalidFormat, got %v", err)
	}

	// the rejected update must leave the stored progress untouched
	progress, _ := ctrl.Progress(7, models.MediaTypeTV, "100")
	if got := progress.Seasons[0].Watched; got != "1-5" {
		t.Errorf("Rejected update mutated progress, got %q", got)
	}
}

func TestUpdateProgressExceedsContents(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	_, err := ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"1-20"},
	})
	if !errors.Is(err, models.ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat for out-of-bounds range, got %v", err)
	}
}

func TestUpdateProgressMovie(t *testing.T) {
	store := newFakeStore()
	store.addItem(&models.CatalogItem{
		ID:         2,
		OriginalID: "200",
		Type:       models.MediaTypeMovie,
		Title:      "Title",
		Finished:   true,
	})
	ctrl := newTestController(store)

	view, err := ctrl.UpdateProgress(7, models.MediaTypeMovie, "200", ProgressChange{Consumed: true})
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if view.Status != models.StatusDone {
		t.Errorf("Expected done, got %s", view.Status)
	}

	view, err = ctrl.UpdateProgress(7, models.MediaTypeMovie, "200", ProgressChange{Consumed: false})
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if view.Status != models.StatusToWatch {
		t.Errorf("Expected towatch after unconsume, got %s", view.Status)
	}
}

func TestToggleGiveUp(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	if _, err := ctrl.ToggleGiveUp(7, models.MediaTypeTV, "100"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for untracked item, got %v", err)
	}

	if _, err := ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"1-12"},
	}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	view, err := ctrl.ToggleGiveUp(7, models.MediaTypeTV, "100")
	if err != nil {
		t.Fatalf("ToggleGiveUp failed: %v", err)
	}
	if view.Status != models.StatusGiveUp || !view.Checked {
		t.Errorf("Expected checked giveup, got %s checked=%t", view.Status, view.Checked)
	}
	if !strings.Contains(view.Text, "(given up)") {
		t.Errorf("Expected give-up marker in text, got %q", view.Text)
	}

	// toggling back recomputes from the watch data
	view, err = ctrl.ToggleGiveUp(7, models.MediaTypeTV, "100")
	if err != nil {
		t.Fatalf("ToggleGiveUp failed: %v", err)
	}
	if view.Status != models.StatusDone {
		t.Errorf("Expected done after un-giveup, got %s", view.Status)
	}
}

func TestSetRankKeepsStatus(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	ctrl := newTestController(store)

	if _, err := ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"1-5"},
	}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	view, err := ctrl.SetRank(7, models.MediaTypeTV, "100", "S")
	if err != nil {
		t.Fatalf("SetRank failed: %v", err)
	}
	if view.Status != models.StatusOnWatch {
		t.Errorf("Rank must not change status, got %s", view.Status)
	}
	if !strings.Contains(view.Text, "<strong>Sr</strong>") {
		t.Errorf("Expected rank fragment in text, got %q", view.Text)
	}
}

func TestBuildTierList(t *testing.T) {
	store := newFakeStore()
	store.addItem(testShow())
	store.addItem(&models.CatalogItem{
		ID:         2,
		OriginalID: "200",
		Type:       models.MediaTypeMovie,
		Title:      "Other",
		Finished:   true,
	})
	ctrl := newTestController(store)

	if _, err := ctrl.SetRank(7, models.MediaTypeTV, "100", "S"); err != nil {
		t.Fatalf("SetRank failed: %v", err)
	}
	if _, err := ctrl.UpdateProgress(7, models.MediaTypeMovie, "200", ProgressChange{Consumed: true}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	tiers, err := ctrl.BuildTierList(7)
	if err != nil {
		t.Fatalf("BuildTierList failed: %v", err)
	}
	if len(tiers["S"]) != 1 || tiers["S"][0].ID != "100" {
		t.Errorf("Expected show in S bucket, got %+v", tiers["S"])
	}
	if len(tiers[TierUnknown]) != 1 || tiers[TierUnknown][0].ID != "200" {
		t.Errorf("Expected unranked movie in Unknown bucket, got %+v", tiers[TierUnknown])
	}
	if len(tiers["F"]) != 0 {
		t.Errorf("Expected empty F bucket")
	}
}

func TestHardReloadRepairsDrift(t *testing.T) {
	store := newFakeStore()
	item := testShow()
	store.addItem(item)
	ctrl := newTestController(store)

	if _, err := ctrl.UpdateProgress(7, models.MediaTypeTV, "100", ProgressChange{
		SeasonNumber: 1,
		Ranges:       []string{"1-12"},
	}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	// the catalog gains an episode behind the user's back
	item.Contents[0].Contents = append(item.Contents[0].Contents, "Episode 13")

	entries, err := ctrl.HardReload(7)
	if err != nil {
		t.Fatalf("HardReload failed: %v", err)
	}
	if entries[0].Status != models.StatusOnWatch || entries[0].Checked {
		t.Errorf("Expected reload to downgrade to onwatch, got %s", entries[0].Status)
	}
	if store.bulkWrites != 1 || store.bulkRecords != 1 {
		t.Errorf("Expected one batched status write, got %d/%d", store.bulkWrites, store.bulkRecords)
	}

	// a second pass without drift must not write statuses again
	if _, err := ctrl.HardReload(7); err != nil {
		t.Fatalf("HardReload failed: %v", err)
	}
	if store.bulkWrites != 1 {
		t.Errorf("Idempotent reload performed a status write")
	}
}

func TestHardReloadEmptyList(t *testing.T) {
	store := newFakeStore()
	ctrl := newTestController(store)

	entries, err := ctrl.HardReload(7)
	if err != nil {
		t.Fatalf("HardReload failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty result, got %d entries", len(entries))
	}
	if store.bulkWrites != 0 {
		t.Errorf("Empty reload must not write")
	}
}
