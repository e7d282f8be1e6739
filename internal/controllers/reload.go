package controllers

import (
	"github.com/PaulExplorer/OeuvresTrack/internal/lexicon"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/status"
	"github.com/sirupsen/logrus"
)

// HardReload recomputes status and display text for every entry of a user's
// list against the current catalog, batching the status-changing progress
// writes and rewriting the whole cached list in one write. Running it twice
// without catalog drift produces the same state and no status writes; it is
// the repair path for upstream content changes and for the crash window
// between the two writes of a normal mutation.
func (c *ListController) HardReload(userID uint64) ([]models.ListEntry, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	list, err := c.list.GetList(userID)
	if err != nil {
		return nil, err
	}
	if len(list.Entries) == 0 {
		return list.Entries, nil
	}

	lex := c.lexiconFor(userID)
	opts := c.statusOptions(userID)

	var statusWrites []*models.UserProgress

	for i := range list.Entries {
		entry := &list.Entries[i]

		item, err := c.catalog.GetCatalogItem(entry.Type, entry.ItemID)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"type":    entry.Type,
				"item_id": entry.ItemID,
			}).WithError(err).Warn("Skipping entry without catalog item")
			continue
		}

		progress, err := c.progress.GetProgress(userID, entry.ItemID, entry.Type)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"type":    entry.Type,
				"item_id": entry.ItemID,
			}).WithError(err).Warn("Skipping entry without progress record")
			continue
		}

		derived := status.Derive(item, progress, false, opts)
		if derived != progress.Status {
			progress.Status = derived
			statusWrites = append(statusWrites, progress)
		}

		entry.Status = progress.Status
		entry.Checked = progress.Status.Checked()
		entry.Text = lexicon.Render(item, progress, lex)
	}

	if err := c.progress.BulkSetStatus(statusWrites); err != nil {
		return nil, err
	}
	if err := c.list.ReplaceList(userID, list.Entries); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"entries":        len(list.Entries),
		"status_changes": len(statusWrites),
	}).Info("Hard reload completed")

	return list.Entries, nil
}
