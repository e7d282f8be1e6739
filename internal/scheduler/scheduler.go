package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/controllers"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

// Scheduler manages the periodic catalog refresh
type Scheduler struct {
	cron            *cron.Cron
	catalogCtrl     *controllers.CatalogController
	notifyCtrl      *controllers.NotifyController
	db              *models.Database
	intervalMinutes int
	logger          *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	catalogCtrl *controllers.CatalogController,
	notifyCtrl *controllers.NotifyController,
	db *models.Database,
	intervalMinutes int,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		catalogCtrl:     catalogCtrl,
		notifyCtrl:      notifyCtrl,
		db:              db,
		intervalMinutes: intervalMinutes,
		logger:          logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	spec := fmt.Sprintf("@every %dm", s.intervalMinutes)
	_, err := s.cron.AddFunc(spec, func() {
		s.runRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("interval_minutes", s.intervalMinutes).Info("Scheduler started")

	// Run an initial refresh pass immediately
	go s.runRefresh()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runRefresh re-fetches every catalog item whose recommended refresh date
// has passed and notifies followers of items that gained content
func (s *Scheduler) runRefresh() {
	s.logger.Info("Running scheduled catalog refresh")
	ctx := context.Background()

	due, err := s.db.CatalogItemsDueRefresh(time.Now())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list items due for refresh")
		return
	}

	refreshed := 0
	for _, item := range due {
		changes, err := s.catalogCtrl.Refresh(ctx, item)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"id":    item.ID,
				"title": item.Title,
			}).Error("Failed to refresh catalog item")
			continue
		}
		refreshed++

		if len(changes) > 0 {
			s.notifyCtrl.NotifyFollowers(ctx, item, changes)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"due":       len(due),
		"refreshed": refreshed,
	}).Info("Catalog refresh completed")
}
