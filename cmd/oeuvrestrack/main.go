package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/PaulExplorer/OeuvresTrack/internal/api"
	"github.com/PaulExplorer/OeuvresTrack/internal/config"
	"github.com/PaulExplorer/OeuvresTrack/internal/controllers"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/scheduler"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/booknode"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/push"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/tmdb"
	"github.com/PaulExplorer/OeuvresTrack/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting OeuvresTrack")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	tmdbClient, err := tmdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize TMDB client: %w", err)
	}
	logger.Info("TMDB client initialized")

	booknodeClient, err := booknode.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Booknode client: %w", err)
	}
	logger.Info("Booknode client initialized")

	pushClient := push.NewClient(logger)

	// 5. Initialize controllers
	catalogCtrl := controllers.NewCatalogController(db, tmdbClient, booknodeClient, logger)
	listCtrl := controllers.NewListController(db, db, db, db, logger)
	notifyCtrl := controllers.NewNotifyController(db, db, pushClient, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(catalogCtrl, notifyCtrl, db, cfg.RefreshIntervalMinutes, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, listCtrl, catalogCtrl, tmdbClient, booknodeClient, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("OeuvresTrack is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("OeuvresTrack stopped")
	return nil
}
