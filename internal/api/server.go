package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/api/handlers"
	"github.com/PaulExplorer/OeuvresTrack/internal/api/middleware"
	"github.com/PaulExplorer/OeuvresTrack/internal/config"
	"github.com/PaulExplorer/OeuvresTrack/internal/controllers"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/booknode"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/tmdb"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	db          *models.Database
	listCtrl    *controllers.ListController
	catalogCtrl *controllers.CatalogController
	screen      *tmdb.Client
	books       *booknode.Client
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	db *models.Database,
	listCtrl *controllers.ListController,
	catalogCtrl *controllers.CatalogController,
	screen *tmdb.Client,
	books *booknode.Client,
	logger *logrus.Logger,
) *Server {
	s := &Server{
		db:          db,
		listCtrl:    listCtrl,
		catalogCtrl: catalogCtrl,
		screen:      screen,
		books:       books,
		logger:      logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.Handle("GET /health", healthHandler)

	listHandler := handlers.NewListHandler(s.listCtrl, s.catalogCtrl, s.logger)
	mux.HandleFunc("GET /api/users/{user}/list", listHandler.List)
	mux.HandleFunc("GET /api/users/{user}/list/hard", listHandler.HardReload)
	mux.HandleFunc("GET /api/users/{user}/tierlist", listHandler.TierList)
	mux.HandleFunc("POST /api/users/{user}/list/{type}/{id}", listHandler.Add)
	mux.HandleFunc("DELETE /api/users/{user}/list/{type}/{id}", listHandler.Remove)
	mux.HandleFunc("PUT /api/users/{user}/list/{type}/{id}", listHandler.Update)
	mux.HandleFunc("GET /api/users/{user}/list/{type}/{id}", listHandler.Get)
	mux.HandleFunc("POST /api/users/{user}/list/{type}/{id}/giveup", listHandler.GiveUp)
	mux.HandleFunc("POST /api/users/{user}/list/{type}/{id}/rank", listHandler.Rank)

	catalogHandler := handlers.NewCatalogHandler(s.catalogCtrl, s.screen, s.books, s.db, s.logger)
	mux.HandleFunc("GET /api/users/{user}/search/{type}/{query}", catalogHandler.Search)
	mux.HandleFunc("GET /api/catalog/{type}/{id}", catalogHandler.Get)

	settingsHandler := handlers.NewSettingsHandler(s.db, s.logger)
	mux.HandleFunc("GET /api/users/{user}/settings", settingsHandler.Get)
	mux.HandleFunc("POST /api/users/{user}/settings/{key}/{value}", settingsHandler.Set)
	mux.HandleFunc("GET /api/users/{user}/lexicon", settingsHandler.GetLexicon)
	mux.HandleFunc("PUT /api/users/{user}/lexicon", settingsHandler.SetLexicon)
	mux.HandleFunc("POST /api/users/{user}/subscriptions", settingsHandler.Subscribe)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
