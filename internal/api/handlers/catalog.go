package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/controllers"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/booknode"
	"github.com/PaulExplorer/OeuvresTrack/internal/services/tmdb"
)

// CatalogHandler handles catalog search and lookup endpoints
type CatalogHandler struct {
	catalog *controllers.CatalogController
	screen  *tmdb.Client
	books   *booknode.Client
	db      *models.Database
	logger  *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *controllers.CatalogController, screen *tmdb.Client, books *booknode.Client, db *models.Database, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		screen:  screen,
		books:   books,
		db:      db,
		logger:  logger,
	}
}

// Search searches the source catalogs. Movie and tv queries go to TMDB
// and honor the user's adult-result setting; book queries go to Booknode
// and cover both standalone books and series.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	query := r.PathValue("query")

	settings, err := h.db.GetSettings(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user settings")
		writeError(w, err)
		return
	}

	var result *tmdb.SearchResult
	switch models.MediaType(r.PathValue("type")) {
	case models.MediaTypeMovie:
		result, err = h.screen.SearchMovies(r.Context(), query, settings.IncludeAdult)
	case models.MediaTypeTV:
		result, err = h.screen.SearchTV(r.Context(), query, settings.IncludeAdult)
	case models.MediaTypeBook, models.MediaTypeBookSeries:
		result, err = h.books.Search(r.Context(), query)
	default:
		writeError(w, models.ErrInvalidFormat)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("query", query).Error("Catalog search failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get returns a catalog item, fetching it from its source catalog when it
// is not known yet
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := mediaType(r)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.GetOrFetch(r.Context(), t, r.PathValue("id"))
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"type": t,
			"id":   r.PathValue("id"),
		}).Error("Failed to resolve catalog item")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}
