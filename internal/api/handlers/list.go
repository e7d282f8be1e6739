package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/controllers"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

// ListHandler handles the per-user tracked list endpoints
type ListHandler struct {
	list    *controllers.ListController
	catalog *controllers.CatalogController
	logger  *logrus.Logger
}

// NewListHandler creates a new list handler
func NewListHandler(list *controllers.ListController, catalog *controllers.CatalogController, logger *logrus.Logger) *ListHandler {
	return &ListHandler{
		list:    list,
		catalog: catalog,
		logger:  logger,
	}
}

// List returns the cached list of a user
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := h.list.UserList(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user list")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"list": rows})
}

// HardReload recomputes every cached entry of a user's list
func (h *ListHandler) HardReload(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.list.HardReload(user)
	if err != nil {
		h.logger.WithError(err).Error("Hard reload failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"list": entries})
}

// Add starts tracking an item for a user, fetching it into the catalog if
// it is not known yet
func (h *ListHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, t, id, err := pathParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.catalog.GetOrFetch(r.Context(), t, id); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"type": t,
			"id":   id,
		}).Error("Failed to resolve catalog item")
		writeError(w, err)
		return
	}

	view, err := h.list.AddItem(user, t, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, view)
}

// Remove stops tracking an item for a user
func (h *ListHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, t, id, err := pathParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.list.RemoveItem(user, t, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Get returns the catalog item together with the user's progress on it
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, t, id, err := pathParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.GetOrFetch(r.Context(), t, id)
	if err != nil {
		writeError(w, err)
		return
	}

	progress, err := h.list.Progress(user, t, id)
	if err != nil && !isNotFound(err) {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"catalog":  item,
		"progress": progress,
	})
}

type updateRequest struct {
	SeasonNumber int             `json:"season_number"`
	Changes      json.RawMessage `json:"changes"`
}

// Update applies a progress change: a bool for movies and standalone
// books, a list of range tokens for tv seasons and book series
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, t, id, err := pathParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrInvalidFormat)
		return
	}

	change := controllers.ProgressChange{SeasonNumber: req.SeasonNumber}
	var consumed bool
	var tokens []string
	switch {
	case json.Unmarshal(req.Changes, &consumed) == nil:
		change.Consumed = consumed
	case json.Unmarshal(req.Changes, &tokens) == nil:
		change.Ranges = tokens
	default:
		writeError(w, models.ErrInvalidFormat)
		return
	}

	view, err := h.list.UpdateProgress(user, t, id, change)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, view)
}

// GiveUp toggles the given-up state of a tracked item
func (h *ListHandler) GiveUp(w http.ResponseWriter, r *http.Request) {
	user, t, id, err := pathParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.list.ToggleGiveUp(user, t, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, view)
}

type rankRequest struct {
	Rank string `json:"rank"`
}

// Rank sets the user's rank for a tracked item
func (h *ListHandler) Rank(w http.ResponseWriter, r *http.Request) {
	user, t, id, err := pathParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrInvalidFormat)
		return
	}

	view, err := h.list.SetRank(user, t, id, req.Rank)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, view)
}

// TierList returns the user's checked items grouped by rank
func (h *ListHandler) TierList(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tiers, err := h.list.BuildTierList(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build tier list")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tiers)
}

func pathParams(r *http.Request) (uint64, models.MediaType, string, error) {
	user, err := userID(r)
	if err != nil {
		return 0, "", "", err
	}
	t, err := mediaType(r)
	if err != nil {
		return 0, "", "", err
	}
	return user, t, r.PathValue("id"), nil
}
