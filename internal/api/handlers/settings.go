package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/PaulExplorer/OeuvresTrack/internal/lexicon"
	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

// SettingsHandler handles per-user settings, lexicon and push subscriptions
type SettingsHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(db *models.Database, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{db: db, logger: logger}
}

// Get returns the user's settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.db.GetSettings(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load settings")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// Set flips one boolean setting named by the {key}/{value} path segments
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	key := r.PathValue("key")
	value := r.PathValue("value") == "true"

	settings, err := h.db.GetSettings(user)
	if err != nil {
		writeError(w, err)
		return
	}

	switch key {
	case "adult-result":
		settings.IncludeAdult = value
	case "ignore-overs":
		settings.IgnoreSpecials = value
	default:
		writeError(w, models.ErrInvalidFormat)
		return
	}

	settings.UserID = user
	if err := h.db.SaveSettings(settings); err != nil {
		h.logger.WithError(err).Error("Failed to save settings")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"key":    key,
		"value":  value,
	})
}

// GetLexicon returns the user's lexicon, falling back to the default when
// it was never customized
func (h *SettingsHandler) GetLexicon(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lex, err := h.db.GetLexicon(user)
	if err != nil {
		writeError(w, err)
		return
	}
	if lex == nil {
		lex = lexicon.Default()
	}

	writeJSON(w, http.StatusOK, lex)
}

// SetLexicon validates and stores a customized lexicon
func (h *SettingsHandler) SetLexicon(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var lex models.Lexicon
	if err := json.NewDecoder(r.Body).Decode(&lex); err != nil {
		writeError(w, models.ErrInvalidFormat)
		return
	}

	if err := lexicon.Validate(lex); err != nil {
		writeError(w, err)
		return
	}

	if err := h.db.SetLexicon(user, lex); err != nil {
		h.logger.WithError(err).Error("Failed to save lexicon")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Subscribe registers a push subscription for the user
func (h *SettingsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var sub models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || sub.Endpoint == "" {
		writeError(w, models.ErrInvalidFormat)
		return
	}

	if err := h.db.AddSubscription(user, sub); err != nil {
		h.logger.WithError(err).Error("Failed to store subscription")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}
