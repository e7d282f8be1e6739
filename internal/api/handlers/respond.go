package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeData wraps a successful payload in the {"status","data"} envelope
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// writeError maps domain errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyTracked):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInvalidFormat), errors.Is(err, models.ErrValidationFailed):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  err.Error(),
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

// userID parses the {user} path segment
func userID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue("user"), 10, 64)
	if err != nil {
		return 0, models.ErrInvalidFormat
	}
	return id, nil
}

// mediaType parses and validates the {type} path segment
func mediaType(r *http.Request) (models.MediaType, error) {
	t := models.MediaType(r.PathValue("type"))
	if !t.Valid() {
		return "", models.ErrInvalidFormat
	}
	return t, nil
}
