package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/models"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var (
		validationErr *models.ValidationError
		deliveryErr   *models.DeliveryError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "Link not found")
	case errors.Is(err, models.ErrExpired):
		writeError(w, http.StatusGone, "Link has expired")
	case errors.Is(err, models.ErrAlreadyAnswered):
		writeError(w, http.StatusConflict, "Link has already been answered")
	case errors.As(err, &deliveryErr):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to send notification",
			Details: deliveryErr.Err.Error(),
		})
	default:
		logger.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
}
