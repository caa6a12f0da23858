package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/links"
)

type LinkHandler struct {
	links  links.Service
	logger zerolog.Logger
}

type createLinkRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type createLinkResponse struct {
	LinkID string `json:"linkId"`
}

func NewLinkHandler(service links.Service, logger zerolog.Logger) *LinkHandler {
	return &LinkHandler{
		links:  service,
		logger: logger.With().Str("handler", "link").Logger(),
	}
}

func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var payload createLinkRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	id, err := h.links.CreateLink(r.Context(), payload.Email, payload.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, createLinkResponse{LinkID: id})
}

func (h *LinkHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Link ID is required")
		return
	}

	recipient, err := h.links.GetLink(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, recipient)
}
