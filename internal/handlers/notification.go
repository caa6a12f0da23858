package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/notification"
)

type NotificationHandler struct {
	service notification.Service
	logger  zerolog.Logger
}

type sendNotificationRequest struct {
	LinkID   string `json:"linkId"`
	Response string `json:"response"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type sendNotificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewNotificationHandler(service notification.Service, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

func (h *NotificationHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var payload sendNotificationRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.service.RecordResponse(r.Context(), notification.ResponseRequest{
		LinkID:      payload.LinkID,
		Response:    payload.Response,
		NotifyEmail: payload.Email,
		NotifyName:  payload.Name,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sendNotificationResponse{Success: true, Message: result.Message})
}
