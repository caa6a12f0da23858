package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stanstork/invite-links/internal/handlers"
)

// NewRouter sets up the API routes
func NewRouter(link *handlers.LinkHandler, notification *handlers.NotificationHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public link endpoints
	router.HandleFunc("/api/create-link", link.CreateLink).Methods(http.MethodPost)
	router.HandleFunc("/api/get-link", link.GetLink).Methods(http.MethodGet)
	router.HandleFunc("/api/send-notification", notification.SendNotification).Methods(http.MethodPost)

	return router
}
