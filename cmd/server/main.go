package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/stanstork/invite-links/internal/config"
	"github.com/stanstork/invite-links/internal/handlers"
	"github.com/stanstork/invite-links/internal/links"
	"github.com/stanstork/invite-links/internal/middleware"
	"github.com/stanstork/invite-links/internal/notification"
	"github.com/stanstork/invite-links/internal/repository"
	"github.com/stanstork/invite-links/internal/routes"
)

type application struct {
	config        *config.Config
	logger        zerolog.Logger
	links         links.Service
	notifications notification.Service
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	} else if err != nil {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
	}

	// Credentials are optional at startup; sends fail later if they are missing.
	logger.Info().
		Str("provider", cfg.Email.Provider).
		Bool("api_key_present", cfg.Email.HasAPIKey()).
		Bool("smtp_credentials_present", cfg.Email.HasSMTPCredentials()).
		Msg("Email configuration loaded")

	sender, err := notification.NewSender(cfg.Email, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure email sender")
	}

	location, err := time.LoadLocation(cfg.Email.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", cfg.Email.Timezone).Msg("Unknown timezone, using UTC")
		location = time.UTC
	}

	// Initialize the link registry and response notifier.
	linkRepo := repository.NewMemoryLinkRepository()
	linkService := links.NewService(linkRepo, logger)
	notificationService := notification.NewService(linkService, sender, logger,
		notification.WithSendTimeout(cfg.Email.Timeout),
		notification.WithLocation(location),
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		links:         linkService,
		notifications: notificationService,
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter()
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins(cfg.CORS.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type"}),
	)(loggedRouter)
	recovered := h.RecoveryHandler(h.RecoveryLogger(log.Default()), h.PrintRecoveryStack(true))(corsHandler)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(recovered)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter() http.Handler {
	linkHandler := handlers.NewLinkHandler(app.links, app.logger)
	notificationHandler := handlers.NewNotificationHandler(app.notifications, app.logger)

	return routes.NewRouter(linkHandler, notificationHandler)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler) {
	logger := app.logger
	server := &http.Server{
		Addr:              ":" + app.config.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
