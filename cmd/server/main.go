package main

import (
	"context"
	"os"

	fbauth "firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/driftline/backend/internal/router"
	"github.com/driftline/backend/pkg/config"
	"github.com/driftline/backend/pkg/firebase"
	"github.com/driftline/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg.PostgresConnStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.CloseDB()

	// Initialize Firebase; without credentials the server runs with
	// external identity login and push delivery disabled.
	var authClient *fbauth.Client
	var messagingClient *messaging.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Firebase")
		}
		authClient = firebaseApp.AuthClient
		messagingClient = firebaseApp.MessagingClient
	} else {
		log.Warn().Msg("FIREBASE_CREDENTIALS_PATH not set; identity sync and push delivery disabled.")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, cfg, authClient, messagingClient)

	// Start server
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
