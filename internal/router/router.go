package router

import (
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/driftline/backend/internal/handlers"
	"github.com/driftline/backend/internal/middleware"
	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/driftline/backend/internal/services"
	"github.com/driftline/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	log.Info().Msg("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient and messagingClient may be nil; external identity
// login and push delivery are then disabled.
func SetupRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config, firebaseAuthClient *auth.Client, messagingClient *messaging.Client) {
	// AutoMigrate models
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
		&models.DeviceToken{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to auto migrate models")
	}
	log.Info().Msg("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	deviceTokenRepo := repositories.NewPostgresDeviceTokenRepository(db)

	// --- Initialize Services ---
	var sender services.PushSender
	if messagingClient != nil {
		sender = services.NewFCMSender(messagingClient)
	} else {
		log.Warn().Msg("Messaging client not configured; push delivery disabled.")
	}
	pushDispatcher := services.NewPushDispatcher(deviceTokenRepo, sender, log.Logger)
	interactions := services.NewInteractionService(
		postRepo, commentRepo, likeRepo, followRepo, userRepo, notificationRepo,
		pushDispatcher, log.Logger,
	)
	feedService := services.NewFeedService(
		postRepo, followRepo, likeRepo, userRepo,
		cfg.FeedWindow, cfg.FeedDefaultLimit, cfg.FeedMaxLimit,
	)

	authRequired := middleware.RequireAuth(cfg.JWTSecret)
	authOptional := middleware.OptionalAuth(cfg.JWTSecret)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup, authRequired)
	log.Info().Msg("Auth routes configured.")

	// --- Optional-auth routes (anonymous callers allowed) ---
	open := e.Group("/api/v1")
	open.Use(authOptional)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(authRequired)

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, followRepo)
	userHandler.RegisterUserRoutes(api)

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo, feedService)
	postHandler.RegisterPostRoutes(api, open)

	// Feed routes
	feedHandler := handlers.NewFeedHandler(feedService)
	feedHandler.RegisterFeedRoutes(api, open)

	// Comment routes
	commentHandler := handlers.NewCommentHandler(interactions, commentRepo)
	commentHandler.RegisterCommentRoutes(api)

	// Like routes
	likeHandler := handlers.NewLikeHandler(interactions, likeRepo)
	likeHandler.RegisterLikeRoutes(api)

	// Follow routes
	followHandler := handlers.NewFollowHandler(interactions, followRepo)
	followHandler.RegisterFollowRoutes(api)

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	// Device token routes
	deviceHandler := handlers.NewDeviceHandler(deviceTokenRepo)
	deviceHandler.RegisterDeviceRoutes(api)

	log.Info().Msg("All routes configured.")
}
