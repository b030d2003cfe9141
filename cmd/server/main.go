package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/accounts-backend/config"
	"github.com/ikkim/accounts-backend/internal/app/controller"
	"github.com/ikkim/accounts-backend/internal/app/repository"
	"github.com/ikkim/accounts-backend/internal/app/service"
	"github.com/ikkim/accounts-backend/internal/db"
	"github.com/ikkim/accounts-backend/internal/middleware"
	"github.com/ikkim/accounts-backend/internal/router"
	"github.com/ikkim/accounts-backend/internal/scheduler"
	"github.com/ikkim/accounts-backend/internal/session"
	"github.com/ikkim/accounts-backend/internal/web"
	"github.com/ikkim/accounts-backend/pkg/logger"
	"github.com/ikkim/accounts-backend/pkg/mailer"
	redisClient "github.com/ikkim/accounts-backend/pkg/redis"
	"github.com/ikkim/accounts-backend/pkg/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting accounts server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize session storage
	var sessionStore session.Store
	switch cfg.Session.Store {
	case "redis":
		if err := redisClient.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		sessionStore = session.NewRedisStore(redisClient.GetClient())
	default:
		logger.Warn("Using in-memory session store, sessions are lost on restart")
		sessionStore = session.NewMemoryStore(nil)
	}

	store := repository.NewStore(db.GetDB())
	hasher := util.NewBcryptHasher(cfg.Security.BcryptCost)
	sessions := session.NewManager(sessionStore, cfg.Session.TTL, nil)
	flash := session.NewFlashCodec(cfg.Security.SecretKey, nil)
	issuer := util.NewResetTokenIssuer(cfg.Security.SecretKey, cfg.Security.ResetTokenExpiry, nil)

	// Initialize services
	authService := service.NewAuthService(store, hasher, sessions)
	passwordResetService := service.NewPasswordResetService(
		store,
		hasher,
		issuer,
		mailer.New(&cfg.Mail),
		cfg.Server.BaseURL,
		nil,
	)

	// Initialize middleware and controllers
	sessionMiddleware := middleware.NewSessionMiddleware(sessions, flash, middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	})
	authController := controller.NewAuthController(authService, passwordResetService, sessionMiddleware)

	templates, err := web.Templates()
	if err != nil {
		logger.Fatal("Failed to parse templates", err)
	}

	// Setup router
	r := router.NewRouter(authController, sessionMiddleware, templates, cfg)
	engine := r.Setup()

	// Start scheduler
	cleanup := scheduler.NewTokenCleanupScheduler(store.Resets(), cfg.Scheduler.TokenCleanupSpec, nil)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start token cleanup scheduler", err)
	}
	defer cleanup.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
