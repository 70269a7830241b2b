package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/japanesestudent/useradmin/internal/config"
	"github.com/japanesestudent/useradmin/internal/handlers"
	"github.com/japanesestudent/useradmin/internal/logger"
	"github.com/japanesestudent/useradmin/internal/middleware"
	"github.com/japanesestudent/useradmin/internal/repositories"
	"github.com/japanesestudent/useradmin/internal/services"
	"go.uber.org/zap"
)

const maxFormSize = 1 << 20 // 1MB

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting users admin panel",
		zap.String("users_api", cfg.UsersAPI.BaseURL),
		zap.String("base_path", cfg.Admin.BasePath),
	)

	// Initialize repository and view
	usersRepo := repositories.NewUsersRepository(cfg.UsersAPI.BaseURL, cfg.UsersAPI.Token, &http.Client{}, logger.Logger)
	sorter := services.NewUserSorter(cfg.Admin.SortLocale)
	view := services.NewUserAdminView(usersRepo, sorter, handlers.RequestNavigator{}, cfg.Admin.LoginURL, logger.Logger)

	// Initialize handlers
	usersHandler := handlers.NewUserAdminHandler(view, cfg.Admin.BasePath, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(maxFormSize))

	usersHandler.RegisterRoutes(r)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, cfg.Admin.BasePath, http.StatusFound)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
