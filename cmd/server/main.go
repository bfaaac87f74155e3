// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	activityRouter "github.com/volunhub/volunhub/internal/activity/router"
	"github.com/volunhub/volunhub/internal/config"
	"github.com/volunhub/volunhub/internal/database"
	"github.com/volunhub/volunhub/internal/database/migrate"
	"github.com/volunhub/volunhub/internal/health"
	joinrequestRouter "github.com/volunhub/volunhub/internal/joinrequest/router"
	"github.com/volunhub/volunhub/internal/middleware"
	"github.com/volunhub/volunhub/internal/realtime"
	registrationRouter "github.com/volunhub/volunhub/internal/registration/router"
	"github.com/volunhub/volunhub/pkg/logger"
)

func main() {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	db, err := database.New()
	if err != nil {
		zapLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			zapLogger.Errorw("failed to close database", "error", closeErr)
		}
	}()

	if err = migrate.Migrate(db); err != nil {
		zapLogger.Fatalw("failed to apply migrations", "error", err)
	}

	hub := realtime.NewHub(cfg.Realtime.SubscriberBuffer, zapLogger)
	defer hub.Close()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Logger(zapLogger))
	r.Use(middleware.Recovery(zapLogger))

	healthHandler := health.New(db, zapLogger)
	r.GET("/health", healthHandler.Check)

	activityRouter.RegisterRoutes(r, db, zapLogger)
	registrationRouter.RegisterRoutes(r, db, hub, zapLogger)
	joinrequestRouter.RegisterRoutes(r, db, hub, zapLogger)
	realtime.RegisterRoutes(r, hub, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zapLogger.Infow("server starting", "address", srv.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			zapLogger.Fatalw("server failed", "error", serveErr)
		}
	}()

	<-ctx.Done()
	zapLogger.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Errorw("graceful shutdown failed", "error", err)
	}
	zapLogger.Infow("server stopped")
}
