// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/localbiz/directory-backend/internal/bootstrap"
	"github.com/localbiz/directory-backend/internal/config"
	"github.com/localbiz/directory-backend/internal/i18n"
	"github.com/localbiz/directory-backend/internal/router"
	"github.com/localbiz/directory-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	bootstrap.ConfigureLogging(cfg.Log)

	// Open the listing store, migrating postgres when configured
	res, err := bootstrap.OpenStore(cfg, true)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store")
	}
	defer res.Close()

	if cfg.Store.Driver == "memory" && cfg.Staff.Email != "" {
		if _, err := services.NewAuthService(res.Store, cfg).EnsureStaff(context.Background(), cfg.Staff.Email, cfg.Staff.Password); err != nil {
			logrus.WithError(err).Fatal("Failed to seed staff user")
		}
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.LocalesPath, cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	notifier, err := services.NewNotifier(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize notifier")
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	rt := router.Initialize(cfg, router.Dependencies{
		Store:    res.Store,
		Notifier: notifier,
		Ping:     res.Ping,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      rt.Engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":     srv.Addr,
			"store":    cfg.Store.Driver,
			"notifier": notifier.Channel(),
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	// Drain notifications and audit writes before closing the store
	rt.Shutdown()

	logrus.Info("Server exited")
}
