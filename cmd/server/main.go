package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/trustmind/internal/api"
	"github.com/Harshitk-cp/trustmind/internal/bootstrap"
	"github.com/Harshitk-cp/trustmind/internal/buildconfig"
	"github.com/Harshitk-cp/trustmind/internal/config"
	"github.com/Harshitk-cp/trustmind/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger, err := bootstrap.NewLogger(config.LogLevel())
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("invalid LOG_LEVEL, using info", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer stores.Close()

	svc, err := bootstrap.NewTrustService(ctx, stores, bootstrap.TrustOptions(), logger)
	if err != nil {
		logger.Fatal("failed to restore beliefs", zap.Error(err))
	}

	var health api.Pinger
	if stores.Pool != nil {
		health = stores.Pool
	}
	app := api.NewApp(ctx, svc, health, logger)

	var autosave *service.AutosaveService
	if interval := config.AutosaveInterval(); interval > 0 {
		autosave = service.NewAutosaveService(svc, logger)
		autosave.SetInterval(interval)
		autosave.Start()
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("version", buildconfig.Version()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if autosave != nil {
		autosave.Stop()
	} else if err := svc.Save(shutdownCtx); err != nil {
		logger.Error("failed to save beliefs", zap.Error(err))
	}

	logger.Info("server stopped")
}
