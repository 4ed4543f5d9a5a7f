package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/trustmind/internal/api/handlers"
	mw "github.com/Harshitk-cp/trustmind/internal/api/middleware"
	"github.com/Harshitk-cp/trustmind/internal/buildconfig"
	"github.com/Harshitk-cp/trustmind/internal/config"
	"github.com/Harshitk-cp/trustmind/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the router and the trust service for lifecycle management.
type App struct {
	Router       *chi.Mux
	Trust        *service.TrustService
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
	metrics      *mw.MetricsCollector
}

// NewApp wires the HTTP surface around svc. db may be nil when beliefs live on disk.
// Background goroutines started here stop when ctx is done.
func NewApp(ctx context.Context, svc *service.TrustService, db Pinger, logger *zap.Logger) *App {
	informantHandler := handlers.NewInformantHandler(svc, logger)
	episodicHandler := handlers.NewEpisodicHandler(svc)
	clockHandler := handlers.NewClockHandler(svc)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		Trust:     svc,
		startTime: time.Now(),
	}
	app.metrics = mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(ctx, config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no auth)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Get("/clock", clockHandler.Get)
		r.Post("/clock/reset", clockHandler.Reset)

		r.Route("/informants", func(r chi.Router) {
			r.Get("/", informantHandler.List)
			r.Post("/", informantHandler.Familiarize)
			r.Post("/unknown", informantHandler.RegisterUnknown)
			r.Route("/{index}", func(r chi.Router) {
				r.Get("/", informantHandler.Get)
				r.Post("/decide", informantHandler.Decide)
				r.Post("/outcome", informantHandler.RecordOutcome)
				r.Post("/estimate", informantHandler.Estimate)
				r.Get("/similar", informantHandler.Similar)
			})
		})

		r.Post("/episodic/full", episodicHandler.Full)
		r.Post("/save", episodicHandler.Save)
	})

	return app
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"routes":         app.metrics.Routes(),
			"informants":     len(app.Trust.Informants()),
			"logical_time":   app.Trust.Now(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": float64(memStats.Alloc) / 1024 / 1024,
				"sys_mb":   float64(memStats.Sys) / 1024 / 1024,
				"num_gc":   memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
