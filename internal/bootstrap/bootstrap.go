// Package bootstrap builds the logger and the trust service from configuration,
// shared by the server and trustctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/trustmind/internal/belief"
	"github.com/Harshitk-cp/trustmind/internal/config"
	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/Harshitk-cp/trustmind/internal/service"
	"github.com/Harshitk-cp/trustmind/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a production logger at the given level name.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Stores groups the persistence backends selected by STORAGE_BACKEND.
type Stores struct {
	Datasets domain.DatasetStore
	Clock    domain.ClockStore
	Profiles domain.ProfileStore
	// Pool is nil for the file backend.
	Pool *pgxpool.Pool
}

func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStores connects the configured backend. The postgres backend is migrated on open.
func OpenStores(ctx context.Context, logger *zap.Logger) (*Stores, error) {
	switch backend := config.StorageBackend(); backend {
	case "file":
		logger.Info("using file storage",
			zap.String("datasets_dir", config.DatasetsDir()),
			zap.String("clock_file", config.ClockFile()))
		return &Stores{
			Datasets: store.NewFileDatasetStore(config.DatasetsDir()),
			Clock:    store.NewFileClockStore(config.ClockFile()),
			Profiles: store.NewMemoryProfileStore(),
		}, nil

	case "postgres":
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		logger.Info("connected to database")

		if err := store.Migrate(ctx, pool, config.MigrationsPath(), logger); err != nil {
			pool.Close()
			return nil, err
		}
		return &Stores{
			Datasets: store.NewDatasetStore(pool),
			Clock:    store.NewClockStore(pool),
			Profiles: store.NewProfileStore(pool),
			Pool:     pool,
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want file or postgres)", backend)
	}
}

// TrustOptions reads the experiment switches from configuration.
func TrustOptions() service.TrustOptions {
	return service.TrustOptions{
		MatureToM:        config.MatureToM(),
		UpdateOnDecision: config.UpdateOnDecision(),
		EpisodicSamples:  config.EpisodicSamples(),
	}
}

// NewTrustService builds the service over stores and restores persisted beliefs.
func NewTrustService(ctx context.Context, stores *Stores, opts service.TrustOptions, logger *zap.Logger) (*service.TrustService, error) {
	builder := belief.NewEpisodicBuilder(belief.NewSource(config.RandomSeed()), logger)
	svc := service.NewTrustService(stores.Datasets, stores.Clock, stores.Profiles, builder, opts, logger)
	if err := svc.Load(ctx); err != nil {
		return nil, fmt.Errorf("load beliefs: %w", err)
	}
	return svc, nil
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.DatasetStore = (*store.DatasetStore)(nil)
	_ domain.DatasetStore = (*store.FileDatasetStore)(nil)
	_ domain.ClockStore   = (*store.ClockStore)(nil)
	_ domain.ClockStore   = (*store.FileClockStore)(nil)
	_ domain.ProfileStore = (*store.ProfileStore)(nil)
	_ domain.ProfileStore = (*store.MemoryProfileStore)(nil)
)
