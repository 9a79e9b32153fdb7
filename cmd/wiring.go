package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/okian/toolboard/internal/adapters/catalog"
	"github.com/okian/toolboard/internal/adapters/snapshot"
	service "github.com/okian/toolboard/internal/app"
	"github.com/okian/toolboard/internal/config"
	"github.com/okian/toolboard/internal/domain/compare"
	"github.com/okian/toolboard/internal/domain/scoring"
	"github.com/okian/toolboard/pkg/logger"
)

// loadConfig reads an optional .env file into the environment and then
// layers defaults, the config file and TOOLBOARD_ variables.
func loadConfig(ctx context.Context) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if cfgFile != "" {
		return config.Load(ctx, cfgFile)
	}
	return config.Load(ctx)
}

// initLogger initializes the global logger from cfg.
func initLogger(ctx context.Context, cfg *config.Config) (logger.Logger, error) {
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return log, nil
}

// newEngine builds the scoring engine from the configured weights and ranges.
func newEngine(cfg *config.Config) (*scoring.Engine, error) {
	opts := []scoring.Option{scoring.WithWeights(cfg.MetricWeights)}
	if len(cfg.MetricRanges) > 0 {
		ranges := make(map[string]scoring.Range, len(cfg.MetricRanges))
		for name, r := range cfg.MetricRanges {
			ranges[name] = scoring.Range{Min: r.Min, Max: r.Max}
		}
		opts = append(opts, scoring.WithRanges(ranges))
	}
	e, err := scoring.NewEngine(opts...)
	if err != nil {
		return nil, fmt.Errorf("scoring configuration: %w", err)
	}
	return e, nil
}

// buildService loads the catalog and registry named by cfg and wires them
// into a service. The snapshot store is opened only when withStore is set.
func buildService(cfg *config.Config, log logger.Logger, withStore bool) (*service.Service, error) {
	cat, err := catalog.LoadTools(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	entries, err := catalog.LoadComparisons(cfg.RegistryPath)
	if err != nil {
		return nil, err
	}
	reg, err := compare.NewRegistry(entries)
	if err != nil {
		return nil, err
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithCatalog(cat),
		service.WithRegistry(reg),
		service.WithEngine(engine),
		service.WithMoversLimit(cfg.MoversLimit),
		service.WithMaxMoversLimit(cfg.MaxMoversLimit),
		service.WithSnapshotInterval(cfg.SnapshotInterval),
	}
	var store snapshot.Store
	if withStore {
		store, err = snapshot.Open(cfg.SnapshotBackend, cfg.SnapshotPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithSnapshotStore(store))
	}

	svc, err := service.New(opts...)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return svc, nil
}
