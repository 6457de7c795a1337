package main

import (
	"fmt"

	"go.uber.org/zap"

	"studentresults/internal/availability"
	"studentresults/internal/cache"
	"studentresults/internal/config"
	"studentresults/internal/database"
	"studentresults/internal/remote"
	"studentresults/internal/service"
)

type app struct {
	cfg      config.Config
	records  *service.RecordService
	importer *service.ImportService
	close    func() error
}

func newApp(log *zap.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	local, closeCache, err := openCache(cfg)
	if err != nil {
		return nil, err
	}

	client := remote.NewClient(
		remote.WithBaseURL(cfg.APIURL),
		remote.WithTimeout(cfg.RequestTimeout),
	)

	strategy, err := availability.New(cfg.AvailabilityMode, client, cfg.ProbeTimeout, cfg.ProbeTTL, log)
	if err != nil {
		_ = closeCache()
		return nil, err
	}

	records := service.NewRecordService(client, local, strategy, log)

	log.Debug("configured record store",
		zap.String("api", cfg.APIURL),
		zap.String("availability", cfg.AvailabilityMode),
		zap.String("cache", cfg.CacheDriver))

	return &app{
		cfg:      cfg,
		records:  records,
		importer: service.NewImportService(records, cfg.ImportWorkers, log),
		close:    closeCache,
	}, nil
}

func openCache(cfg config.Config) (cache.Cache, func() error, error) {
	if cfg.CacheDriver == "memory" {
		return cache.NewMemoryCache(), func() error { return nil }, nil
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database handle: %w", err)
	}
	return cache.NewGormCache(db, cache.StudentsKey), sqlDB.Close, nil
}
