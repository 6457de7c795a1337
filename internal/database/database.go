package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studentresults/internal/config"
	"studentresults/internal/model"
)

// InitDB opens the cache database for the configured driver and migrates the
// slot table.
func InitDB(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.CacheDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.CacheDSN)
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.CacheDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err := db.AutoMigrate(&model.CacheSlot{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate the database: %w", err)
	}

	return db, nil
}
