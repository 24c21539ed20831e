// Package database provides database setup for the supported drivers
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/richardjr822/food-findr/internal/infrastructure/config"
	gormModels "github.com/richardjr822/food-findr/internal/infrastructure/persistence/gorm"
)

// Setup creates and configures the database connection. SQLite backs
// development and tests; postgres is the production driver.
func Setup(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.App.Debug {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var db *gorm.DB
	var err error

	switch cfg.Database.Driver {
	case "sqlite":
		dbPath := cfg.Database.Database
		if dbPath == "" {
			dbPath = ":memory:"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), gormConfig)
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.GetDSN()), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Schema and index creation runs once at startup, outside the request
	// path; AutoMigrate is idempotent across restarts.
	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate runs schema migration for all models
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&gormModels.ThreadModel{},
		&gormModels.SavedRecipeModel{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
