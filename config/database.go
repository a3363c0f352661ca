package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/learntree-api/models"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens the database named by cfg and migrates every model.
func Connect(cfg DatabaseConfig, production bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.URL == "" {
			return nil, fmt.Errorf("DB_URL is required for postgres")
		}
		dialector = postgres.Open(cfg.URL)
	case DriverSQLite:
		dsn := cfg.URL
		if dsn == "" {
			dsn = "learntree.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormCfg := &gorm.Config{}
	if production {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	database, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := database.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to auto migrate database: %w", err)
	}

	return database, nil
}
