package database

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/conectahub/intranet-api/internal/adapter"
	"github.com/conectahub/intranet-api/internal/config"
)

// Open returns the dialector for a driver name.
func Open(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Connect opens the relational backend configured in cfg.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := ApplyPoolSettings(db, cfg); err != nil {
		return nil, errors.Join(err, Close(db))
	}
	return db, nil
}

// ApplyPoolSettings sizes the connection pool. Zero values keep the
// database/sql defaults.
func ApplyPoolSettings(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}
	if cfg.DBConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)
	}
	return nil
}

// Close shuts down the pooled connections.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}
	return sqlDB.Close()
}

// Migrate creates or updates the tables of every record type.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(adapter.AllRecords()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	// Rows written before email_key existed.
	if err := db.Exec("UPDATE users SET email_key = LOWER(TRIM(email)) WHERE email_key IS NULL").Error; err != nil {
		return fmt.Errorf("failed to backfill email keys: %w", err)
	}
	return nil
}
