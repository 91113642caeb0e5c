// Package database opens the GORM store.
package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrStorageUnavailable wraps every failure to open or prepare the store.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Open connects to the configured driver and tunes the pool.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.LogSQL {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	gormConfig := &gorm.Config{Logger: gormLogger}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		db, err = openSQLite(cfg.Path, gormConfig)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrStorageUnavailable, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: get database instance: %v", ErrStorageUnavailable, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return db, nil
}

// OpenSQLite opens (and creates) the SQLite file at path with WAL enabled.
// Pragmas travel in the DSN so every pooled connection carries them.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := openSQLite(path, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return db, nil
}

// writers take the lock at BEGIN so busy_timeout applies instead of a
// failed upgrade mid transaction
const sqliteParams = "?_busy_timeout=5000&_journal_mode=WAL&_sync=NORMAL&_fk=1&_txlock=immediate"

func openSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return gorm.Open(sqlite.Open(path+sqliteParams), gormConfig)
}

// Migrate creates or updates the tables of the given models.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrStorageUnavailable, err)
	}
	return nil
}
