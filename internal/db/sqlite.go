package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/terraincognita07/taskdesk/internal/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store owns the single-file task database. It is created by Open and must be
// released with Close; nothing in the package keeps a global handle.
type Store struct {
	path         string
	database     *gorm.DB
	sqlDB        *sql.DB
	repositories *Repositories
}

func Open(ctx context.Context, dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	database, err := OpenSQLite(dbPath, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("open sql db: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := newMigrator(database, logger).Apply(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return &Store{
		path:         dbPath,
		database:     database,
		sqlDB:        sqlDB,
		repositories: NewRepositories(database),
	}, nil
}

// OpenSQLite opens the database file with a single pooled connection. SQLite
// allows one writer at a time, and a second connection turns a read-then-write
// transaction into SQLITE_BUSY instead of waiting for its turn.
func OpenSQLite(dbPath string, logger *zap.Logger) (*gorm.DB, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logging.NewGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("open sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return database, nil
}

func (store *Store) Path() string {
	return store.path
}

func (store *Store) DB() *gorm.DB {
	return store.database
}

func (store *Store) Repositories() *Repositories {
	return store.repositories
}

func (store *Store) Close() error {
	if store == nil || store.sqlDB == nil {
		return nil
	}
	return store.sqlDB.Close()
}
