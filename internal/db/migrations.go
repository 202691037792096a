package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/taskdesk/migrations"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)
var addColumnStatementPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)

// ErrMigrationChanged is returned when an applied migration file no longer
// matches the checksum recorded when it ran.
var ErrMigrationChanged = errors.New("applied migration was modified")

type schemaMigration struct {
	Version    string
	Order      int
	Name       string
	Checksum   string
	Statements []string
}

// migrationRecord is one row of schema_migrations.
type migrationRecord struct {
	Version  string `gorm:"column:version"`
	Checksum string `gorm:"column:checksum"`
}

type migrator struct {
	database *gorm.DB
	files    fs.FS
	logger   *zap.Logger
}

func newMigrator(database *gorm.DB, logger *zap.Logger) *migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &migrator{database: database, files: embeddedmigrations.Files, logger: logger}
}

// Apply brings the schema up to the newest embedded version. Files already
// recorded are verified against their checksum and skipped; each pending file
// runs in one transaction together with its history row.
func (m *migrator) Apply(ctx context.Context) error {
	if err := m.ensureHistoryTable(ctx); err != nil {
		return err
	}

	migrations, err := m.load()
	if err != nil {
		return err
	}
	recorded, err := m.history(ctx)
	if err != nil {
		return err
	}

	pending := 0
	for _, migration := range migrations {
		if checksum, done := recorded[migration.Version]; done {
			if checksum != "" && checksum != migration.Checksum {
				return fmt.Errorf("%w: %s", ErrMigrationChanged, migration.Name)
			}
			continue
		}
		if err := m.applyOne(ctx, migration); err != nil {
			return err
		}
		pending++
		m.logger.Info("schema migration applied",
			zap.String("name", migration.Name),
			zap.Int("statements", len(migration.Statements)),
		)
	}
	if pending > 0 {
		m.logger.Info("schema up to date", zap.Int("applied", pending), zap.Int("total", len(migrations)))
	}
	return nil
}

func (m *migrator) ensureHistoryTable(ctx context.Context) error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  checksum TEXT NOT NULL DEFAULT '',
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := m.database.WithContext(ctx).Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

// load parses every versioned file up front so a malformed or empty file
// stops startup before anything is written.
func (m *migrator) load() ([]schemaMigration, error) {
	entries, err := fs.ReadDir(m.files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	result := make([]schemaMigration, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || len(matches) != 2 {
			continue
		}

		version := matches[1]
		if existing, duplicate := seen[version]; duplicate {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, existing, entry.Name())
		}
		seen[version] = entry.Name()

		migration, err := m.parse(entry.Name(), version)
		if err != nil {
			return nil, err
		}
		result = append(result, migration)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})
	return result, nil
}

func (m *migrator) parse(fileName string, version string) (schemaMigration, error) {
	order, err := strconv.Atoi(version)
	if err != nil {
		return schemaMigration{}, fmt.Errorf("parse migration version from %s: %w", fileName, err)
	}
	body, err := fs.ReadFile(m.files, fileName)
	if err != nil {
		return schemaMigration{}, fmt.Errorf("read migration %s: %w", fileName, err)
	}
	statements := splitSQLStatements(string(body))
	if len(statements) == 0 {
		return schemaMigration{}, fmt.Errorf("migration %s has no SQL statements", fileName)
	}

	sum := sha256.Sum256(body)
	return schemaMigration{
		Version:    version,
		Order:      order,
		Name:       fileName,
		Checksum:   hex.EncodeToString(sum[:]),
		Statements: statements,
	}, nil
}

func (m *migrator) history(ctx context.Context) (map[string]string, error) {
	var rows []migrationRecord
	if err := m.database.WithContext(ctx).Raw(`SELECT version, checksum FROM schema_migrations`).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load applied migration versions: %w", err)
	}

	recorded := make(map[string]string, len(rows))
	for _, row := range rows {
		recorded[row.Version] = row.Checksum
	}
	return recorded, nil
}

func (m *migrator) applyOne(ctx context.Context, migration schemaMigration) error {
	return m.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, statement := range migration.Statements {
			present, err := columnAlreadyAdded(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", migration.Name, err)
			}
			if present {
				m.logger.Debug("column already present", zap.String("migration", migration.Name))
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		if err := tx.Exec(
			`INSERT INTO schema_migrations(version, name, checksum) VALUES (?, ?, ?)`,
			migration.Version,
			migration.Name,
			migration.Checksum,
		).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

func splitSQLStatements(sqlText string) []string {
	var statements []string
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// columnAlreadyAdded lets ADD COLUMN statements replay against databases that
// were patched by hand before the migration existed.
func columnAlreadyAdded(database *gorm.DB, statement string) (bool, error) {
	matches := addColumnStatementPattern.FindStringSubmatch(statement)
	if len(matches) != 3 {
		return false, nil
	}
	return tableHasColumn(database, unquoteIdentifier(matches[1]), unquoteIdentifier(matches[2]))
}

type tableColumn struct {
	Name string `gorm:"column:name"`
}

func tableHasColumn(database *gorm.DB, tableName string, columnName string) (bool, error) {
	var columns []tableColumn
	if err := database.Raw(`SELECT name FROM pragma_table_info(?)`, tableName).Scan(&columns).Error; err != nil {
		return false, fmt.Errorf("load table_info for %s: %w", tableName, err)
	}
	for _, column := range columns {
		if strings.EqualFold(column.Name, columnName) {
			return true, nil
		}
	}
	return false, nil
}

func unquoteIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
