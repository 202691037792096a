package db

import (
	"context"
	"io/fs"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	embeddedmigrations "github.com/terraincognita07/taskdesk/migrations"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestOpenAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "taskdesk-clean.db"))

	assertTableColumns(t, store.DB(), "users", []string{
		"id", "username", "password_hash", "full_name", "email", "role",
		"is_active", "must_change_password", "created_at", "updated_at",
	})
	assertTableColumns(t, store.DB(), "tasks", []string{
		"id", "user_id", "title", "description", "status", "priority", "due_date", "created_at", "updated_at",
	})
	assertAllEmbeddedMigrationsApplied(t, store.DB())
}

func TestOpenUpgradesDatabaseWithoutStatusColumns(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "taskdesk-legacy.db")
	seedPreStatusSchema(t, databasePath)

	store := openTestStore(t, databasePath)
	assertAllEmbeddedMigrationsApplied(t, store.DB())

	var migrated struct {
		IsActive           bool `gorm:"column:is_active"`
		MustChangePassword bool `gorm:"column:must_change_password"`
	}
	if err := store.DB().
		Table("users").
		Select("is_active", "must_change_password").
		Where("username = ?", "legacy").
		First(&migrated).Error; err != nil {
		t.Fatalf("load migrated legacy user: %v", err)
	}
	if !migrated.IsActive {
		t.Fatal("expected legacy user to default to active")
	}
	if migrated.MustChangePassword {
		t.Fatal("expected legacy user must_change_password default to be false")
	}
}

func TestOpenMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "taskdesk-idempotent.db")

	first, err := Open(context.Background(), databasePath, zap.NewNop())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	firstRecords := loadMigrationVersions(t, first.DB())
	if err := first.Close(); err != nil {
		t.Fatalf("close first store: %v", err)
	}

	second := openTestStore(t, databasePath)
	secondRecords := loadMigrationVersions(t, second.DB())

	if !reflect.DeepEqual(firstRecords, secondRecords) {
		t.Fatalf("expected migration records to remain unchanged between boots, before=%v after=%v", firstRecords, secondRecords)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), "", nil); err == nil {
		t.Fatal("expected empty database path to fail")
	}
}

func TestSplitSQLStatementsDropsBlankParts(t *testing.T) {
	t.Parallel()

	got := splitSQLStatements("CREATE TABLE a (id INT);\n\n ;CREATE INDEX i ON a(id);  ")
	want := []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a(id)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitSQLStatements = %#v, want %#v", got, want)
	}
}

func TestUnquoteIdentifier(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]string{
		`"users"`: "users",
		"`tasks`": "tasks",
		"[email]": "email",
		" role ":  "role",
	} {
		if got := unquoteIdentifier(raw); got != want {
			t.Fatalf("unquoteIdentifier(%q) = %q, want %q", raw, got, want)
		}
	}
}

func openTestStore(t *testing.T, databasePath string) *Store {
	t.Helper()

	store, err := Open(context.Background(), databasePath, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func seedPreStatusSchema(t *testing.T, databasePath string) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("open legacy sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("legacy sql db: %v", err)
	}
	defer sqlDB.Close()

	ctx := context.Background()
	legacy := newMigrator(database, zap.NewNop())
	if err := legacy.ensureHistoryTable(ctx); err != nil {
		t.Fatalf("create history table: %v", err)
	}
	migrations, err := legacy.load()
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	for _, migration := range migrations {
		if migration.Order >= 3 {
			break
		}
		if err := legacy.applyOne(ctx, migration); err != nil {
			t.Fatalf("apply %s: %v", migration.Name, err)
		}
	}

	if err := database.Exec(
		`INSERT INTO users(username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		"legacy", "hash", "Site Responsible", time.Now().UTC(),
	).Error; err != nil {
		t.Fatalf("insert legacy user: %v", err)
	}
}

func assertTableColumns(t *testing.T, database *gorm.DB, table string, expected []string) {
	t.Helper()

	for _, column := range expected {
		exists, err := tableHasColumn(database, table, column)
		if err != nil {
			t.Fatalf("inspect %s.%s: %v", table, column, err)
		}
		if !exists {
			t.Fatalf("expected column %s.%s to exist", table, column)
		}
	}
}

func assertAllEmbeddedMigrationsApplied(t *testing.T, database *gorm.DB) {
	t.Helper()

	entries, err := fs.Glob(embeddedmigrations.Files, "*.sql")
	if err != nil {
		t.Fatalf("list embedded migrations: %v", err)
	}
	versions := loadMigrationVersions(t, database)
	if len(versions) != len(entries) {
		t.Fatalf("expected %d applied migrations, got %d (%v)", len(entries), len(versions), versions)
	}
}

func loadMigrationVersions(t *testing.T, database *gorm.DB) []string {
	t.Helper()

	rows := make([]migrationRecord, 0)
	if err := database.Raw(`SELECT version, checksum FROM schema_migrations ORDER BY version`).Scan(&rows).Error; err != nil {
		t.Fatalf("load schema_migrations: %v", err)
	}
	versions := make([]string, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, row.Version)
	}
	return versions
}
