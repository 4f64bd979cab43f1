package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add fee assignments", "add_fee_assignments"},
		{"Add-Invoice-Notes", "add_invoice_notes"},
		{"PAYMENT__VOUCHER", "payment_voucher"},
		{"  index due date  ", "index_due_date"},
		{"plan v2", "plan_v2"},
		{"drop!@#legacy", "droplegacy"},
		{"_leading_", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000001_create_ledger_tables.up.sql",
		"000001_create_ledger_tables.down.sql",
		"000004_add_invoice_notes.up.sql",
	)
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

	mf, err := CreateMigration(dir, "Index payments by method", "speeds up the method breakdown", now)

	require.NoError(t, err)
	assert.Equal(t, uint(5), mf.Version)
	assert.Equal(t, filepath.Join(dir, "000005_index_payments_by_method.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000005_index_payments_by_method.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: index_payments_by_method")
	assert.Contains(t, string(up), "2024-03-15T08:00:00Z")
	assert.Contains(t, string(up), "speeds up the method breakdown")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_FirstInEmptyDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "init", "", time.Now())

	require.NoError(t, err)
	assert.Equal(t, uint(1), mf.Version)
	assert.Equal(t, "000001_init", mf.BaseName())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "", time.Now())
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000010_add_plan_index.up.sql",
		"000010_add_plan_index.down.sql",
		"000002_add_students.up.sql",
		"000001_create_ledger_tables.up.sql",
		"000001_create_ledger_tables.down.sql",
		"README.md",
		"notes_without_version.up.sql",
		"000003_orphan.down.sql",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000099_dir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)

	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, []uint{1, 2, 10}, []uint{migrations[0].Version, migrations[1].Version, migrations[2].Version})
	assert.Equal(t, "create_ledger_tables", migrations[0].Name)
	assert.True(t, migrations[0].HasDown)
	assert.False(t, migrations[1].HasDown)
	assert.Equal(t, "000010_add_plan_index", migrations[2].BaseName())
}

func TestListMigrations_DuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "000002_first.up.sql", "000002_second.up.sql")

	_, err := ListMigrations(dir)

	assert.ErrorContains(t, err, "version 2")
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_RepositorySchema(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, uint(1), migrations[0].Version)
	for _, m := range migrations {
		assert.True(t, m.HasDown, "%s has no rollback", m.BaseName())
	}
}

func TestWithMigrationsTable(t *testing.T) {
	assert.Equal(t,
		"postgres://u:p@db/ledger?x-migrations-table=ledger_schema_migrations",
		withMigrationsTable("postgres://u:p@db/ledger"))
	assert.Equal(t,
		"postgres://u:p@db/ledger?sslmode=disable&x-migrations-table=ledger_schema_migrations",
		withMigrationsTable("postgres://u:p@db/ledger?sslmode=disable"))
}
