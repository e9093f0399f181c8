package migration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDB struct {
	migrated   bool
	migrateErr error
	execErr    error
	statements []string
}

func (d *recordingDB) Migrate() error {
	d.migrated = true
	return d.migrateErr
}

func (d *recordingDB) ExecSQL(sql string) error {
	d.statements = append(d.statements, sql)
	return d.execErr
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSplitSQLStatements(t *testing.T) {
	sql := `-- extensions
CREATE EXTENSION IF NOT EXISTS vector;

ALTER TABLE freelancers
    ADD COLUMN IF NOT EXISTS embedding vector(1536);
;`

	assert.Equal(t, []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		"ALTER TABLE freelancers ADD COLUMN IF NOT EXISTS embedding vector(1536)",
	}, splitSQLStatements(sql))
}

func TestRemoveComments(t *testing.T) {
	sql := "-- header\nCREATE FUNCTION f() RETURNS int AS $$\n  -- inner\n  SELECT 1;\n$$ LANGUAGE sql;"
	assert.Equal(t, "CREATE FUNCTION f() RETURNS int AS $$\n  SELECT 1;\n$$ LANGUAGE sql;", removeComments(sql))
}

func TestRunMigrations_OrderAndModes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_function.sql", "CREATE OR REPLACE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql;")
	writeFile(t, dir, "001_tables.sql", "CREATE INDEX a ON t (x);\nCREATE INDEX b ON t (y);")
	writeFile(t, dir, "README.md", "not a migration")

	db := &recordingDB{}
	require.NoError(t, NewRunner(db, quietLogger()).RunMigrations(dir))

	assert.True(t, db.migrated)
	assert.Equal(t, []string{
		"CREATE INDEX a ON t (x)",
		"CREATE INDEX b ON t (y)",
		"CREATE OR REPLACE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql;",
	}, db.statements)
}

func TestRunMigrations_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001.sql", "SELECT 1;")

	err := NewRunner(&recordingDB{migrateErr: errors.New("boom")}, quietLogger()).RunMigrations(dir)
	assert.ErrorContains(t, err, "GORM auto-migration failed")

	err = NewRunner(&recordingDB{execErr: errors.New("syntax")}, quietLogger()).RunMigrations(dir)
	assert.ErrorContains(t, err, "001.sql")

	err = NewRunner(&recordingDB{}, quietLogger()).RunMigrations(filepath.Join(dir, "missing"))
	assert.ErrorContains(t, err, "failed to read migrations directory")
}

func TestRunMigrations_ShippedFiles(t *testing.T) {
	files, err := listSQLFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	assert.Equal(t, []string{"001_pgvector.sql", "002_search_vector_trigger.sql", "003_search_functions.sql"}, files)
}
