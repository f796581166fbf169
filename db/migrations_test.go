package db

import (
	"database/sql"
	"testing"

	"gotest.tools/v3/assert"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	assert.NilError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	assert.NilError(t, MigrateUp(db, SQLite))

	for _, table := range []string{"posts", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NilError(t, err, "table %s was not created", table)
	}

	version, dirty, err := Version(db, SQLite)
	assert.NilError(t, err)
	assert.Equal(t, version, uint(1))
	assert.Assert(t, !dirty)
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	assert.NilError(t, MigrateUp(db, SQLite))
	assert.NilError(t, MigrateUp(db, SQLite))
}

func TestVersion_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := Version(db, SQLite)
	assert.NilError(t, err)
	assert.Equal(t, version, uint(0))
	assert.Assert(t, !dirty)
}

func TestMigrateUp_UnknownDialect(t *testing.T) {
	db := openTestDB(t)

	assert.ErrorContains(t, MigrateUp(db, Dialect("oracle")), "unknown dialect")
}
