package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRawDB(t *testing.T) *sql.DB {
	db, err := sql.Open(DriverName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyMigrations(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))

	version, err := schemaVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version.String())

	for _, table := range []string{"projects", "project_metadata", "project_embeddings", "schema_version"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	// Columns added by 1.1.0
	_, err = db.ExecContext(ctx, "SELECT keywords, tech_stack, structure_hints, type_names FROM project_metadata")
	assert.NoError(t, err)
}

func TestMigrationsIdempotent(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))
	require.NoError(t, ApplyMigrations(ctx, db))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count))
	assert.Equal(t, len(AllMigrations), count)
}

func TestRollbackMigration(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()
	require.NoError(t, ApplyMigrations(ctx, db))

	// Roll back 1.1.0
	require.NoError(t, RollbackMigration(ctx, db))
	version, err := schemaVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version.String())

	_, err = db.ExecContext(ctx, "SELECT keywords FROM project_metadata")
	assert.Error(t, err)

	// Re-apply brings the columns back
	require.NoError(t, ApplyMigrations(ctx, db))
	_, err = db.ExecContext(ctx, "SELECT keywords FROM project_metadata")
	assert.NoError(t, err)

	// Rolling back everything drops the schema
	require.NoError(t, RollbackMigration(ctx, db))
	require.NoError(t, RollbackMigration(ctx, db))
	version, err = schemaVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", version.String())

	assert.Error(t, RollbackMigration(ctx, db))
}
