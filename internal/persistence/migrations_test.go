package persistence

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/desk?sslmode=disable", migrateURL("postgres://u:p@db:5432/desk?sslmode=disable"))
	assert.Equal(t, "pgx5://db/desk", migrateURL("postgresql://db/desk"))
	assert.Equal(t, "pgx5://db/desk", migrateURL("pgx5://db/desk"))
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
