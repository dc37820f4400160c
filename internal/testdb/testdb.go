// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"foodtruck/pos/internal/database"
	"foodtruck/pos/internal/migrations"
)

const DSN = "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"

func New(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Connect("sqlite", DSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(context.Background(), db))
	return db
}
