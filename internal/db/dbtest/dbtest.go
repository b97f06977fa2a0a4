// Package dbtest opens an isolated, migrated in-memory SQLite store per test.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/db"
)

func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := db.Connect("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
