package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nxy7/viban/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func defaultColumnSettingsForTest() models.ColumnSettings {
	return models.ColumnSettings{HooksEnabled: true}
}

func maxConcurrent(n int) *int { return &n }
