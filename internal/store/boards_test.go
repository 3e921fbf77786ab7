package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAndGetBoard(t *testing.T) {
	db, err := InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b, err := CreateBoard(db, "Engineering")
	require.NoError(t, err)
	require.NotEmpty(t, b.ID)

	got, err := GetBoard(db, b.ID)
	require.NoError(t, err)
	require.Equal(t, "Engineering", got.Name)
}

func TestGetBoard_NotFound(t *testing.T) {
	db, err := InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = GetBoard(db, "board_missing")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListBoards(t *testing.T) {
	db, err := InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = CreateBoard(db, "A")
	require.NoError(t, err)
	_, err = CreateBoard(db, "B")
	require.NoError(t, err)

	boards, err := ListBoards(db)
	require.NoError(t, err)
	require.Len(t, boards, 2)
}

func TestDeleteBoard_CascadesColumns(t *testing.T) {
	db, err := InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b, err := CreateBoard(db, "Temp")
	require.NoError(t, err)
	_, err = CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)

	require.NoError(t, DeleteBoard(db, b.ID))

	cols, err := ListColumnsForBoard(db, b.ID)
	require.NoError(t, err)
	require.Empty(t, cols)
}

func TestDeleteBoard_NotFound(t *testing.T) {
	db, err := InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = DeleteBoard(db, "board_missing")
	require.Error(t, err)
}
