package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nxy7/viban/internal/models"
)

func TestAttachHook_RoundTripsSettings(t *testing.T) {
	db := openTestDB(t)
	b, err := CreateBoard(db, "B")
	require.NoError(t, err)
	col, err := CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)
	h, err := CreateHook(db, models.Hook{BoardID: b.ID, Name: "move it", Kind: models.HookKindSystem})
	require.NoError(t, err)

	ch, err := AttachHook(db, models.ColumnHook{
		ColumnID:     col.ID,
		HookID:       "system:move-task",
		Position:     0,
		ExecuteOnce:  true,
		Transparent:  true,
		Removable:    false,
		HookSettings: models.HookSettings{"target": "next"},
	})
	require.NoError(t, err)
	_ = h

	got, err := GetColumnHook(db, ch.ID)
	require.NoError(t, err)
	require.True(t, got.ExecuteOnce)
	require.True(t, got.Transparent)
	require.False(t, got.Removable)

	move, ok := got.HookSettings.MoveTask()
	require.True(t, ok)
	require.True(t, move.Target.Next)
}

func TestListColumnHooks_OrderedByPosition(t *testing.T) {
	db := openTestDB(t)
	b, err := CreateBoard(db, "B")
	require.NoError(t, err)
	col, err := CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)

	_, err = AttachHook(db, models.ColumnHook{ColumnID: col.ID, HookID: "h2", Position: 1})
	require.NoError(t, err)
	_, err = AttachHook(db, models.ColumnHook{ColumnID: col.ID, HookID: "h1", Position: 0})
	require.NoError(t, err)

	hooks, err := ListColumnHooks(db, col.ID)
	require.NoError(t, err)
	require.Len(t, hooks, 2)
	require.Equal(t, "h1", hooks[0].HookID)
	require.Equal(t, "h2", hooks[1].HookID)
}

func TestDetachHook(t *testing.T) {
	db := openTestDB(t)
	b, err := CreateBoard(db, "B")
	require.NoError(t, err)
	col, err := CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)
	ch, err := AttachHook(db, models.ColumnHook{ColumnID: col.ID, HookID: "h1", Position: 0})
	require.NoError(t, err)

	require.NoError(t, DetachHook(db, ch.ID))

	_, err = GetColumnHook(db, ch.ID)
	require.Error(t, err)
}
