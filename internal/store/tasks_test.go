package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nxy7/viban/internal/models"
)

func TestCreateAndGetTask(t *testing.T) {
	db := openTestDB(t)
	b, err := CreateBoard(db, "B")
	require.NoError(t, err)
	col, err := CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)

	task, err := CreateTask(db, col.ID, "Do the thing", "details")
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	require.Equal(t, 1, task.Version)
	require.Equal(t, models.AgentStatusIdle, task.AgentStatus)
	require.Empty(t, task.ExecutedHooks)

	got, err := GetTask(db, task.ID)
	require.NoError(t, err)
	require.Equal(t, "Do the thing", got.Title)
	require.Equal(t, col.ID, got.ColumnID)
}

func TestListTasksForColumnAndBoard(t *testing.T) {
	db := openTestDB(t)
	b, err := CreateBoard(db, "B")
	require.NoError(t, err)
	col, err := CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)

	_, err = CreateTask(db, col.ID, "t1", "")
	require.NoError(t, err)
	_, err = CreateTask(db, col.ID, "t2", "")
	require.NoError(t, err)

	tasks, err := ListTasksForColumn(db, col.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byBoard, err := ListTasksForBoard(db, b.ID)
	require.NoError(t, err)
	require.Len(t, byBoard, 2)
}

func TestSaveTask_ExecutedHooksAndMessageQueueRoundTrip(t *testing.T) {
	db := openTestDB(t)
	b, err := CreateBoard(db, "B")
	require.NoError(t, err)
	col, err := CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)
	task, err := CreateTask(db, col.ID, "t1", "")
	require.NoError(t, err)

	task.MarkExecuted("colhook_1")
	task.MessageQueue = append(task.MessageQueue, "please hurry")
	task.AgentStatus = models.AgentStatusThinking

	require.NoError(t, SaveTask(db, task))
	require.Equal(t, 2, task.Version)

	got, err := GetTask(db, task.ID)
	require.NoError(t, err)
	require.True(t, got.HasExecuted("colhook_1"))
	require.Equal(t, []string{"please hurry"}, got.MessageQueue)
	require.Equal(t, models.AgentStatusThinking, got.AgentStatus)
	require.Equal(t, 2, got.Version)
}

func TestSaveTask_VersionConflict(t *testing.T) {
	db := openTestDB(t)
	b, err := CreateBoard(db, "B")
	require.NoError(t, err)
	col, err := CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)
	task, err := CreateTask(db, col.ID, "t1", "")
	require.NoError(t, err)

	stale := *task
	stale.Title = "stale write"

	require.NoError(t, SaveTask(db, task))

	err = SaveTask(db, &stale)
	require.Error(t, err)
	var vc *VersionConflictError
	require.ErrorAs(t, err, &vc)
	require.Equal(t, "task", vc.Entity)
}

func TestDeleteTask(t *testing.T) {
	db := openTestDB(t)
	b, err := CreateBoard(db, "B")
	require.NoError(t, err)
	col, err := CreateColumn(db, b.ID, "Todo", 0, defaultColumnSettingsForTest())
	require.NoError(t, err)
	task, err := CreateTask(db, col.ID, "t1", "")
	require.NoError(t, err)

	require.NoError(t, DeleteTask(db, task.ID))

	_, err = GetTask(db, task.ID)
	require.Error(t, err)
}
