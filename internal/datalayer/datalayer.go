// Package datalayer exposes the narrow repository interface spec.md's
// actors are written against (a Store), plus the sqlite-backed
// implementation wired to the rest of internal/store and a Notifier that
// publishes board/task mutations onto the EventBus (C9) so interested
// actors and UI pollers see them without re-querying.
package datalayer

import (
	"database/sql"

	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/store"
)

// TaskUpdate is the payload published on models.TopicTaskUpdates.
type TaskUpdate struct {
	Kind string
	Task *models.Task
}

// BoardUpdate is the payload published on models.BoardLifecycleTopic(boardID)
// for board/column lifecycle events that are not per-task.
type BoardUpdate struct {
	Kind     string
	BoardID  string
	ColumnID string
}

// Store is the full surface TaskActor, BoardActor, BoardSupervisor, and
// BoardManager read and write through. A single sqlite-backed
// implementation (Layer) is provided; tests may substitute a fake.
type Store interface {
	CreateBoard(name string) (*models.Board, error)
	GetBoard(id string) (*models.Board, error)
	ListBoards() ([]*models.Board, error)
	DeleteBoard(id string) error

	CreateColumn(boardID, name string, position int, settings models.ColumnSettings) (*models.Column, error)
	GetColumn(id string) (*models.Column, error)
	ListColumnsForBoard(boardID string) ([]*models.Column, error)
	UpdateColumnSettings(id string, settings models.ColumnSettings) error
	DeleteColumn(id string) error

	CreateHook(h models.Hook) (*models.Hook, error)
	GetHook(id string) (*models.Hook, error)
	ListHooksForBoard(boardID string) ([]*models.Hook, error)
	DeleteHook(id string) error

	AttachHook(ch models.ColumnHook) (*models.ColumnHook, error)
	GetColumnHook(id string) (*models.ColumnHook, error)
	ListColumnHooks(columnID string) ([]*models.ColumnHook, error)
	DetachHook(id string) error

	CreateTask(columnID, title, description string) (*models.Task, error)
	GetTask(id string) (*models.Task, error)
	ListTasksForColumn(columnID string) ([]*models.Task, error)
	ListTasksForBoard(boardID string) ([]*models.Task, error)
	SaveTask(t *models.Task) error
	DeleteTask(id string) error

	HookExecutions() *store.HookExecutionLog
}

// Layer implements Store against a *sql.DB, publishing a notification on
// bus after every successful mutation.
type Layer struct {
	db       *sql.DB
	bus      *registry.EventBus
	hookExec *store.HookExecutionLog
}

// New wraps db, publishing mutation notifications to bus.
func New(db *sql.DB, bus *registry.EventBus) *Layer {
	return &Layer{db: db, bus: bus, hookExec: store.NewHookExecutionLog(db)}
}

func (l *Layer) HookExecutions() *store.HookExecutionLog { return l.hookExec }

func (l *Layer) publishBoard(boardID string, update BoardUpdate) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(models.BoardLifecycleTopic(boardID), update)
}

func (l *Layer) publishTask(boardID string, update TaskUpdate) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(models.TopicTaskUpdates, update)
}

func (l *Layer) CreateBoard(name string) (*models.Board, error) {
	b, err := store.CreateBoard(l.db, name)
	if err != nil {
		return nil, err
	}
	l.publishBoard(b.ID, BoardUpdate{Kind: models.EventKindBoardCreated, BoardID: b.ID})
	return b, nil
}

func (l *Layer) GetBoard(id string) (*models.Board, error) { return store.GetBoard(l.db, id) }
func (l *Layer) ListBoards() ([]*models.Board, error)       { return store.ListBoards(l.db) }

func (l *Layer) DeleteBoard(id string) error {
	if err := store.DeleteBoard(l.db, id); err != nil {
		return err
	}
	l.publishBoard(id, BoardUpdate{Kind: models.EventKindBoardDeleted, BoardID: id})
	return nil
}

func (l *Layer) CreateColumn(boardID, name string, position int, settings models.ColumnSettings) (*models.Column, error) {
	c, err := store.CreateColumn(l.db, boardID, name, position, settings)
	if err != nil {
		return nil, err
	}
	l.publishBoard(boardID, BoardUpdate{Kind: models.EventKindColumnCreated, BoardID: boardID, ColumnID: c.ID})
	return c, nil
}

func (l *Layer) GetColumn(id string) (*models.Column, error) { return store.GetColumn(l.db, id) }

func (l *Layer) ListColumnsForBoard(boardID string) ([]*models.Column, error) {
	return store.ListColumnsForBoard(l.db, boardID)
}

func (l *Layer) UpdateColumnSettings(id string, settings models.ColumnSettings) error {
	return store.UpdateColumnSettings(l.db, id, settings)
}

func (l *Layer) DeleteColumn(id string) error {
	col, err := store.GetColumn(l.db, id)
	if err != nil {
		return err
	}
	if err := store.DeleteColumn(l.db, id); err != nil {
		return err
	}
	l.publishBoard(col.BoardID, BoardUpdate{Kind: models.EventKindColumnDeleted, BoardID: col.BoardID, ColumnID: id})
	return nil
}

func (l *Layer) CreateHook(h models.Hook) (*models.Hook, error) { return store.CreateHook(l.db, h) }
func (l *Layer) GetHook(id string) (*models.Hook, error)        { return store.GetHook(l.db, id) }

func (l *Layer) ListHooksForBoard(boardID string) ([]*models.Hook, error) {
	return store.ListHooksForBoard(l.db, boardID)
}

func (l *Layer) DeleteHook(id string) error { return store.DeleteHook(l.db, id) }

func (l *Layer) AttachHook(ch models.ColumnHook) (*models.ColumnHook, error) {
	return store.AttachHook(l.db, ch)
}

func (l *Layer) GetColumnHook(id string) (*models.ColumnHook, error) {
	return store.GetColumnHook(l.db, id)
}

func (l *Layer) ListColumnHooks(columnID string) ([]*models.ColumnHook, error) {
	return store.ListColumnHooks(l.db, columnID)
}

func (l *Layer) DetachHook(id string) error { return store.DetachHook(l.db, id) }

func (l *Layer) CreateTask(columnID, title, description string) (*models.Task, error) {
	t, err := store.CreateTask(l.db, columnID, title, description)
	if err != nil {
		return nil, err
	}
	boardID := l.boardIDForColumn(columnID)
	l.publishTask(boardID, TaskUpdate{Kind: models.EventKindTaskCreated, Task: t})
	return t, nil
}

func (l *Layer) GetTask(id string) (*models.Task, error) { return store.GetTask(l.db, id) }

func (l *Layer) ListTasksForColumn(columnID string) ([]*models.Task, error) {
	return store.ListTasksForColumn(l.db, columnID)
}

func (l *Layer) ListTasksForBoard(boardID string) ([]*models.Task, error) {
	return store.ListTasksForBoard(l.db, boardID)
}

func (l *Layer) SaveTask(t *models.Task) error {
	if err := store.SaveTask(l.db, t); err != nil {
		return err
	}
	boardID := l.boardIDForColumn(t.ColumnID)
	l.publishTask(boardID, TaskUpdate{Kind: models.EventKindTaskUpdated, Task: t})
	return nil
}

func (l *Layer) DeleteTask(id string) error {
	t, err := store.GetTask(l.db, id)
	if err != nil {
		return err
	}
	if err := store.DeleteTask(l.db, id); err != nil {
		return err
	}
	boardID := l.boardIDForColumn(t.ColumnID)
	l.publishTask(boardID, TaskUpdate{Kind: models.EventKindTaskDeleted, Task: t})
	return nil
}

// boardIDForColumn is a best-effort lookup; an error (column already gone)
// yields an empty board id. The notification is unaffected: publishTask
// sends every task update on the global task-updates topic only.
func (l *Layer) boardIDForColumn(columnID string) string {
	col, err := store.GetColumn(l.db, columnID)
	if err != nil {
		return ""
	}
	return col.BoardID
}

var _ Store = (*Layer)(nil)
