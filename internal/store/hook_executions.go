package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nxy7/viban/internal/models"
)

// GenerateHookExecutionID returns a new globally unique hook_execution id.
func GenerateHookExecutionID() string { return generatePrefixedID("hookexec") }

// HookExecutionLog is the durable, append-mostly record of hook execution
// lifecycle transitions (C10). It never initiates a transition itself —
// TaskActor calls Queue/Start/Complete/Fail/Cancel/Skip as it drives a
// command through the CommandQueue and HookRunner.
type HookExecutionLog struct {
	db *sql.DB
}

// NewHookExecutionLog wraps db as a HookExecutionLog.
func NewHookExecutionLog(db *sql.DB) *HookExecutionLog {
	return &HookExecutionLog{db: db}
}

// Queue inserts a pending row. columnHookID is empty for system hooks
// invoked outside a column attachment (none currently, but the column
// allows it).
func (l *HookExecutionLog) Queue(taskID, columnHookID, hookID, hookName, triggeringColumnID string, settings models.HookSettings) (string, error) {
	id := GenerateHookExecutionID()
	settingsJSON, err := marshalHookSettings(settings)
	if err != nil {
		return "", fmt.Errorf("marshal hook settings: %w", err)
	}

	err = RetryWithBackoff(context.Background(), func() error {
		_, err := l.db.ExecContext(context.Background(), `
			INSERT INTO hook_executions (id, task_id, column_hook_id, hook_id, hook_name, triggering_column_id, status, hook_settings, queued_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, taskID, columnHookID, hookID, hookName, triggeringColumnID, models.HookExecutionPending, settingsJSON, time.Now().UTC())
		return err
	})
	if err != nil {
		return "", fmt.Errorf("queue hook execution: %w", err)
	}
	return id, nil
}

func (l *HookExecutionLog) setStatus(rowID string, status models.HookExecutionStatus, extra map[string]any) error {
	return RetryWithBackoff(context.Background(), func() error {
		switch status {
		case models.HookExecutionRunning:
			_, err := l.db.ExecContext(context.Background(), `
				UPDATE hook_executions SET status = ?, started_at = ? WHERE id = ?
			`, status, time.Now().UTC(), rowID)
			return err
		default:
			errMsg, _ := extra["error_message"].(string)
			skipReason, _ := extra["skip_reason"].(string)
			_, err := l.db.ExecContext(context.Background(), `
				UPDATE hook_executions SET status = ?, error_message = ?, skip_reason = ?, completed_at = ? WHERE id = ?
			`, status, errMsg, skipReason, time.Now().UTC(), rowID)
			return err
		}
	})
}

// Start marks a pending row running.
func (l *HookExecutionLog) Start(rowID string) error {
	return l.setStatus(rowID, models.HookExecutionRunning, nil)
}

// Complete marks a row successfully finished.
func (l *HookExecutionLog) Complete(rowID string) error {
	return l.setStatus(rowID, models.HookExecutionCompleted, nil)
}

// Fail marks a row failed with errorMessage.
func (l *HookExecutionLog) Fail(rowID, errorMessage string) error {
	return l.setStatus(rowID, models.HookExecutionFailed, map[string]any{"error_message": errorMessage})
}

// Cancel marks a row cancelled with reason (e.g. a column change).
func (l *HookExecutionLog) Cancel(rowID, reason string) error {
	return l.setStatus(rowID, models.HookExecutionCancelled, map[string]any{"skip_reason": reason})
}

// Skip marks a row skipped with reason (e.g. hooks disabled, missing worktree).
func (l *HookExecutionLog) Skip(rowID, reason string) error {
	return l.setStatus(rowID, models.HookExecutionSkipped, map[string]any{"skip_reason": reason})
}

const hookExecutionSelectColumns = `id, task_id, column_hook_id, hook_id, hook_name, triggering_column_id,
	status, skip_reason, error_message, hook_settings, queued_at, started_at, completed_at`

func scanHookExecution(row interface{ Scan(dest ...any) error }) (*models.HookExecution, error) {
	var e models.HookExecution
	var settingsJSON string
	var startedAt, completedAt sql.NullTime
	if err := row.Scan(&e.ID, &e.TaskID, &e.ColumnHookID, &e.HookID, &e.HookName, &e.TriggeringColumnID,
		&e.Status, &e.SkipReason, &e.ErrorMessage, &settingsJSON, &e.QueuedAt, &startedAt, &completedAt); err != nil {
		return nil, err
	}
	settings, err := unmarshalHookSettings(settingsJSON)
	if err != nil {
		return nil, fmt.Errorf("unmarshal hook settings for execution %s: %w", e.ID, err)
	}
	e.HookSettings = settings
	e.StartedAt = scanNullTime(startedAt)
	e.CompletedAt = scanNullTime(completedAt)
	return &e, nil
}

func (l *HookExecutionLog) queryRows(query string, args ...any) ([]*models.HookExecution, error) {
	rows, err := l.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*models.HookExecution
	for rows.Next() {
		e, err := scanHookExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PendingForTask returns a task's pending (not yet started) executions, in
// queue order.
func (l *HookExecutionLog) PendingForTask(taskID string) ([]*models.HookExecution, error) {
	return l.queryRows(`
		SELECT `+hookExecutionSelectColumns+` FROM hook_executions
		WHERE task_id = ? AND status = ? ORDER BY queued_at
	`, taskID, models.HookExecutionPending)
}

// ActiveForTask returns a task's pending and running executions, in queue order.
func (l *HookExecutionLog) ActiveForTask(taskID string) ([]*models.HookExecution, error) {
	return l.queryRows(`
		SELECT `+hookExecutionSelectColumns+` FROM hook_executions
		WHERE task_id = ? AND status IN (?, ?) ORDER BY queued_at
	`, taskID, models.HookExecutionPending, models.HookExecutionRunning)
}

// HistoryForTask returns a task's execution history, most recent first. If
// before is non-zero, only rows with queued_at strictly earlier than before
// are returned, making before the cursor for the next page (its queued_at
// value, taken from the last row of the prior page). limit <= 0 means no cap.
func (l *HookExecutionLog) HistoryForTask(taskID string, limit int, before time.Time) ([]*models.HookExecution, error) {
	query := `SELECT ` + hookExecutionSelectColumns + ` FROM hook_executions WHERE task_id = ?`
	args := []any{taskID}

	if !before.IsZero() {
		query += ` AND queued_at < ?`
		args = append(args, before.UTC())
	}
	query += ` ORDER BY queued_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return l.queryRows(query, args...)
}

// ActiveForTaskAndColumn returns a task's pending/running executions whose
// triggering_column_id matches columnID — used to decide whether a hook for
// the current column already has work in flight.
func (l *HookExecutionLog) ActiveForTaskAndColumn(taskID, columnID string) ([]*models.HookExecution, error) {
	return l.queryRows(`
		SELECT `+hookExecutionSelectColumns+` FROM hook_executions
		WHERE task_id = ? AND triggering_column_id = ? AND status IN (?, ?)
		ORDER BY queued_at
	`, taskID, columnID, models.HookExecutionPending, models.HookExecutionRunning)
}

// SaveQueueSnapshot overwrites the authoritative "about to happen / running
// now" view for a task. TaskActor calls this on entry-command resolution.
func (l *HookExecutionLog) SaveQueueSnapshot(taskID string, entries []models.QueueSnapshotEntry) error {
	if entries == nil {
		entries = []models.QueueSnapshotEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal queue snapshot: %w", err)
	}
	return RetryWithBackoff(context.Background(), func() error {
		_, err := l.db.ExecContext(context.Background(), `
			INSERT INTO queue_snapshots (task_id, entries, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(task_id) DO UPDATE SET entries = excluded.entries, updated_at = excluded.updated_at
		`, taskID, string(b), time.Now().UTC())
		return err
	})
}

// ClearQueueSnapshot empties a task's snapshot once its queue drains idle.
func (l *HookExecutionLog) ClearQueueSnapshot(taskID string) error {
	return l.SaveQueueSnapshot(taskID, nil)
}

// QueueSnapshot returns a task's current snapshot, or an empty slice if none
// has ever been saved.
func (l *HookExecutionLog) QueueSnapshot(taskID string) ([]models.QueueSnapshotEntry, error) {
	var raw string
	err := l.db.QueryRowContext(context.Background(), `
		SELECT entries FROM queue_snapshots WHERE task_id = ?
	`, taskID).Scan(&raw)
	if err == sql.ErrNoRows {
		return []models.QueueSnapshotEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load queue snapshot: %w", err)
	}
	var entries []models.QueueSnapshotEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("unmarshal queue snapshot: %w", err)
	}
	return entries, nil
}
