package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nxy7/viban/internal/models"
)

// GenerateTaskID returns a new globally unique task id.
func GenerateTaskID() string { return generatePrefixedID("task") }

const taskSelectColumns = `id, column_id, title, description, agent_status, agent_status_message,
	in_progress, error_message, worktree_path, worktree_branch, custom_branch_name,
	executed_hooks, message_queue, pr_url, pr_number, version, updated_at`

// CreateTask inserts a new task into columnID.
func CreateTask(db *sql.DB, columnID, title, description string) (*models.Task, error) {
	id := GenerateTaskID()
	now := time.Now().UTC()
	err := RetryWithBackoff(context.Background(), func() error {
		_, err := db.ExecContext(context.Background(), `
			INSERT INTO tasks (id, column_id, title, description, agent_status, version, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)
		`, id, columnID, title, description, models.AgentStatusIdle, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &models.Task{
		ID: id, ColumnID: columnID, Title: title, Description: description,
		AgentStatus: models.AgentStatusIdle, Version: 1, UpdatedAt: now,
	}, nil
}

func scanTask(row interface{ Scan(dest ...any) error }) (*models.Task, error) {
	var t models.Task
	var inProgress int
	var executedHooksJSON, messageQueueJSON string
	if err := row.Scan(&t.ID, &t.ColumnID, &t.Title, &t.Description, &t.AgentStatus, &t.AgentStatusMessage,
		&inProgress, &t.ErrorMessage, &t.WorktreePath, &t.WorktreeBranch, &t.CustomBranchName,
		&executedHooksJSON, &messageQueueJSON, &t.PRURL, &t.PRNumber, &t.Version, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.InProgress = inProgress != 0

	var executedList []string
	if executedHooksJSON != "" {
		if err := json.Unmarshal([]byte(executedHooksJSON), &executedList); err != nil {
			return nil, fmt.Errorf("unmarshal executed_hooks for task %s: %w", t.ID, err)
		}
	}
	t.ExecutedHooks = make(map[string]struct{}, len(executedList))
	for _, id := range executedList {
		t.ExecutedHooks[id] = struct{}{}
	}

	if messageQueueJSON != "" {
		if err := json.Unmarshal([]byte(messageQueueJSON), &t.MessageQueue); err != nil {
			return nil, fmt.Errorf("unmarshal message_queue for task %s: %w", t.ID, err)
		}
	}
	return &t, nil
}

// GetTask loads a task by id.
func GetTask(db *sql.DB, id string) (*models.Task, error) {
	t, err := scanTask(db.QueryRowContext(context.Background(), `
		SELECT `+taskSelectColumns+` FROM tasks WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "task", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasksForColumn returns every task currently in columnID.
func ListTasksForColumn(db *sql.DB, columnID string) ([]*models.Task, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT `+taskSelectColumns+` FROM tasks WHERE column_id = ? ORDER BY id
	`, columnID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTasksForBoard returns every task belonging to any column on boardID.
func ListTasksForBoard(db *sql.DB, boardID string) ([]*models.Task, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT t.id, t.column_id, t.title, t.description, t.agent_status, t.agent_status_message,
			t.in_progress, t.error_message, t.worktree_path, t.worktree_branch, t.custom_branch_name,
			t.executed_hooks, t.message_queue, t.pr_url, t.pr_number, t.version, t.updated_at
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		WHERE c.board_id = ?
		ORDER BY t.id
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for board: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTask persists the full task row with optimistic concurrency: the
// write only applies if the stored version still matches t.Version, and the
// stored version is incremented. Returns a *VersionConflictError otherwise.
func SaveTask(db *sql.DB, t *models.Task) error {
	executedList := make([]string, 0, len(t.ExecutedHooks))
	for id := range t.ExecutedHooks {
		executedList = append(executedList, id)
	}
	executedJSON, err := json.Marshal(executedList)
	if err != nil {
		return fmt.Errorf("marshal executed_hooks: %w", err)
	}
	messageQueueJSON, err := json.Marshal(t.MessageQueue)
	if err != nil {
		return fmt.Errorf("marshal message_queue: %w", err)
	}

	now := time.Now().UTC()
	return RetryWithBackoff(context.Background(), func() error {
		res, execErr := db.ExecContext(context.Background(), `
			UPDATE tasks SET
				column_id = ?, title = ?, description = ?, agent_status = ?, agent_status_message = ?,
				in_progress = ?, error_message = ?, worktree_path = ?, worktree_branch = ?, custom_branch_name = ?,
				executed_hooks = ?, message_queue = ?, pr_url = ?, pr_number = ?,
				version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?
		`, t.ColumnID, t.Title, t.Description, t.AgentStatus, t.AgentStatusMessage,
			boolToInt(t.InProgress), t.ErrorMessage, t.WorktreePath, t.WorktreeBranch, t.CustomBranchName,
			string(executedJSON), string(messageQueueJSON), t.PRURL, t.PRNumber,
			now, t.ID, t.Version)
		if execErr != nil {
			return fmt.Errorf("save task: %w", execErr)
		}
		n, rowsErr := res.RowsAffected()
		if rowsErr != nil {
			return rowsErr
		}
		if n == 0 {
			return &VersionConflictError{Entity: "task", ID: t.ID, Version: t.Version}
		}
		t.Version++
		t.UpdatedAt = now
		return nil
	})
}

// DeleteTask removes a task and its hook execution history via cascade.
func DeleteTask(db *sql.DB, id string) error {
	return RetryWithBackoff(context.Background(), func() error {
		res, err := db.ExecContext(context.Background(), `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Entity: "task", ID: id}
		}
		return nil
	})
}
