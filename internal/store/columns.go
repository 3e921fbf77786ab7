package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nxy7/viban/internal/models"
)

// GenerateColumnID returns a new globally unique column id.
func GenerateColumnID() string { return generatePrefixedID("column") }

// CreateColumn inserts a new column at the given position.
func CreateColumn(db *sql.DB, boardID, name string, position int, settings models.ColumnSettings) (*models.Column, error) {
	id := GenerateColumnID()
	err := RetryWithBackoff(context.Background(), func() error {
		_, err := db.ExecContext(context.Background(), `
			INSERT INTO columns (id, board_id, name, position, hooks_enabled, max_concurrent_tasks)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, boardID, name, position, boolToInt(settings.HooksEnabled), settings.MaxConcurrentTasks)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create column: %w", err)
	}
	return &models.Column{ID: id, BoardID: boardID, Name: name, Position: position, Settings: settings}, nil
}

func scanColumn(row interface{ Scan(dest ...any) error }) (*models.Column, error) {
	var c models.Column
	var hooksEnabled int
	var maxConcurrent sql.NullInt64
	if err := row.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &hooksEnabled, &maxConcurrent); err != nil {
		return nil, err
	}
	c.Settings.HooksEnabled = hooksEnabled != 0
	if maxConcurrent.Valid {
		v := int(maxConcurrent.Int64)
		c.Settings.MaxConcurrentTasks = &v
	}
	return &c, nil
}

const columnSelectColumns = `id, board_id, name, position, hooks_enabled, max_concurrent_tasks`

// GetColumn loads a column by id.
func GetColumn(db *sql.DB, id string) (*models.Column, error) {
	c, err := scanColumn(db.QueryRowContext(context.Background(), `
		SELECT `+columnSelectColumns+` FROM columns WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "column", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get column: %w", err)
	}
	return c, nil
}

// ListColumnsForBoard returns a board's columns ordered by position.
func ListColumnsForBoard(db *sql.DB, boardID string) ([]*models.Column, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT `+columnSelectColumns+` FROM columns WHERE board_id = ? ORDER BY position
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Column
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateColumnSettings updates a column's hook-gating and concurrency config.
func UpdateColumnSettings(db *sql.DB, id string, settings models.ColumnSettings) error {
	return RetryWithBackoff(context.Background(), func() error {
		res, err := db.ExecContext(context.Background(), `
			UPDATE columns SET hooks_enabled = ?, max_concurrent_tasks = ? WHERE id = ?
		`, boolToInt(settings.HooksEnabled), settings.MaxConcurrentTasks, id)
		if err != nil {
			return fmt.Errorf("update column settings: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Entity: "column", ID: id}
		}
		return nil
	})
}

// DeleteColumn removes a column and its attachments/tasks via cascade.
func DeleteColumn(db *sql.DB, id string) error {
	return RetryWithBackoff(context.Background(), func() error {
		res, err := db.ExecContext(context.Background(), `DELETE FROM columns WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete column: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Entity: "column", ID: id}
		}
		return nil
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
