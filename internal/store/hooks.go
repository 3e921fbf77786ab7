package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nxy7/viban/internal/models"
)

// GenerateHookID returns a new globally unique hook id.
func GenerateHookID() string { return generatePrefixedID("hook") }

const hookSelectColumns = `id, board_id, name, kind, command, agent_prompt, agent_executor, default_execute_once, default_transparent`

// CreateHook inserts a new reusable hook definition.
func CreateHook(db *sql.DB, h models.Hook) (*models.Hook, error) {
	h.ID = GenerateHookID()
	err := RetryWithBackoff(context.Background(), func() error {
		_, err := db.ExecContext(context.Background(), `
			INSERT INTO hooks (id, board_id, name, kind, command, agent_prompt, agent_executor, default_execute_once, default_transparent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, h.ID, h.BoardID, h.Name, h.Kind, h.Command, h.AgentPrompt, h.AgentExecutor,
			boolToInt(h.DefaultExecuteOnce), boolToInt(h.DefaultTransparent))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create hook: %w", err)
	}
	return &h, nil
}

func scanHook(row interface{ Scan(dest ...any) error }) (*models.Hook, error) {
	var h models.Hook
	var executeOnce, transparent int
	if err := row.Scan(&h.ID, &h.BoardID, &h.Name, &h.Kind, &h.Command, &h.AgentPrompt, &h.AgentExecutor,
		&executeOnce, &transparent); err != nil {
		return nil, err
	}
	h.DefaultExecuteOnce = executeOnce != 0
	h.DefaultTransparent = transparent != 0
	return &h, nil
}

// GetHook loads a hook by id. System hook ids (see models.IsSystemID) never
// live here; callers must check that first.
func GetHook(db *sql.DB, id string) (*models.Hook, error) {
	h, err := scanHook(db.QueryRowContext(context.Background(), `
		SELECT `+hookSelectColumns+` FROM hooks WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "hook", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get hook: %w", err)
	}
	return h, nil
}

// ListHooksForBoard returns every reusable hook defined on a board.
func ListHooksForBoard(db *sql.DB, boardID string) ([]*models.Hook, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT `+hookSelectColumns+` FROM hooks WHERE board_id = ? ORDER BY id
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list hooks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Hook
	for rows.Next() {
		h, err := scanHook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hook: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHook removes a hook definition. Column attachments referencing it
// are left for the caller to reconcile; the data layer owns that policy.
func DeleteHook(db *sql.DB, id string) error {
	return RetryWithBackoff(context.Background(), func() error {
		res, err := db.ExecContext(context.Background(), `DELETE FROM hooks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete hook: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Entity: "hook", ID: id}
		}
		return nil
	})
}
