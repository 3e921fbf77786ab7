package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nxy7/viban/internal/models"
)

// GenerateColumnHookID returns a new globally unique column_hook id.
func GenerateColumnHookID() string { return generatePrefixedID("colhook") }

const columnHookSelectColumns = `id, column_id, hook_id, position, execute_once, transparent, removable, hook_settings`

// AttachHook attaches hook_id to column_id at the given position.
func AttachHook(db *sql.DB, ch models.ColumnHook) (*models.ColumnHook, error) {
	ch.ID = GenerateColumnHookID()
	settingsJSON, err := marshalHookSettings(ch.HookSettings)
	if err != nil {
		return nil, fmt.Errorf("marshal hook settings: %w", err)
	}

	err = RetryWithBackoff(context.Background(), func() error {
		_, err := db.ExecContext(context.Background(), `
			INSERT INTO column_hooks (id, column_id, hook_id, position, execute_once, transparent, removable, hook_settings)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, ch.ID, ch.ColumnID, ch.HookID, ch.Position, boolToInt(ch.ExecuteOnce), boolToInt(ch.Transparent),
			boolToInt(ch.Removable), settingsJSON)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("attach hook: %w", err)
	}
	return &ch, nil
}

func marshalHookSettings(s models.HookSettings) (string, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalHookSettings(raw string) (models.HookSettings, error) {
	if raw == "" {
		return models.HookSettings{}, nil
	}
	var s models.HookSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	if s == nil {
		s = models.HookSettings{}
	}
	return s, nil
}

func scanColumnHook(row interface{ Scan(dest ...any) error }) (*models.ColumnHook, error) {
	var ch models.ColumnHook
	var executeOnce, transparent, removable int
	var settingsJSON string
	if err := row.Scan(&ch.ID, &ch.ColumnID, &ch.HookID, &ch.Position, &executeOnce, &transparent,
		&removable, &settingsJSON); err != nil {
		return nil, err
	}
	ch.ExecuteOnce = executeOnce != 0
	ch.Transparent = transparent != 0
	ch.Removable = removable != 0
	settings, err := unmarshalHookSettings(settingsJSON)
	if err != nil {
		return nil, fmt.Errorf("unmarshal hook settings for column_hook %s: %w", ch.ID, err)
	}
	ch.HookSettings = settings
	return &ch, nil
}

// GetColumnHook loads a single attachment by id.
func GetColumnHook(db *sql.DB, id string) (*models.ColumnHook, error) {
	ch, err := scanColumnHook(db.QueryRowContext(context.Background(), `
		SELECT `+columnHookSelectColumns+` FROM column_hooks WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "column_hook", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get column_hook: %w", err)
	}
	return ch, nil
}

// ListColumnHooks returns a column's hook attachments ordered by position —
// the order in which TaskActor enqueues hook_entry commands for that column.
func ListColumnHooks(db *sql.DB, columnID string) ([]*models.ColumnHook, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT `+columnHookSelectColumns+` FROM column_hooks WHERE column_id = ? ORDER BY position
	`, columnID)
	if err != nil {
		return nil, fmt.Errorf("list column_hooks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.ColumnHook
	for rows.Next() {
		ch, err := scanColumnHook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan column_hook: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// DetachHook removes a single column/hook attachment. Callers enforce the
// Removable flag before calling this.
func DetachHook(db *sql.DB, id string) error {
	return RetryWithBackoff(context.Background(), func() error {
		res, err := db.ExecContext(context.Background(), `DELETE FROM column_hooks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("detach hook: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Entity: "column_hook", ID: id}
		}
		return nil
	})
}
