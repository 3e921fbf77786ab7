package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nxy7/viban/internal/models"
)

// GenerateBoardID returns a new globally unique board id.
func GenerateBoardID() string { return generatePrefixedID("board") }

// CreateBoard inserts a new board row.
func CreateBoard(db *sql.DB, name string) (*models.Board, error) {
	id := GenerateBoardID()
	err := RetryWithBackoff(context.Background(), func() error {
		_, err := db.ExecContext(context.Background(), `
			INSERT INTO boards (id, name) VALUES (?, ?)
		`, id, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	return &models.Board{ID: id, Name: name}, nil
}

// GetBoard loads a board by id.
func GetBoard(db *sql.DB, id string) (*models.Board, error) {
	var b models.Board
	err := db.QueryRowContext(context.Background(), `
		SELECT id, name FROM boards WHERE id = ?
	`, id).Scan(&b.ID, &b.Name)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "board", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return &b, nil
}

// ListBoards returns every board, ordered by id for stable output.
func ListBoards(db *sql.DB) ([]*models.Board, error) {
	rows, err := db.QueryContext(context.Background(), `SELECT id, name FROM boards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Board
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// DeleteBoard removes a board and (via ON DELETE CASCADE) its columns,
// hooks, column attachments, tasks, and hook executions.
func DeleteBoard(db *sql.DB, id string) error {
	return RetryWithBackoff(context.Background(), func() error {
		res, err := db.ExecContext(context.Background(), `DELETE FROM boards WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete board: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &NotFoundError{Entity: "board", ID: id}
		}
		return nil
	})
}
