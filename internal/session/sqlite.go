package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore provides SQLite-backed persistence for session records.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and creates the
// sessions table if it doesn't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_key TEXT PRIMARY KEY,
		workspace_path TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_used_at DATETIME NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get retrieves the record for key. Returns nil (not an error) if absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_key, workspace_path, created_at, last_used_at
		 FROM sessions WHERE session_key = ?`,
		key,
	)

	var rec Record
	err := row.Scan(&rec.SessionKey, &rec.WorkspacePath, &rec.CreatedAt, &rec.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &rec, nil
}

// Commit upserts the mapping for key, refreshing last_used_at.
func (s *SQLiteStore) Commit(ctx context.Context, key, workspacePath string) error {
	now := time.Now()

	// Try to update an existing record first.
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET workspace_path = ?, last_used_at = ?
		 WHERE session_key = ?`,
		workspacePath, now, key,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	// If no rows were updated, insert a new record.
	if rowsAffected == 0 {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO sessions (session_key, workspace_path, created_at, last_used_at)
			 VALUES (?, ?, ?, ?)`,
			key, workspacePath, now, now,
		)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}

	return nil
}
