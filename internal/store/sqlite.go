package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/s1natex/task-manager-api/internal/tasks"
)

// SQLite is a tasks.Store backed by a sqlite database file. Each method is a
// single statement, which sqlite executes atomically.
type SQLite struct {
	db *sql.DB
}

var _ tasks.Store = (*SQLite)(nil)

func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Reasonable pragmas for an app server
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragmas: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// ApplyMigrations ensures schema exists
func (s *SQLite) ApplyMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	is_completed INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
	`)
	if err != nil {
		return fmt.Errorf("migrate tasks table: %w", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) ([]tasks.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, is_completed, created_at
		FROM tasks
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []tasks.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, id string) (tasks.Task, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, is_completed, created_at
		FROM tasks
		WHERE id = ?
	`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tasks.Task{}, false, nil
	}
	if err != nil {
		return tasks.Task{}, false, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, true, nil
}

func (s *SQLite) Insert(ctx context.Context, t tasks.Task) (tasks.Task, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tasks (id, title, description, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.IsCompleted, t.CreatedAt.UnixMilli())
	if err != nil {
		return tasks.Task{}, fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return t, nil
}

func (s *SQLite) Update(ctx context.Context, t tasks.Task) (tasks.Task, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, is_completed = ?, created_at = ?
		WHERE id = ?
	`, t.Title, t.Description, t.IsCompleted, t.CreatedAt.UnixMilli(), t.ID)
	if err != nil {
		return tasks.Task{}, false, fmt.Errorf("update task %s: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return tasks.Task{}, false, fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if n == 0 {
		return tasks.Task{}, false, nil
	}
	return t, true, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task %s: %w", id, err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (tasks.Task, error) {
	var (
		t       tasks.Task
		created int64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.IsCompleted, &created); err != nil {
		return tasks.Task{}, err
	}
	t.CreatedAt = time.UnixMilli(created).UTC()
	return t, nil
}

// SQLiteFileDSN builds a DSN like: file:/absolute/path?_pragma=busy_timeout(5000)
// creating the parent directory when needed.
func SQLiteFileDSN(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)", nil
}
