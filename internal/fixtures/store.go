// Package fixtures checks cross-reference integrity of contract fixtures.
//
// A Bundle of users, projects and tasks is loaded into a throwaway SQLite
// database and every user, project and task link is joined against the rows
// it should point at. The contract itself never enforces these links; this
// package backs contract tests and the contractctl refs command.
package fixtures

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xenon007/todo-contract/models"
)

// MemoryPath keeps the fixture database in memory.
const MemoryPath = ":memory:"

// ErrNoDatabase is returned by methods called on a closed store.
var ErrNoDatabase = errors.New("fixture database is closed")

// Bundle is a self-contained set of fixture records.
type Bundle struct {
	Users    []models.User    `json:"users"`
	Projects []models.Project `json:"projects"`
	Tasks    []models.Task    `json:"tasks"`
}

// ReadBundle decodes a bundle from a JSON file.
func ReadBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("read bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("decode bundle %s: %w", path, err)
	}
	return b, nil
}

// Store wraps the fixture database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the fixture database at path, runs the migrations and empties
// any rows left by a previous run. Use MemoryPath unless the database should
// be kept for inspection.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if path != MemoryPath {
		if err := ensureDir(path); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection keeps an in-memory database alive for the store's lifetime.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Links are deliberately not declared as foreign keys: dangling ids must load
// so CheckReferences can report them.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL DEFAULT '',
            name TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            status TEXT NOT NULL,
            owner_id TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS project_members (
            project_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            role TEXT NOT NULL,
            PRIMARY KEY (project_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            status TEXT NOT NULL,
            priority TEXT NOT NULL,
            project_id TEXT,
            assignee_id TEXT,
            created_by TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS comments (
            id TEXT PRIMARY KEY,
            task_id TEXT NOT NULL,
            author_id TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS attachments (
            id TEXT PRIMARY KEY,
            task_id TEXT NOT NULL,
            uploaded_by TEXT NOT NULL,
            size INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);`,
	}

	for _, table := range []string{"users", "projects", "project_members", "tasks", "comments", "attachments"} {
		stmts = append(stmts, `DELETE FROM `+table+`;`)
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
