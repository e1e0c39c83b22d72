package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/validation"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is used when no database path is configured.
const DefaultSQLitePath = ".vedit/vedit.db"

const schema = `
CREATE TABLE IF NOT EXISTS files (
	project_id TEXT NOT NULL,
	path       TEXT NOT NULL,
	content    TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (project_id, path)
);
CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
`

// SQLiteStore keeps files in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string, logger logging.Logger) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path != ":memory:" {
		if err := validation.ValidatePath(path); err != nil {
			return nil, fmt.Errorf("invalid database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("storage")
	logger.Debug(ctx, "SQLite store opened", "path", path)

	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

// GetFile implements Store.
func (s *SQLiteStore) GetFile(ctx context.Context, projectID, path string) (*File, error) {
	path, err := key(projectID, path)
	if err != nil {
		return nil, err
	}

	var (
		file    = File{ProjectID: projectID, Path: path}
		updated int64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT content, updated_at FROM files WHERE project_id = ? AND path = ?`,
		projectID, path,
	).Scan(&file.Content, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	file.UpdatedAt = time.Unix(0, updated)
	return &file, nil
}

// CreateFile implements Store.
func (s *SQLiteStore) CreateFile(ctx context.Context, file *File) error {
	path, err := key(file.ProjectID, file.Path)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO files (project_id, path, content, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (project_id, path) DO NOTHING`,
		file.ProjectID, path, file.Content, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExists
	}
	return nil
}

// UpdateFile implements Store.
func (s *SQLiteStore) UpdateFile(ctx context.Context, projectID, path string, update FileUpdate) error {
	path, err := key(projectID, path)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE files SET content = ?, updated_at = ? WHERE project_id = ? AND path = ?`,
		update.Content, s.now().UnixNano(), projectID, path,
	)
	if err != nil {
		return fmt.Errorf("failed to update file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PutFile creates or replaces a file in one statement.
func (s *SQLiteStore) PutFile(ctx context.Context, file *File) error {
	path, err := key(file.ProjectID, file.Path)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO files (project_id, path, content, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (project_id, path) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		file.ProjectID, path, file.Content, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to put file: %w", err)
	}
	return nil
}

// DeleteFile implements Store.
func (s *SQLiteStore) DeleteFile(ctx context.Context, projectID, path string) error {
	path, err := key(projectID, path)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM files WHERE project_id = ? AND path = ?`, projectID, path)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetFiles implements Store. Files are sorted by path.
func (s *SQLiteStore) GetFiles(ctx context.Context, projectID string) ([]File, error) {
	if err := validation.ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, content, updated_at FROM files WHERE project_id = ? ORDER BY path`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := []File{}
	for rows.Next() {
		var (
			file    = File{ProjectID: projectID}
			updated int64
		)
		if err := rows.Scan(&file.Path, &file.Content, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		file.UpdatedAt = time.Unix(0, updated)
		files = append(files, file)
	}
	return files, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
