// Package storage persists project files for the editor. The server loads a
// file, patches it and writes the new text back through a Store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/validation"
)

var (
	// ErrNotFound is returned when a file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrExists is returned by CreateFile when the file already exists.
	ErrExists = errors.New("file already exists")
)

// File is one stored project file.
type File struct {
	ProjectID string    `json:"projectId" yaml:"projectId"`
	Path      string    `json:"path" yaml:"path"`
	Content   string    `json:"content" yaml:"content"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// FileUpdate carries the fields UpdateFile may change.
type FileUpdate struct {
	Content string `json:"content"`
}

// Store is the file persistence boundary.
type Store interface {
	GetFile(ctx context.Context, projectID, path string) (*File, error)
	CreateFile(ctx context.Context, file *File) error
	UpdateFile(ctx context.Context, projectID, path string, update FileUpdate) error
	DeleteFile(ctx context.Context, projectID, path string) error
	GetFiles(ctx context.Context, projectID string) ([]File, error)
	Close() error
}

// Config selects and configures a Store.
type Config struct {
	// Driver is "sqlite", "disk" or "memory"
	Driver string
	// Path is the SQLite database file
	Path string
	// Root is the DiskStore directory holding one subdirectory per project
	Root string
}

// Open builds the store named by cfg.Driver.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		return NewSQLiteStore(ctx, cfg.Path, logger)
	case "disk":
		return NewDiskStore(cfg.Root, logger)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// key validates a project id and path and returns the cleaned path.
func key(projectID, path string) (string, error) {
	if err := validation.ValidateProjectID(projectID); err != nil {
		return "", err
	}
	return validation.CleanRelativePath(path)
}

type putter interface {
	PutFile(ctx context.Context, file *File) error
}

// Put creates the file or replaces its content.
func Put(ctx context.Context, store Store, file *File) error {
	if p, ok := store.(putter); ok {
		return p.PutFile(ctx, file)
	}

	err := store.UpdateFile(ctx, file.ProjectID, file.Path, FileUpdate{Content: file.Content})
	if errors.Is(err, ErrNotFound) {
		return store.CreateFile(ctx, file)
	}
	return err
}
