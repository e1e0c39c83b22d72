package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/validation"
	"github.com/gofrs/flock"
)

const (
	defaultDirMode  = 0o755
	defaultFileMode = 0o644
	lockFileName    = ".vedit.lock"
	lockRetryDelay  = 50 * time.Millisecond
	lockTimeout     = 5 * time.Second
)

// skippedDirs are never listed by GetFiles.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// DiskStore maps project files to root/projectID/path on the filesystem.
// Writes are serialized across processes with a lock file in the project
// directory and land atomically via a temp file and rename.
type DiskStore struct {
	root   string
	logger logging.Logger
}

// NewDiskStore creates a store rooted at root, creating it if needed.
func NewDiskStore(root string, logger logging.Logger) (*DiskStore, error) {
	if root == "" {
		return nil, fmt.Errorf("disk store root is required")
	}
	if err := validation.ValidatePath(root); err != nil {
		return nil, fmt.Errorf("invalid disk store root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, defaultDirMode); err != nil {
		return nil, fmt.Errorf("failed to create root: %w", err)
	}

	if logger == nil {
		logger = logging.Nop()
	}
	return &DiskStore{root: abs, logger: logger.WithComponent("storage")}, nil
}

// Root returns the absolute root directory.
func (s *DiskStore) Root() string {
	return s.root
}

// ProjectDir returns the directory holding a project's files.
func (s *DiskStore) ProjectDir(projectID string) (string, error) {
	if err := validation.ValidateProjectID(projectID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, projectID), nil
}

func (s *DiskStore) resolve(projectID, path string) (string, string, error) {
	clean, err := key(projectID, path)
	if err != nil {
		return "", "", err
	}
	dir := filepath.Join(s.root, projectID)
	return dir, filepath.Join(dir, filepath.FromSlash(clean)), nil
}

// GetFile implements Store.
func (s *DiskStore) GetFile(_ context.Context, projectID, path string) (*File, error) {
	_, full, err := s.resolve(projectID, path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	clean, _ := validation.CleanRelativePath(path)
	return &File{
		ProjectID: projectID,
		Path:      clean,
		Content:   string(data),
		UpdatedAt: info.ModTime(),
	}, nil
}

// CreateFile implements Store.
func (s *DiskStore) CreateFile(ctx context.Context, file *File) error {
	dir, full, err := s.resolve(file.ProjectID, file.Path)
	if err != nil {
		return err
	}

	return s.withLock(ctx, dir, func() error {
		if _, err := os.Stat(full); err == nil {
			return ErrExists
		}
		return atomicWriteFile(full, []byte(file.Content))
	})
}

// UpdateFile implements Store.
func (s *DiskStore) UpdateFile(ctx context.Context, projectID, path string, update FileUpdate) error {
	dir, full, err := s.resolve(projectID, path)
	if err != nil {
		return err
	}

	return s.withLock(ctx, dir, func() error {
		if _, err := os.Stat(full); errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return atomicWriteFile(full, []byte(update.Content))
	})
}

// DeleteFile implements Store.
func (s *DiskStore) DeleteFile(ctx context.Context, projectID, path string) error {
	dir, full, err := s.resolve(projectID, path)
	if err != nil {
		return err
	}

	return s.withLock(ctx, dir, func() error {
		err := os.Remove(full)
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	})
}

// GetFiles implements Store. Files are sorted by path; node_modules, .git
// and the lock file are skipped.
func (s *DiskStore) GetFiles(ctx context.Context, projectID string) ([]File, error) {
	dir, err := s.ProjectDir(projectID)
	if err != nil {
		return nil, err
	}

	files := []File{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if p != dir && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == lockFileName || strings.HasPrefix(d.Name(), ".tmp-vedit-") {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		file, err := s.GetFile(ctx, projectID, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		files = append(files, *file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Close implements Store.
func (s *DiskStore) Close() error {
	return nil
}

// withLock runs fn while holding the project's lock file.
func (s *DiskStore) withLock(ctx context.Context, dir string, fn func() error) error {
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	fileLock := flock.New(filepath.Join(dir, lockFileName))

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock within %v", lockTimeout)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn(ctx, err, "Failed to release lock", "dir", dir)
		}
	}()

	return fn()
}

// atomicWriteFile writes data next to path and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-vedit-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tempFile = nil

	if err := os.Chmod(tempPath, defaultFileMode); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
