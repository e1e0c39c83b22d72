package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/vedit/internal/validation"
)

// MemoryStore keeps files in a map. It is used by tests and by the server
// when no persistence is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]map[string]File
	now   func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: make(map[string]map[string]File),
		now:   time.Now,
	}
}

// GetFile implements Store.
func (s *MemoryStore) GetFile(_ context.Context, projectID, path string) (*File, error) {
	path, err := key(projectID, path)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[projectID][path]
	if !ok {
		return nil, ErrNotFound
	}
	return &file, nil
}

// CreateFile implements Store.
func (s *MemoryStore) CreateFile(_ context.Context, file *File) error {
	path, err := key(file.ProjectID, file.Path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project := s.files[file.ProjectID]
	if project == nil {
		project = make(map[string]File)
		s.files[file.ProjectID] = project
	}
	if _, ok := project[path]; ok {
		return ErrExists
	}

	stored := *file
	stored.Path = path
	stored.UpdatedAt = s.now()
	project[path] = stored
	return nil
}

// UpdateFile implements Store.
func (s *MemoryStore) UpdateFile(_ context.Context, projectID, path string, update FileUpdate) error {
	path, err := key(projectID, path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[projectID][path]
	if !ok {
		return ErrNotFound
	}
	file.Content = update.Content
	file.UpdatedAt = s.now()
	s.files[projectID][path] = file
	return nil
}

// DeleteFile implements Store.
func (s *MemoryStore) DeleteFile(_ context.Context, projectID, path string) error {
	path, err := key(projectID, path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[projectID][path]; !ok {
		return ErrNotFound
	}
	delete(s.files[projectID], path)
	return nil
}

// GetFiles implements Store. Files are sorted by path.
func (s *MemoryStore) GetFiles(_ context.Context, projectID string) ([]File, error) {
	if err := validation.ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]File, 0, len(s.files[projectID]))
	for _, file := range s.files[projectID] {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
