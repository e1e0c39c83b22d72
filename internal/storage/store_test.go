package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sqliteStore, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "db", "vedit.db"), nil)
	require.NoError(t, err)
	diskStore, err := NewDiskStore(t.TempDir(), nil)
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
		"disk":   diskStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetFile(ctx, "site", "src/App.tsx")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.CreateFile(ctx, &File{
				ProjectID: "site",
				Path:      "./src//App.tsx",
				Content:   "<div />\n",
			}))
			err = store.CreateFile(ctx, &File{ProjectID: "site", Path: "src/App.tsx", Content: "x"})
			assert.ErrorIs(t, err, ErrExists)

			file, err := store.GetFile(ctx, "site", "src/App.tsx")
			require.NoError(t, err)
			assert.Equal(t, "src/App.tsx", file.Path)
			assert.Equal(t, "<div />\n", file.Content)
			assert.False(t, file.UpdatedAt.IsZero())

			require.NoError(t, store.UpdateFile(ctx, "site", "src/App.tsx", FileUpdate{Content: "<main />\n"}))
			file, err = store.GetFile(ctx, "site", "src/App.tsx")
			require.NoError(t, err)
			assert.Equal(t, "<main />\n", file.Content)

			err = store.UpdateFile(ctx, "site", "src/missing.tsx", FileUpdate{Content: "x"})
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.CreateFile(ctx, &File{ProjectID: "site", Path: "index.html", Content: "<html></html>"}))
			require.NoError(t, store.CreateFile(ctx, &File{ProjectID: "other", Path: "a.tsx", Content: "a"}))

			files, err := store.GetFiles(ctx, "site")
			require.NoError(t, err)
			require.Len(t, files, 2)
			assert.Equal(t, "index.html", files[0].Path)
			assert.Equal(t, "src/App.tsx", files[1].Path)

			require.NoError(t, store.DeleteFile(ctx, "site", "index.html"))
			assert.ErrorIs(t, store.DeleteFile(ctx, "site", "index.html"), ErrNotFound)

			files, err = store.GetFiles(ctx, "empty")
			require.NoError(t, err)
			assert.Empty(t, files)
		})
	}
}

func TestStoreRejectsBadKeys(t *testing.T) {
	ctx := context.Background()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetFile(ctx, "site", "../../etc/passwd")
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotFound)

			err = store.CreateFile(ctx, &File{ProjectID: "../x", Path: "a.tsx"})
			assert.Error(t, err)

			_, err = store.GetFiles(ctx, "")
			assert.Error(t, err)
		})
	}
}

func TestPut(t *testing.T) {
	ctx := context.Background()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Put(ctx, store, &File{ProjectID: "p", Path: "a.tsx", Content: "one"}))
			require.NoError(t, Put(ctx, store, &File{ProjectID: "p", Path: "a.tsx", Content: "two"}))

			file, err := store.GetFile(ctx, "p", "a.tsx")
			require.NoError(t, err)
			assert.Equal(t, "two", file.Content)
		})
	}
}

func TestDiskStoreLayout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewDiskStore(root, nil)
	require.NoError(t, err)

	require.NoError(t, store.CreateFile(ctx, &File{ProjectID: "site", Path: "src/App.tsx", Content: "app"}))

	data, err := os.ReadFile(filepath.Join(root, "site", "src", "App.tsx"))
	require.NoError(t, err)
	assert.Equal(t, "app", string(data))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "site", "node_modules", "react"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "site", "node_modules", "react", "index.js"), []byte("x"), 0o644))

	files, err := store.GetFiles(ctx, "site")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/App.tsx", files[0].Path)

	entries, err := os.ReadDir(filepath.Join(root, "site", "src"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{Driver: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open(ctx, Config{Driver: "disk", Root: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &DiskStore{}, store)

	store, err = Open(ctx, Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, Config{Driver: "postgres"}, nil)
	assert.Error(t, err)
}
