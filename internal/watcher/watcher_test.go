package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	fw, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	require.NotNil(t, fw)
	defer fw.Stop()

	assert.NotNil(t, fw.watcher)
	assert.NotNil(t, fw.debouncer)
	assert.NotNil(t, fw.logger)
	assert.Equal(t, 100*time.Millisecond, fw.debouncer.delay)
	assert.Empty(t, fw.filters)
	assert.Empty(t, fw.handlers)
}

func TestFilters(t *testing.T) {
	tests := []struct {
		path      string
		jsx       bool
		noModules bool
		noGit     bool
	}{
		{"src/App.tsx", true, true, true},
		{"src/Button.JSX", true, true, true},
		{"src/index.ts", true, true, true},
		{"public/index.html", true, true, true},
		{"src/styles.css", false, true, true},
		{"node_modules/react/index.js", true, false, true},
		{"src/node_modules_backup/a.tsx", true, true, true},
		{".git/HEAD", false, true, false},
		{"README.md", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.jsx, JSXFilter(tt.path))
			assert.Equal(t, tt.noModules, NoNodeModulesFilter(tt.path))
			assert.Equal(t, tt.noGit, NoGitFilter(tt.path))
		})
	}
}

func TestAddPath(t *testing.T) {
	fw, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	t.Run("valid directory", func(t *testing.T) {
		assert.NoError(t, fw.AddPath(t.TempDir()))
	})

	t.Run("traversal rejected", func(t *testing.T) {
		err := fw.AddPath("../../outside")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid path")
	})

	t.Run("restricted path rejected", func(t *testing.T) {
		assert.Error(t, fw.AddPath("/etc/passwd"))
	})
}

func TestAddRecursiveSkipsVendorDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src/components", "node_modules/react", ".git/objects"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}

	fw, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	require.NoError(t, fw.AddRecursive(root))

	watched := fw.watcher.WatchList()
	assert.Contains(t, watched, root)
	assert.Contains(t, watched, filepath.Join(root, "src"))
	assert.Contains(t, watched, filepath.Join(root, "src", "components"))
	assert.NotContains(t, watched, filepath.Join(root, "node_modules"))
	assert.NotContains(t, watched, filepath.Join(root, "node_modules", "react"))
	assert.NotContains(t, watched, filepath.Join(root, ".git"))
}

func TestDebouncerCollapsesByPath(t *testing.T) {
	d := newDebouncer(time.Hour)

	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "b.tsx"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.tsx"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.tsx"})
	d.timer.Stop()
	d.flush()

	select {
	case events := <-d.output:
		require.Len(t, events, 2)
		assert.Equal(t, "a.tsx", events[0].Path)
		assert.Equal(t, "b.tsx", events[1].Path)
		assert.Equal(t, EventTypeModified, events[1].Type)
	default:
		t.Fatal("expected a flushed batch")
	}

	d.flush()
	assert.Empty(t, d.output)
}

func TestFileWatcherDeliversChanges(t *testing.T) {
	root := t.TempDir()

	fw, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(JSXFilter)
	fw.AddFilter(NoNodeModulesFilter)

	var mu sync.Mutex
	var got []ChangeEvent
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, events...)
		return nil
	})

	require.NoError(t, fw.AddRecursive(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	target := filepath.Join(root, "App.tsx")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("export default () => <div/>"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, event := range got {
			if event.Path == target {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, event := range got {
		assert.Equal(t, target, event.Path)
	}
}
