package watcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecritic/internal/config"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	d := newDebouncer(20*time.Millisecond, nil)
	defer d.stop()

	var mu sync.Mutex
	var batches [][]string
	handler := func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, files)
		return nil
	}

	now := time.Now()
	d.add(FileChangeEvent{Path: "a.py", Operation: "WRITE", Timestamp: now}, handler)
	d.add(FileChangeEvent{Path: "a.py", Operation: "WRITE", Timestamp: now}, handler)
	d.add(FileChangeEvent{Path: "b.py", Operation: "CREATE", Timestamp: now}, handler)

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1)
	assert.ElementsMatch(t, []string{"a.py", "b.py"}, batches[0])
}

func TestDebouncerResetsOnNewEvents(t *testing.T) {
	d := newDebouncer(40*time.Millisecond, nil)
	defer d.stop()

	var mu sync.Mutex
	calls := 0
	handler := func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return nil
	}

	d.add(FileChangeEvent{Path: "a.py"}, handler)
	time.Sleep(20 * time.Millisecond)
	d.add(FileChangeEvent{Path: "b.py"}, handler) // resets the timer

	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 0, calls, "flush fired before the debounce window closed")
	mu.Unlock()

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestFileWatcherFiltering(t *testing.T) {
	cfg := config.DefaultConfig()
	fw, err := NewFileWatcher(cfg, nil)
	require.NoError(t, err)
	defer fw.Close()

	t.Run("configured extensions are analyzable", func(t *testing.T) {
		assert.True(t, fw.isAnalyzableFile("src/api.py"))
		assert.True(t, fw.isAnalyzableFile("src/main.go"))
		assert.True(t, fw.isAnalyzableFile("web/app.tsx"))
		assert.False(t, fw.isAnalyzableFile("README.md"))
		assert.False(t, fw.isAnalyzableFile("image.png"))
	})

	t.Run("test files follow the include_tests toggle", func(t *testing.T) {
		assert.False(t, fw.isAnalyzableFile("pkg/server_test.go"))
		assert.False(t, fw.isAnalyzableFile("tests/test_api.py"))
		assert.False(t, fw.isAnalyzableFile("web/app.spec.ts"))

		cfg.Files.IncludeTests = true
		assert.True(t, fw.isAnalyzableFile("pkg/server_test.go"))
		cfg.Files.IncludeTests = false
	})

	t.Run("editor noise is skipped", func(t *testing.T) {
		assert.True(t, fw.shouldSkipFile("src/.api.py.swp"))
		assert.True(t, fw.shouldSkipFile("src/api.py~"))
		assert.True(t, fw.shouldSkipFile("src/.hidden.py"))
		assert.False(t, fw.shouldSkipFile("src/api.py"))
	})

	t.Run("dependency directories are skipped", func(t *testing.T) {
		assert.True(t, fw.shouldSkipDir("project/node_modules"))
		assert.True(t, fw.shouldSkipDir("project/vendor"))
		assert.True(t, fw.shouldSkipDir("project/.git"))
		assert.False(t, fw.shouldSkipDir("project/internal"))
	})
}

func TestFileWatcherWatchesDirectories(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher(config.DefaultConfig(), nil)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, fw.Watch([]string{dir}, func([]string) error { return nil }))
	assert.Contains(t, fw.GetWatchedPaths(), dir)
}
