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

// Test Plan for FileWatcher:
// - NewFileWatcher succeeds on a directory and fails on a missing one
// - A single .java change fires the callback after debounce
// - Rapid changes are coalesced into one sorted, deduplicated batch
// - Pause accumulates changes and Resume flushes them
// - Created and deleted files are reported
// - New subdirectories are watched
// - Files rejected by the filter never fire
// - Stop is idempotent and safe to call concurrently

const testDebounce = 100 * time.Millisecond

// startWatcher starts a watcher on dir and returns the channel of batches.
func startWatcher(t *testing.T, dir string, filter Filter) (FileWatcher, <-chan []string) {
	t.Helper()

	fw, err := NewFileWatcher([]string{dir}, filter, WithDebounce(testDebounce))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Stop() })

	batches := make(chan []string, 10)
	require.NoError(t, fw.Start(context.Background(), func(files []string) {
		batches <- files
	}))

	// Let fsnotify settle.
	time.Sleep(50 * time.Millisecond)
	return fw, batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case files := <-batches:
		return files
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not called")
		return nil
	}
}

func writeJava(t *testing.T, path, class string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("class "+class+" {}\n"), 0644))
}

func TestNewFileWatcher(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	fw, err := NewFileWatcher([]string{tempDir}, nil)
	require.NoError(t, err)
	require.NotNil(t, fw)
	require.NoError(t, fw.Stop())

	fw, err = NewFileWatcher([]string{filepath.Join(tempDir, "missing")}, nil)
	assert.Error(t, err)
	assert.Nil(t, fw)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "A.java")
	writeJava(t, file, "A")

	_, batches := startWatcher(t, tempDir, nil)
	writeJava(t, file, "A2")

	assert.Equal(t, []string{file}, waitBatch(t, batches))
}

func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	a := filepath.Join(tempDir, "A.java")
	b := filepath.Join(tempDir, "B.java")

	_, batches := startWatcher(t, tempDir, nil)
	for i := 0; i < 3; i++ {
		writeJava(t, b, "B")
		writeJava(t, a, "A")
		time.Sleep(20 * time.Millisecond)
	}

	assert.Equal(t, []string{a, b}, waitBatch(t, batches))

	select {
	case extra := <-batches:
		t.Fatalf("unexpected second batch: %v", extra)
	case <-time.After(3 * testDebounce):
	}
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "Paused.java")

	fw, batches := startWatcher(t, tempDir, nil)
	fw.Pause()
	writeJava(t, file, "Paused")

	select {
	case files := <-batches:
		t.Fatalf("callback fired while paused: %v", files)
	case <-time.After(3 * testDebounce):
	}

	fw.Resume()
	assert.Equal(t, []string{file}, waitBatch(t, batches))
}

func TestFileWatcher_FileDeleted(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "Gone.java")
	writeJava(t, file, "Gone")

	_, batches := startWatcher(t, tempDir, nil)
	require.NoError(t, os.Remove(file))

	assert.Equal(t, []string{file}, waitBatch(t, batches))
}

func TestFileWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	_, batches := startWatcher(t, tempDir, nil)

	sub := filepath.Join(tempDir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watch loop time to register the new directory.
	time.Sleep(testDebounce)

	file := filepath.Join(sub, "Nested.java")
	writeJava(t, file, "Nested")
	assert.Contains(t, waitBatch(t, batches), file)
}

func TestFileWatcher_Filtering(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	only := func(path string) bool { return filepath.Base(path) == "Keep.java" }
	_, batches := startWatcher(t, tempDir, only)

	writeJava(t, filepath.Join(tempDir, "Skip.java"), "Skip")
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0644))
	writeJava(t, filepath.Join(tempDir, "Keep.java"), "Keep")

	assert.Equal(t, []string{filepath.Join(tempDir, "Keep.java")}, waitBatch(t, batches))
}

func TestFileWatcher_SkipsDigests(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	_, batches := startWatcher(t, tempDir, nil)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "A.java.digest.json"), []byte("{}"), 0644))

	select {
	case files := <-batches:
		t.Fatalf("digest write fired callback: %v", files)
	case <-time.After(3 * testDebounce):
	}
}

func TestFileWatcher_ConcurrentStop(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start(context.Background(), func([]string) {}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = fw.Stop()
		}()
	}
	wg.Wait()
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	fw, err := NewFileWatcher([]string{tempDir}, nil, WithDebounce(testDebounce))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{}, 1)
	require.NoError(t, fw.Start(ctx, func([]string) { called <- struct{}{} }))
	cancel()

	impl := fw.(*fileWatcher)
	select {
	case <-impl.doneCh:
	case <-time.After(time.Second):
		t.Fatal("watch loop did not exit")
	}

	writeJava(t, filepath.Join(tempDir, "Late.java"), "Late")
	select {
	case <-called:
		t.Fatal("callback fired after cancellation")
	case <-time.After(3 * testDebounce):
	}
	require.NoError(t, fw.Stop())
}
