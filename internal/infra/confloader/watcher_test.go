package confloader

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, opts ...WatcherOption) (*Watcher, chan string) {
	t.Helper()
	w, err := NewWatcher(opts...)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 64)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	return w, changed
}

func TestNewWatcher(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.watcher == nil || w.done == nil || w.logger == nil {
		t.Error("NewWatcher() left fields unset")
	}
	if w.ops != DefaultOps {
		t.Errorf("ops = %v, want %v", w.ops, DefaultOps)
	}
}

func TestNewWatcher_WithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	w, err := NewWatcher(WithWatcherLogger(logger))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/dir/config.yaml"); err == nil {
		t.Error("Watch() should fail for a missing directory")
	}
	if err := w.WatchDir("/nonexistent/dir"); err == nil {
		t.Error("WatchDir() should fail for a missing directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("key: value1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, changed := startWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("key: value2"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		if path != configFile {
			t.Errorf("callback path = %q, want %q", path, configFile)
		}
	case <-time.After(2 * time.Second):
		t.Error("OnChange() callback was not triggered within timeout")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	os.WriteFile(configFile, []byte("a: 1"), 0644)

	w, changed := startWatcher(t)
	if err := w.Watch(configFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	os.WriteFile(filepath.Join(tmpDir, "other.txt"), []byte("x"), 0644)

	select {
	case path := <-changed:
		t.Errorf("unexpected callback for %q", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_WatchDir(t *testing.T) {
	tmpDir := t.TempDir()

	w, changed := startWatcher(t)
	if err := w.WatchDir(tmpDir); err != nil {
		t.Fatalf("WatchDir() error = %v", err)
	}
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	newFile := filepath.Join(tmpDir, "notes")
	if err := os.WriteFile(newFile, []byte("new"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		if path != newFile {
			t.Errorf("callback path = %q, want %q", path, newFile)
		}
	case <-time.After(2 * time.Second):
		t.Error("callback not triggered for a new file in a watched directory")
	}
}

func TestWatcher_Debounce(t *testing.T) {
	w, _ := startWatcher(t, WithDebounce(100*time.Millisecond))

	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })

	for i := 0; i < 5; i++ {
		w.dispatch("/tmp/x")
	}
	time.Sleep(400 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("debounced callback ran %d times, want 1", got)
	}
}

func TestWatcher_ConcurrentCallbacks(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var count atomic.Int32
	w.OnChange(func(string) { count.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.notifyCallbacks("/test/path")
		}()
	}
	wg.Wait()

	if got := count.Load(); got != 100 {
		t.Errorf("count = %d, want 100", got)
	}
}
