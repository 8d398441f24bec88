package confloader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/hashguard/internal/telemetry/logger"
)

func startWatcher(t *testing.T, file string) (*Watcher, <-chan string) {
	t.Helper()
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	if err := w.Watch(file); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 10)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)
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

	nop := logger.Nop()
	w2, err := NewWatcher(WithWatcherLogger(nop))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w2.Stop()
	if w2.logger != nop {
		t.Error("WithWatcherLogger() option not applied")
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	time.Sleep(20 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestWatcher_FileChange(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, changed := startWatcher(t, file)

	if err := os.WriteFile(file, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		if path != file {
			t.Errorf("callback path = %q, want %q", path, file)
		}
	case <-time.After(2 * time.Second):
		t.Error("OnChange() callback was not triggered within timeout")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("a: 1"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, changed := startWatcher(t, file)

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("noise"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case path := <-changed:
		t.Errorf("unexpected callback for %q", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_Run(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestWatcher_ConcurrentCallbacks(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	var count int
	var mu sync.Mutex
	w.OnChange(func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.notifyCallbacks("/test/path")
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 100 {
		t.Errorf("count = %d, want 100", count)
	}
}
