package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "holonet.toml", `log_level = "info"`)

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// unrelated files in the directory are ignored
	writeFile(t, dir, "other.toml", `log_level = "error"`)
	if err := os.WriteFile(path, []byte(`log_level = "debug"`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the file")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_Closed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holonet.toml")
	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Run(context.Background()); err != ErrWatcherClosed {
		t.Errorf("err = %v, want ErrWatcherClosed", err)
	}
	if w.Path() != path {
		t.Errorf("Path = %q", w.Path())
	}
}
