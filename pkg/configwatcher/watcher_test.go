package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"care_training_backend/internal/config"

	"github.com/stretchr/testify/require"
)

const baseConfig = `
jwt:
  secret: dev
storage:
  local_path: %s
training:
  unlock_policy: %s
`

func writeConfig(t *testing.T, path, uploads, policy string) {
	t.Helper()
	body := []byte(fmt.Sprintf(baseConfig, uploads, policy))
	require.NoError(t, os.WriteFile(path, body, 0644))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	file := filepath.Join(dir, "config.yaml")
	writeConfig(t, file, uploads, "sequential")

	w := New(file)
	w.debounce = 50 * time.Millisecond

	got := make(chan string, 4)
	w.OnReload(func(cfg *config.Config) { got <- cfg.Training.UnlockPolicy })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// 等待 watcher 注册完成
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, file, uploads, "open")

	select {
	case policy := <-got:
		require.Equal(t, "open", policy)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback not called")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherSkipsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	file := filepath.Join(dir, "config.yaml")
	writeConfig(t, file, uploads, "sequential")

	w := New(file)
	w.debounce = 50 * time.Millisecond
	called := make(chan struct{}, 1)
	w.OnReload(func(*config.Config) { called <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	writeConfig(t, file, uploads, "shuffle")

	select {
	case <-called:
		t.Fatal("callback must not run for an invalid config")
	case <-time.After(500 * time.Millisecond):
	}
}
