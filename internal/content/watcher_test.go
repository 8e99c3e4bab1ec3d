package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, PostsDirName), 0o755))

	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()
	go w.Start()

	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(dir, PostsDirName, "a.md"), "x")
	}

	select {
	case <-w.Reloads():
	case <-time.After(3 * time.Second):
		t.Fatal("no reload signal")
	}

	select {
	case <-w.Reloads():
		t.Fatal("burst produced more than one reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()
	go w.Start()

	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	select {
	case <-w.Reloads():
		t.Fatal("unexpected reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	go w.Start()
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
