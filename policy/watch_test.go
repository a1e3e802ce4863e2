package policy

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_InvalidatesCacheOnPolicyEdit(t *testing.T) {
	projectDir := t.TempDir()
	path := writeProjectPolicy(t, projectDir, "version: one\n")
	store := NewStore(projectDir, "")

	doc, err := store.Load(true)
	require.NoError(t, err)
	require.Equal(t, "one", doc.Version)

	watcher, err := NewWatcher(store)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(path, []byte("version: two\n"), 0o644))

	assert.Eventually(t, func() bool {
		doc, err := store.Load(true)
		return err == nil && doc.Version == "two"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir(), "")
	watcher, err := NewWatcher(store)
	require.NoError(t, err)

	require.NoError(t, watcher.Close())
	assert.NoError(t, watcher.Close())
}
