package policy

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates a Store's cache when a candidate policy file is
// created, modified or removed, so an edited policy takes effect without
// a host restart.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher

	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher starts watching the directories that contain the store's
// cascade candidates. Call Close to release the underlying watcher.
func NewWatcher(store *Store) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create policy watcher: %w", err)
	}

	watched := make(map[string]bool)
	for _, candidate := range store.Candidates() {
		dir := filepath.Dir(candidate)
		if watched[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			// A missing override directory is normal; the candidate
			// simply cascades until the directory appears.
			slog.Debug("policy watch skipped", "dir", dir, "error", err)
			continue
		}
		watched[dir] = true
	}

	w := &Watcher{
		store:   store,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	candidates := make(map[string]bool)
	for _, c := range w.store.Candidates() {
		if abs, err := filepath.Abs(c); err == nil {
			candidates[abs] = true
		}
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !candidates[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Info("policy file changed, invalidating cache", "path", abs, "op", event.Op.String())
				w.store.ResetCache()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("policy watch error", "error", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
