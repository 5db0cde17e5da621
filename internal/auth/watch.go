// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce collapses the burst of events an atomic write produces.
const watchDebounce = 150 * time.Millisecond

// Change reports the session file's state after it changed on disk.
type Change struct {
	SignedIn bool
	Email    string
}

// Watcher follows the session file so that a login or logout in another
// process reaches a running TUI.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	changes chan Change
	done    chan struct{}
	once    sync.Once
}

// Invalidate drops the cached session so the next read goes to disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Watch starts watching the store's session file. The parent directory is
// watched because atomic writes replace the file rather than modify it.
func (s *Store) Watch(logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{
		store:   s,
		watcher: fw,
		logger:  logger,
		changes: make(chan Change, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes delivers one value per settled burst of changes.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.changes)
	name := filepath.Base(w.store.path)
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			fire = time.After(watchDebounce)

		case <-fire:
			fire = nil
			w.store.Invalidate()
			c := Change{}
			if sess, err := w.store.Load(); err == nil {
				c.SignedIn = true
				c.Email = sess.Email
			}
			w.logger.Debug("session file changed", zap.Bool("signed_in", c.SignedIn))
			// Keep only the latest state.
			select {
			case <-w.changes:
			default:
			}
			select {
			case w.changes <- c:
			case <-w.done:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("session watcher error", zap.Error(err))
		}
	}
}
