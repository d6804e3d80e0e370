// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch observes tool configuration files so the UI can refresh
// installation status when a tool is installed or removed out of band.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of events for the same tool.
const DefaultDebounce = 500 * time.Millisecond

// ConfigWatcher watches the parent directories of tool configuration
// files. The files themselves may not exist yet (tool not installed),
// so watching the directory catches both creation and removal.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	notify   func(tool string)

	mu      sync.Mutex
	paths   map[string]string // config file path -> tool name
	pending map[string]time.Time
	done    chan struct{}
	closed  bool
}

// New creates a ConfigWatcher. notify is called with the tool name
// after a change settles; it runs on the watcher goroutine.
func New(debounce time.Duration, notify func(tool string)) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	cw := &ConfigWatcher{
		watcher:  w,
		debounce: debounce,
		notify:   notify,
		paths:    make(map[string]string),
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}
	return cw, nil
}

// Add registers a tool's configuration file. The file's directory is
// watched; a missing directory is not an error, the tool is simply not
// observed until it exists.
func (cw *ConfigWatcher) Add(tool, configPath string) error {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}

	cw.mu.Lock()
	cw.paths[abs] = tool
	cw.mu.Unlock()

	dir := filepath.Dir(abs)
	if _, err := os.Stat(dir); err != nil {
		return nil
	}
	return cw.watcher.Add(dir)
}

// Start begins delivering notifications.
func (cw *ConfigWatcher) Start() {
	go cw.processEvents()
	go cw.processPending()
}

// Close stops the watcher. Safe to call more than once.
func (cw *ConfigWatcher) Close() error {
	cw.mu.Lock()
	if cw.closed {
		cw.mu.Unlock()
		return nil
	}
	cw.closed = true
	close(cw.done)
	cw.mu.Unlock()
	return cw.watcher.Close()
}

func (cw *ConfigWatcher) processEvents() {
	for {
		select {
		case <-cw.done:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			cw.markChanged(event.Name)

		case _, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			// Errors are non-fatal; the next poll catches up anyway
		}
	}
}

func (cw *ConfigWatcher) markChanged(name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()
	tool, ok := cw.paths[abs]
	if !ok {
		return
	}
	cw.pending[tool] = time.Now()
}

func (cw *ConfigWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cw.done:
			return

		case <-ticker.C:
			now := time.Now()

			cw.mu.Lock()
			var ready []string
			for tool, at := range cw.pending {
				if now.Sub(at) >= cw.debounce {
					ready = append(ready, tool)
					delete(cw.pending, tool)
				}
			}
			cw.mu.Unlock()

			for _, tool := range ready {
				cw.notify(tool)
			}
		}
	}
}
