// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher republishes the configuration whenever the file changes on
// disk. Each reload is delivered as a complete Config value; subscribers
// never see partial updates.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	updates chan Config
}

// NewWatcher starts watching the config file's directory (editors replace
// files by rename, which a file-level watch loses track of).
func NewWatcher(path string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}
	return &Watcher{
		path:    path,
		fs:      fs,
		updates: make(chan Config, 1),
	}, nil
}

// Updates returns the channel reloaded configurations arrive on.
func (w *Watcher) Updates() <-chan Config {
	return w.updates
}

// Run processes filesystem events until ctx is cancelled. Reload failures
// are logged and skipped; the last good configuration stays in effect.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				log.Printf("CONFIG: reload skipped: %v", err)
				continue
			}
			// Keep only the newest value when the subscriber lags.
			select {
			case w.updates <- cfg:
			default:
				select {
				case <-w.updates:
				default:
				}
				w.updates <- cfg
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("CONFIG: watch error: %v", err)
		}
	}
}
