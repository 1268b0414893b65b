// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/agentdeck/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists each key as one file under a base directory.
//
// Writes are atomic (temp file + fsync + rename) so a crash mid-write never
// leaves a corrupt value behind.
type FileStore struct {
	// BaseDir is the directory holding one file per key.
	// Default: ~/.agentdeck/state/
	BaseDir string
}

// NewFileStore creates a file store rooted at the default state directory.
func NewFileStore() (*FileStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewFileStoreWithDir(filepath.Join(homeDir, ".agentdeck", "state"))
}

// NewFileStoreWithDir creates a file store rooted at baseDir.
func NewFileStoreWithDir(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{BaseDir: baseDir}, nil
}

// Get returns the stored value for key, or ErrNotFound.
func (s *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// Set writes the value for key atomically.
func (s *FileStore) Set(key, value string) error {
	return util.AtomicWriteFile(s.filePath(key), []byte(value), 0644)
}

// Delete removes the key's file. A missing file is not an error.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// filePath maps a key to a file name, replacing separators that would
// escape the base directory.
func (s *FileStore) filePath(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.BaseDir, name+".json")
}
