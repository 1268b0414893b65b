// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import "sync"

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemStore is an in-memory Store for tests and ephemeral use.
//
// FailSets and FailGets inject storage failures: tests use them to verify
// that callers swallow write errors and degrade read errors to defaults.
type MemStore struct {
	mu   sync.Mutex
	data map[string]string

	// FailSets makes every Set return this error when non-nil.
	FailSets error
	// FailGets makes every Get return this error when non-nil.
	FailGets error

	// SetCalls counts Set invocations (including failed ones).
	SetCalls int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

// Get returns the stored value for key, or ErrNotFound.
func (s *MemStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGets != nil {
		return "", s.FailGets
	}
	value, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set writes the value for key.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetCalls++
	if s.FailSets != nil {
		return s.FailSets
	}
	s.data[key] = value
	return nil
}

// Delete removes the key.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of stored keys.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
