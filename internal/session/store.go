// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the list of named project sessions and tracks
// which one is active.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/agentdeck/internal/model"
	"github.com/jeranaias/agentdeck/internal/storage"
)

// StorageKey is the key the session list is persisted under.
const StorageKey = "sessions"

// Sentinel errors.
var (
	// ErrNameRequired is returned when the session name is empty after
	// trimming.
	ErrNameRequired = errors.New("session name is required")

	// ErrPathRequired is returned when the project path is empty after
	// trimming.
	ErrPathRequired = errors.New("project path is required")
)

// Backend creates sessions on the remote agent backend, which assigns the
// session ID.
type Backend interface {
	CreateSession(ctx context.Context, name, path string) (model.Session, error)
}

// =============================================================================
// STORE
// =============================================================================

// Store holds the durable list of named project sessions plus the active
// session reference.
//
// The in-memory list is authoritative: persistence failures are logged and
// swallowed, and corrupt persisted data degrades to an empty list. The
// session list is independent of network state.
//
// Invariant: a non-nil active session always references a session present
// in the list. Deleting the active session clears the reference in the
// same mutex-held update.
type Store struct {
	mu       sync.Mutex
	kv       storage.Store
	backend  Backend
	sessions []model.Session
	activeID string
}

// NewStore creates a store over the given persistence and backend, loading
// any previously persisted session list.
func NewStore(kv storage.Store, backend Backend) *Store {
	s := &Store{kv: kv, backend: backend}
	s.sessions = s.load()
	return s
}

// load reads the persisted session list. Missing key means empty;
// malformed JSON is logged and degrades to empty rather than failing.
func (s *Store) load() []model.Session {
	raw, err := s.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("SESSIONS: failed to read persisted list: %v", err)
		}
		return []model.Session{}
	}

	var sessions []model.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		log.Printf("SESSIONS: corrupt persisted list, starting empty: %v", err)
		return []model.Session{}
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions
}

// save persists the current list. Write failures are logged and swallowed:
// the in-memory list stays authoritative for the rest of the process.
// Caller must hold s.mu.
func (s *Store) save() {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		log.Printf("SESSIONS: failed to marshal list: %v", err)
		return
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		log.Printf("SESSIONS: failed to persist list: %v", err)
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// Sessions returns a copy of the current session list.
func (s *Store) Sessions() []model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Active returns the active session, or nil when none is selected.
func (s *Store) Active() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Store) activeLocked() *model.Session {
	if s.activeID == "" {
		return nil
	}
	for i := range s.sessions {
		if s.sessions[i].ID == s.activeID {
			sess := s.sessions[i]
			return &sess
		}
	}
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create validates the name and path, asks the backend for a new session,
// appends it to the list, and persists. No backend call is made when
// validation fails.
func (s *Store) Create(ctx context.Context, name, path string) (model.Session, error) {
	name = strings.TrimSpace(name)
	path = strings.TrimSpace(path)
	if name == "" {
		return model.Session{}, ErrNameRequired
	}
	if path == "" {
		return model.Session{}, ErrPathRequired
	}

	sess, err := s.backend.CreateSession(ctx, name, path)
	if err != nil {
		return model.Session{}, err
	}

	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.save()
	s.mu.Unlock()

	return sess, nil
}

// SetActive marks the session with the given ID active. Unknown IDs clear
// the selection (the invariant never allows an active reference outside
// the list).
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.activeID = id
			return
		}
	}
	s.activeID = ""
}

// Delete removes the session with the given ID and persists the shrunken
// list. When the removed session was active, the active reference is
// cleared in the same update: no observer can see a list without the
// session while the active reference still points at it.
//
// Returns true when the deleted session was the active one.
func (s *Store) Delete(id string) (wasActive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	removed := false
	for _, sess := range s.sessions {
		if sess.ID == id {
			removed = true
			continue
		}
		kept = append(kept, sess)
	}
	if !removed {
		return false
	}
	s.sessions = kept

	if s.activeID == id {
		s.activeID = ""
		wasActive = true
	}

	s.save()
	return wasActive
}
