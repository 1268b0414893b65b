// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the conversation state of the chat panel: the
// transcript, the draft input, and the send lifecycle.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/agentdeck/internal/model"
	"github.com/jeranaias/agentdeck/internal/router"
	"github.com/jeranaias/agentdeck/internal/storage"
	"github.com/jeranaias/agentdeck/internal/stream"
)

// StorageKey is the key the transcript is persisted under.
const StorageKey = "chat_history"

// Sender dispatches a prompt to the configured provider. Satisfied by
// router.Router.
type Sender interface {
	Send(ctx context.Context, prompt string, h router.Handlers) uint64
	Config() model.AgentConfig
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the stateful core behind the chat panel. It appends the user
// message optimistically, streams the response through an assembler, and
// persists the transcript after every change.
//
// Persistence failures are logged and swallowed; the in-memory transcript
// stays authoritative for the life of the process.
type Session struct {
	mu        sync.Mutex
	sender    Sender
	kv        storage.Store
	assembler *stream.Assembler

	messages []model.ChatMessage
	input    string
	loading  bool
	lastErr  error
}

// NewSession creates a chat session over the given sender and persistence,
// loading any previously persisted transcript.
func NewSession(sender Sender, kv storage.Store) *Session {
	s := &Session{
		sender:    sender,
		kv:        kv,
		assembler: stream.New(),
	}
	s.messages = s.load()
	return s
}

// load reads the persisted transcript. Missing key means empty; malformed
// JSON is logged and degrades to an empty transcript.
func (s *Session) load() []model.ChatMessage {
	raw, err := s.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("CHAT: failed to read persisted transcript: %v", err)
		}
		return nil
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		log.Printf("CHAT: corrupt persisted transcript, starting empty: %v", err)
		return nil
	}
	return messages
}

// persist writes the transcript. Failures are logged and swallowed.
// Caller must hold s.mu.
func (s *Session) persist() {
	data, err := json.Marshal(s.messages)
	if err != nil {
		log.Printf("CHAT: failed to marshal transcript: %v", err)
		return
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		log.Printf("CHAT: failed to persist transcript: %v", err)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a copy of the transcript.
func (s *Session) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Input returns the current draft text.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetInput replaces the draft text.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

// Loading reports whether a send is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error of the most recent failed send, cleared on the
// next successful submit.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Streaming returns the partial response text accumulated so far, for
// live-preview rendering.
func (s *Session) Streaming() string {
	return s.assembler.Preview()
}

// =============================================================================
// SEND
// =============================================================================

// HandleSend submits the current draft. A blank draft (after trimming) or
// a send already in flight makes it a silent no-op. Otherwise the user
// message is appended immediately, the draft is cleared, and the response
// streams in on a background goroutine.
func (s *Session) HandleSend(ctx context.Context) {
	s.mu.Lock()
	text := strings.TrimSpace(s.input)
	if text == "" || s.loading {
		s.mu.Unlock()
		return
	}

	s.input = ""
	s.loading = true
	s.lastErr = nil
	s.messages = append(s.messages, model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
		Provider:  s.sender.Config().Provider,
	})
	s.persist()
	s.mu.Unlock()

	gen := s.assembler.Begin(s.sender.Config().Provider)
	s.sender.Send(ctx, text, router.Handlers{
		OnChunk: func(chunk string) {
			s.assembler.Chunk(gen, chunk)
		},
		OnComplete: func() {
			s.finish(gen, nil)
		},
		OnError: func(err error) {
			s.finish(gen, err)
		},
	})
}

// finish handles the terminal event of a send: on success the assembled
// message (if any) joins the transcript; on error partial content is
// discarded and the error is surfaced. Either way loading clears.
func (s *Session) finish(gen uint64, sendErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sendErr != nil {
		s.assembler.Fail(gen)
		s.lastErr = sendErr
		s.loading = false
		return
	}

	if msg, ok := s.assembler.Complete(gen); ok {
		s.messages = append(s.messages, msg)
		s.persist()
	}
	s.loading = false
}

// =============================================================================
// CLEAR
// =============================================================================

// ClearHistory empties the transcript and removes the persisted record.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	if err := s.kv.Delete(StorageKey); err != nil {
		log.Printf("CHAT: failed to delete persisted transcript: %v", err)
	}
}
