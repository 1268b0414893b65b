// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream assembles incremental response chunks into complete chat
// messages.
package stream

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/agentdeck/internal/model"
)

// State is the assembler lifecycle phase.
type State int

const (
	// StateIdle means no response is being assembled.
	StateIdle State = iota

	// StateStreaming means chunks are being accumulated.
	StateStreaming

	// StateFinalizing means the terminal event arrived and the
	// accumulated text is being converted into a message.
	StateFinalizing
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// =============================================================================
// ASSEMBLER
// =============================================================================

// Assembler accumulates streaming response chunks into a single buffer and
// converts it into one assistant message at completion time.
//
// Each response cycle is identified by the generation returned from Begin.
// Chunk, Complete, and Fail calls carrying a stale generation are dropped:
// a new Begin fences off everything still in flight from the previous
// cycle, so an abandoned stream can never corrupt the next response.
//
// The accumulator is a single mutable cell. Its contents are read exactly
// once, at finalization; intermediate reads (live-preview rendering) go
// through Preview.
type Assembler struct {
	mu       sync.Mutex
	state    State
	gen      uint64
	provider model.Provider
	buf      strings.Builder
}

// New creates an idle assembler.
func New() *Assembler {
	return &Assembler{}
}

// State returns the current lifecycle phase.
func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Preview returns the text accumulated so far in the current cycle.
func (a *Assembler) Preview() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.String()
}

// Begin starts a new response cycle for the given provider and returns its
// generation. Any previous cycle still in flight is abandoned: its buffer
// is discarded and its late events will be dropped.
func (a *Assembler) Begin(provider model.Provider) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	a.provider = provider
	a.buf.Reset()
	a.state = StateStreaming
	return a.gen
}

// Chunk appends text to the current cycle's buffer. Chunks from a stale
// generation or outside a streaming cycle are dropped.
func (a *Assembler) Chunk(gen uint64, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen || a.state != StateStreaming {
		return
	}
	a.buf.WriteString(text)
}

// Complete finalizes the current cycle and returns the assembled assistant
// message. The second return is false when no message was produced: the
// generation was stale, the cycle was not streaming, or the accumulated
// text was empty after trimming (a technically-successful-but-empty stream
// must not append a blank message).
func (a *Assembler) Complete(gen uint64) (model.ChatMessage, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen || a.state != StateStreaming {
		return model.ChatMessage{}, false
	}

	a.state = StateFinalizing
	content := a.buf.String()
	a.buf.Reset()
	a.state = StateIdle

	if strings.TrimSpace(content) == "" {
		return model.ChatMessage{}, false
	}

	return model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Provider:  a.provider,
	}, true
}

// Fail aborts the current cycle, discarding any partial content. Partial
// text is never promoted to a message on error. Stale generations are
// dropped.
func (a *Assembler) Fail(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen || a.state != StateStreaming {
		return
	}
	a.buf.Reset()
	a.state = StateIdle
}
