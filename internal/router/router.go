// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router dispatches chat sends to the configured provider behind a
// single streaming-shaped interface.
package router

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/agentdeck/internal/model"
)

// DefaultSendTimeout bounds a single send, covering the full stream for
// the model server and the blocking round trip for the agent backend. A
// hung provider resolves to an error instead of a spinner that never
// clears.
const DefaultSendTimeout = 2 * time.Minute

// Sentinel errors.
var (
	// ErrSessionRequired is returned when a send targets the agent
	// backend with no active session. Hard precondition, checked before
	// any network activity.
	ErrSessionRequired = errors.New("an active session is required")

	// ErrUnknownProvider is returned when the configured provider has no
	// dispatch path.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Generator streams completions from the local model server.
type Generator interface {
	GenerateStream(ctx context.Context, modelName, prompt string, onChunk func(string)) error
}

// AgentBackend performs the session-scoped blocking exchange with the
// remote agent backend.
type AgentBackend interface {
	SendMessageAndWait(ctx context.Context, sessionID, text string) (string, error)
}

// Handlers receives the events of one send. Zero or more OnChunk calls are
// followed by exactly one of OnComplete or OnError. Nil handlers are
// skipped.
type Handlers struct {
	OnChunk    func(text string)
	OnComplete func()
	OnError    func(err error)
}

// =============================================================================
// ROUTER
// =============================================================================

// Router sends prompts to whichever provider the current configuration
// names. The configuration is replaced as a whole value and snapshotted at
// the start of each send, so a provider switch takes effect on the next
// send and never reroutes one already in flight.
//
// Sends are fenced by generation: starting a new send supersedes the
// previous one, whose late events are dropped. The superseded provider
// call itself is cancelled through its context.
type Router struct {
	generator Generator
	backend   AgentBackend

	mu  sync.Mutex
	cfg model.AgentConfig

	gen     atomic.Uint64
	timeout time.Duration
}

// New creates a router over the two provider clients with the given
// starting configuration.
func New(generator Generator, backend AgentBackend, cfg model.AgentConfig) *Router {
	return &Router{
		generator: generator,
		backend:   backend,
		cfg:       cfg,
		timeout:   DefaultSendTimeout,
	}
}

// Config returns the current configuration value.
func (r *Router) Config() model.AgentConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// SetConfig replaces the configuration as a whole value. In-flight sends
// keep the snapshot they started with.
func (r *Router) SetConfig(cfg model.AgentConfig) {
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
}

// SetTimeout overrides the per-send timeout.
func (r *Router) SetTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// =============================================================================
// SEND
// =============================================================================

// Send dispatches prompt to the configured provider and returns the send's
// generation. The work runs on its own goroutine; events arrive through h.
// Starting a new send supersedes any earlier one still in flight.
func (r *Router) Send(ctx context.Context, prompt string, h Handlers) uint64 {
	gen := r.gen.Add(1)
	cfg := r.Config()

	go r.dispatch(ctx, gen, cfg, prompt, r.fenced(gen, h))
	return gen
}

// fenced wraps h so events from a superseded send are dropped.
func (r *Router) fenced(gen uint64, h Handlers) Handlers {
	live := func() bool { return r.gen.Load() == gen }
	return Handlers{
		OnChunk: func(text string) {
			if live() && h.OnChunk != nil {
				h.OnChunk(text)
			}
		},
		OnComplete: func() {
			if live() && h.OnComplete != nil {
				h.OnComplete()
			}
		},
		OnError: func(err error) {
			if live() && h.OnError != nil {
				h.OnError(err)
			}
		},
	}
}

func (r *Router) dispatch(ctx context.Context, gen uint64, cfg model.AgentConfig, prompt string, h Handlers) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var err error
	switch cfg.Provider {
	case model.ProviderOllama:
		err = r.generator.GenerateStream(ctx, cfg.Model, prompt, h.OnChunk)
	case model.ProviderBradie:
		err = r.sendToAgent(ctx, cfg, prompt, h)
	default:
		err = ErrUnknownProvider
	}

	if err != nil {
		log.Printf("ROUTER: send %d via %s failed: %v", gen, cfg.Provider, err)
		h.OnError(err)
		return
	}
	h.OnComplete()
}

// sendToAgent performs the blocking exchange with the agent backend and
// adapts the reply to the streaming shape as a single chunk.
func (r *Router) sendToAgent(ctx context.Context, cfg model.AgentConfig, prompt string, h Handlers) error {
	if cfg.Session == nil {
		return ErrSessionRequired
	}
	reply, err := r.backend.SendMessageAndWait(ctx, cfg.Session.ID, prompt)
	if err != nil {
		return err
	}
	h.OnChunk(reply)
	return nil
}
