// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package probe performs provider liveness checks and tracks their results.
package probe

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/agentdeck/internal/model"
)

// =============================================================================
// STATUS BOARD
// =============================================================================

// Board holds the shared per-provider connection status read by the agent
// manager dialog, the model registry, and the provider router.
//
// Status is transient: it is recomputed by probes and never persisted.
type Board struct {
	mu     sync.RWMutex
	status map[model.Provider]model.ConnectionStatus
}

// NewBoard creates a board with every provider initially offline
// (no probe has run yet).
func NewBoard() *Board {
	return &Board{status: make(map[model.Provider]model.ConnectionStatus)}
}

// Get returns the current status for the provider.
func (b *Board) Get(p model.Provider) model.ConnectionStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	status, ok := b.status[p]
	if !ok {
		return model.StatusOffline
	}
	return status
}

// set records a status transition. Last write wins: concurrent probes for
// the same provider are not fenced (a slow earlier probe can overwrite a
// faster later one — known, matches the manual-retry recovery model).
func (b *Board) set(p model.Provider, s model.ConnectionStatus) {
	b.mu.Lock()
	b.status[p] = s
	b.mu.Unlock()
}

// =============================================================================
// PROBER
// =============================================================================

// DefaultProbeTimeout bounds a single liveness call so a hung endpoint
// resolves to offline instead of leaving the status checking forever.
const DefaultProbeTimeout = 5 * time.Second

// CheckFunc performs one provider-appropriate liveness call.
// For the model server that is "list models"; for Bradie it is /health.
type CheckFunc func(ctx context.Context) error

// Prober runs liveness checks and publishes results to a Board.
type Prober struct {
	board *Board

	mu      sync.RWMutex
	checks  map[model.Provider]CheckFunc
	timeout time.Duration
}

// NewProber creates a prober publishing to board. Register one CheckFunc
// per provider with Register before probing it.
func NewProber(board *Board) *Prober {
	return &Prober{
		board:   board,
		checks:  make(map[model.Provider]CheckFunc),
		timeout: DefaultProbeTimeout,
	}
}

// Register installs the liveness call for a provider, replacing any
// previous one (endpoint changes re-register).
func (p *Prober) Register(provider model.Provider, check CheckFunc) {
	p.mu.Lock()
	p.checks[provider] = check
	p.mu.Unlock()
}

// SetTimeout overrides the per-probe timeout.
func (p *Prober) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.timeout = d
	p.mu.Unlock()
}

// Probe runs exactly one liveness call for the provider and returns true
// when it is online. The board is set to checking synchronously before the
// call starts and to the resolved value on completion.
//
// No internal retries: retry policy belongs to the caller (the manual
// "Test" button). Probes for different providers run independently;
// overlapping probes for the same provider race with last-write-wins.
func (p *Prober) Probe(ctx context.Context, provider model.Provider) bool {
	p.mu.RLock()
	check, ok := p.checks[provider]
	timeout := p.timeout
	p.mu.RUnlock()
	if !ok {
		p.board.set(provider, model.StatusOffline)
		return false
	}

	p.board.set(provider, model.StatusChecking)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := check(ctx); err != nil {
		log.Printf("PROBE: %s offline: %v", provider, err)
		p.board.set(provider, model.StatusOffline)
		return false
	}

	p.board.set(provider, model.StatusOnline)
	return true
}

// Board returns the board this prober publishes to.
func (p *Prober) Board() *Board {
	return p.board
}
