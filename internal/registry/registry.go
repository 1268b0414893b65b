// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry manages the model list of the local model-serving
// provider: list, pull, and delete with the guards the dialog relies on.
package registry

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/agentdeck/internal/model"
	"github.com/jeranaias/agentdeck/internal/ollama"
	"github.com/jeranaias/agentdeck/internal/probe"
)

// Sentinel errors.
var (
	// ErrEmptyName is returned when a model name is empty after trimming.
	ErrEmptyName = errors.New("model name is required")

	// ErrBusy is returned when a pull or delete is already in flight.
	// Only one mutating operation runs at a time per registry.
	ErrBusy = errors.New("another model operation is in progress")

	// ErrDeclined is returned when the user declines the delete
	// confirmation; no network call was made.
	ErrDeclined = errors.New("delete cancelled")
)

// Client is the subset of the model-serving API the registry needs.
type Client interface {
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
	PullModel(ctx context.Context, name string, progress func(ollama.PullProgress)) error
	DeleteModel(ctx context.Context, name string) error
}

// Confirmer is the yes/no gate consulted immediately before destructive
// operations. The dashboard shell supplies the real prompt.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(message string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(message string) bool { return f(message) }

// =============================================================================
// REGISTRY
// =============================================================================

// Registry lists, pulls, and deletes models for the model-serving
// provider. Mutating operations are mutually exclusive: a second pull or
// delete while one is in flight returns ErrBusy (the UI disables the
// controls off the IsPulling/IsDeleting flags, the registry enforces it).
//
// The registry does not know about "selected model": if the deleted model
// was selected, clearing the selection is the caller's job.
type Registry struct {
	client   Client
	board    *probe.Board
	provider model.Provider

	mu         sync.Mutex
	isPulling  bool
	isDeleting bool
}

// New creates a registry over the given client, consulting board for the
// provider's connection status.
func New(client Client, board *probe.Board) *Registry {
	return &Registry{
		client:   client,
		board:    board,
		provider: model.ProviderOllama,
	}
}

// IsPulling reports whether a pull is in flight.
func (r *Registry) IsPulling() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isPulling
}

// IsDeleting reports whether a delete is in flight.
func (r *Registry) IsDeleting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isDeleting
}

// =============================================================================
// LIST
// =============================================================================

// List returns the provider's current model names. Fails soft: when the
// board says the provider is offline, List short-circuits to an empty
// list without touching the network (avoids a guaranteed-noisy error).
func (r *Registry) List(ctx context.Context) ([]string, error) {
	if r.board.Get(r.provider) == model.StatusOffline {
		return []string{}, nil
	}

	models, err := r.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return ollama.Names(models), nil
}

// =============================================================================
// PULL
// =============================================================================

// Pull downloads a model by name. The name must be non-empty after
// trimming; validation happens before any network call. On success the
// caller re-lists to refresh its snapshot. Errors are returned as-is so
// the backend's message reaches the user verbatim; there is no automatic
// retry.
func (r *Registry) Pull(ctx context.Context, name string, progress func(ollama.PullProgress)) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	if err := r.acquire(&r.isPulling); err != nil {
		return err
	}
	defer r.release(&r.isPulling)

	return r.client.PullModel(ctx, name, progress)
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a model by name after consulting the confirmer. A
// declined confirmation returns ErrDeclined with no network call made.
func (r *Registry) Delete(ctx context.Context, name string, confirm Confirmer) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	// The gate sits immediately before the call, not earlier: the user
	// confirms the exact model about to be removed.
	if confirm == nil || !confirm.Confirm("Delete model \""+name+"\"? This cannot be undone.") {
		return ErrDeclined
	}

	if err := r.acquire(&r.isDeleting); err != nil {
		return err
	}
	defer r.release(&r.isDeleting)

	return r.client.DeleteModel(ctx, name)
}

// =============================================================================
// OPERATION GUARD
// =============================================================================

// acquire claims the single mutating-operation slot, setting *flag.
func (r *Registry) acquire(flag *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isPulling || r.isDeleting {
		return ErrBusy
	}
	*flag = true
	return nil
}

// release frees the slot claimed by acquire.
func (r *Registry) release(flag *bool) {
	r.mu.Lock()
	*flag = false
	r.mu.Unlock()
}
