// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"
)

// =============================================================================
// PROVIDER
// =============================================================================

// Provider identifies a selectable AI backend.
// Exactly one provider is current at any time (carried by AgentConfig).
type Provider int

const (
	// ProviderOllama is the local model-serving backend (supports model
	// management: list, pull, delete).
	ProviderOllama Provider = iota
	// ProviderBradie is the remote agent backend (session-scoped,
	// non-streaming request/response).
	ProviderBradie
)

// String returns the stable identifier used in configuration files.
func (p Provider) String() string {
	switch p {
	case ProviderOllama:
		return "ollama"
	case ProviderBradie:
		return "bradie"
	default:
		return fmt.Sprintf("Provider(%d)", p)
	}
}

// Valid reports whether the provider is a known backend.
func (p Provider) Valid() bool {
	return p == ProviderOllama || p == ProviderBradie
}

// SupportsModels reports whether the provider exposes model management.
// Only the local model-serving backend does.
func (p Provider) SupportsModels() bool {
	return p == ProviderOllama
}

// ParseProvider converts a configuration string to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "ollama", "local", "":
		return ProviderOllama, nil
	case "bradie", "remote":
		return ProviderBradie, nil
	default:
		return ProviderOllama, fmt.Errorf("unknown provider %q", s)
	}
}

// =============================================================================
// CONNECTION STATUS
// =============================================================================

// ConnectionStatus is the tri-state health of one provider endpoint.
// It is transient: always re-derived from a live probe, never persisted
// as a decision input.
type ConnectionStatus int

const (
	// StatusChecking means a probe is in flight.
	StatusChecking ConnectionStatus = iota
	// StatusOnline means the last probe succeeded.
	StatusOnline
	// StatusOffline means the last probe failed (or none has run yet).
	StatusOffline
)

// String returns the human-readable status name.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return fmt.Sprintf("ConnectionStatus(%d)", s)
	}
}

// =============================================================================
// CHAT MESSAGE
// =============================================================================

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one entry in a conversation transcript.
// IDs are locally generated; they are not backend identifiers.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Provider  Provider  `json:"provider"`
}

// =============================================================================
// SESSION
// =============================================================================

// Session is a named remote working context bound to a project path.
// The ID is assigned by the remote agent backend at creation time.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// AGENT CONFIG
// =============================================================================

// AgentConfig is the single source of truth for what happens when the
// user sends a message. It is treated as an immutable value: every change
// is a whole-value replacement, never an in-place field edit observed
// mid-update.
type AgentConfig struct {
	Provider     Provider `json:"provider"`
	Endpoint     string   `json:"endpoint"`
	Model        string   `json:"model,omitempty"`
	RemoteDomain string   `json:"remote_domain,omitempty"`
	Session      *Session `json:"session,omitempty"`
}

// WithProvider returns a copy with the provider (and endpoint) replaced.
func (c AgentConfig) WithProvider(p Provider, endpoint string) AgentConfig {
	c.Provider = p
	c.Endpoint = endpoint
	return c
}

// WithModel returns a copy with the selected model replaced.
func (c AgentConfig) WithModel(model string) AgentConfig {
	c.Model = model
	return c
}

// WithSession returns a copy with the active session replaced.
// Pass nil to clear the active session.
func (c AgentConfig) WithSession(s *Session) AgentConfig {
	if s == nil {
		c.Session = nil
		return c
	}
	// Copy so later mutations of the caller's value cannot alias into
	// a config that has already been published.
	sess := *s
	c.Session = &sess
	return c
}
