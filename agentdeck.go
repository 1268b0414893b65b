// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agentdeck wires the agent subsystem together: provider
// configuration, connection probing, model management, project sessions,
// and streaming chat, behind one Manager.
//
// # Usage
//
//	mgr, err := agentdeck.Open(agentdeck.Options{})
//	if err != nil { ... }
//	chat := mgr.NewChat()
//	chat.SetInput("hello")
//	chat.HandleSend(ctx)
package agentdeck

import (
	"context"
	"fmt"

	"github.com/jeranaias/agentdeck/internal/bradie"
	"github.com/jeranaias/agentdeck/internal/chat"
	"github.com/jeranaias/agentdeck/internal/config"
	"github.com/jeranaias/agentdeck/internal/model"
	"github.com/jeranaias/agentdeck/internal/ollama"
	"github.com/jeranaias/agentdeck/internal/probe"
	"github.com/jeranaias/agentdeck/internal/registry"
	"github.com/jeranaias/agentdeck/internal/router"
	"github.com/jeranaias/agentdeck/internal/session"
	"github.com/jeranaias/agentdeck/internal/storage"
)

// Re-exported guards the embedding shell branches on.
var (
	ErrSessionRequired = router.ErrSessionRequired
	ErrDeclined        = registry.ErrDeclined
	ErrBusy            = registry.ErrBusy
)

// Confirmer re-exports the destructive-operation gate.
type Confirmer = registry.Confirmer

// ConfirmerFunc re-exports the function adapter for Confirmer.
type ConfirmerFunc = registry.ConfirmerFunc

// Options configures Open. Zero values select the defaults.
type Options struct {
	// ConfigPath overrides the config file location
	// (default ~/.agentdeck/config.toml).
	ConfigPath string

	// Store overrides the persistence backend
	// (default file-backed under ~/.agentdeck/state/).
	Store storage.Store
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager is the front door of the agent subsystem. It owns the current
// configuration and the provider clients derived from it; everything else
// hangs off those.
type Manager struct {
	configPath string
	kv         storage.Store

	board    *probe.Board
	prober   *probe.Prober
	router   *router.Router
	registry *registry.Registry
	sessions *session.Store

	ollama *ollama.Client
	bradie *bradie.Client

	cfg config.Config
}

// Open loads the configuration and assembles the subsystem. The network is
// not touched: connection status starts offline until the first probe.
func Open(opts Options) (*Manager, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	kv := opts.Store
	if kv == nil {
		kv, err = storage.NewFileStore()
		if err != nil {
			return nil, err
		}
	}

	m := &Manager{
		configPath: path,
		kv:         kv,
		board:      probe.NewBoard(),
		cfg:        cfg,
	}
	m.prober = probe.NewProber(m.board)
	m.rebuildClients()

	m.registry = registry.New(m.ollama, m.board)
	m.sessions = session.NewStore(kv, m.bradie)
	m.router = router.New(m.ollama, m.bradie, m.agentConfig())
	return m, nil
}

// rebuildClients derives fresh provider clients from the current
// configuration and re-registers their liveness checks.
func (m *Manager) rebuildClients() {
	m.ollama = ollama.NewClient(m.cfg.OllamaURL)
	m.bradie = bradie.NewClient(m.cfg.BradieURL, m.cfg.RemoteDomain)

	m.prober.Register(model.ProviderOllama, func(ctx context.Context) error {
		return m.ollama.CheckRunning(ctx)
	})
	m.prober.Register(model.ProviderBradie, func(ctx context.Context) error {
		return m.bradie.CheckHealth(ctx)
	})
}

// agentConfig builds the runtime config value, attaching the active
// session.
func (m *Manager) agentConfig() model.AgentConfig {
	ac := m.cfg.ToAgentConfig()
	ac.Session = m.sessionsActive()
	return ac
}

func (m *Manager) sessionsActive() *model.Session {
	if m.sessions == nil {
		return nil
	}
	return m.sessions.Active()
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config returns the current configuration value.
func (m *Manager) Config() config.Config {
	return m.cfg
}

// ReplaceConfig installs a new configuration as a whole value, persists
// it, rebuilds the provider clients, and pushes the change to the router.
// The switch takes effect on the next send.
func (m *Manager) ReplaceConfig(cfg config.Config) error {
	if _, err := model.ParseProvider(cfg.Provider); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := config.Save(m.configPath, cfg); err != nil {
		return err
	}

	m.cfg = cfg
	m.rebuildClients()
	m.registry = registry.New(m.ollama, m.board)
	m.router.SetConfig(m.agentConfig())
	return nil
}

// =============================================================================
// CONNECTION
// =============================================================================

// Status returns the current connection status for a provider.
func (m *Manager) Status(p model.Provider) model.ConnectionStatus {
	return m.board.Get(p)
}

// TestConnection probes the given provider once and reports whether it is
// online. The board transitions through checking while the probe runs.
func (m *Manager) TestConnection(ctx context.Context, p model.Provider) bool {
	return m.prober.Probe(ctx, p)
}

// =============================================================================
// MODELS
// =============================================================================

// Models lists the local server's model names, or an empty list when it is
// offline.
func (m *Manager) Models(ctx context.Context) ([]string, error) {
	return m.registry.List(ctx)
}

// PullModel downloads a model, reporting progress through the callback.
func (m *Manager) PullModel(ctx context.Context, name string, progress func(ollama.PullProgress)) error {
	return m.registry.Pull(ctx, name, progress)
}

// DeleteModel removes a model after confirmation. When the deleted model
// is the selected one, the selection is cleared and persisted.
func (m *Manager) DeleteModel(ctx context.Context, name string, confirm Confirmer) error {
	if err := m.registry.Delete(ctx, name, confirm); err != nil {
		return err
	}
	if m.cfg.Model == name {
		cfg := m.cfg
		cfg.Model = ""
		return m.ReplaceConfig(cfg)
	}
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// Sessions returns the persisted session list.
func (m *Manager) Sessions() []model.Session {
	return m.sessions.Sessions()
}

// ActiveSession returns the active session, or nil.
func (m *Manager) ActiveSession() *model.Session {
	return m.sessions.Active()
}

// CreateSession creates a session on the agent backend and activates it.
func (m *Manager) CreateSession(ctx context.Context, name, path string) (model.Session, error) {
	sess, err := m.sessions.Create(ctx, name, path)
	if err != nil {
		return model.Session{}, err
	}
	m.sessions.SetActive(sess.ID)
	m.router.SetConfig(m.agentConfig())
	return sess, nil
}

// SetActiveSession activates the session with the given ID and pushes it
// to the router.
func (m *Manager) SetActiveSession(id string) {
	m.sessions.SetActive(id)
	m.router.SetConfig(m.agentConfig())
}

// DeleteSession removes a session. Deleting the active one clears the
// active reference, and the router's next send sees no session.
func (m *Manager) DeleteSession(id string) {
	if wasActive := m.sessions.Delete(id); wasActive {
		m.router.SetConfig(m.agentConfig())
	}
}

// =============================================================================
// CHAT
// =============================================================================

// NewChat creates a chat session over the manager's router and store,
// loading any persisted transcript.
func (m *Manager) NewChat() *chat.Session {
	return chat.NewSession(m.router, m.kv)
}
