// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and persists agent configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/agentdeck/internal/model"
	"github.com/jeranaias/agentdeck/internal/util"
)

// Defaults.
const (
	DefaultOllamaURL = "http://127.0.0.1:11434"
	DefaultBradieURL = "http://127.0.0.1:8080"
)

// Config is the on-disk agent configuration. Values are replaced as a
// whole: mutate a copy, then hand the new value to whoever holds the
// current one.
type Config struct {
	// Provider selects the active backend: "ollama" or "bradie".
	Provider string `toml:"provider"`

	// OllamaURL is the base URL of the local model server.
	OllamaURL string `toml:"ollama_url"`

	// BradieURL is the base URL of the remote agent backend.
	BradieURL string `toml:"bradie_url"`

	// Model is the selected model name (ollama only).
	Model string `toml:"model"`

	// RemoteDomain scopes remote agent sessions, e.g. "work.example.com".
	RemoteDomain string `toml:"remote_domain"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Provider:  model.ProviderOllama.String(),
		OllamaURL: DefaultOllamaURL,
		BradieURL: DefaultBradieURL,
	}
}

// DefaultPath returns the standard config file location,
// ~/.agentdeck/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".agentdeck", "config.toml"), nil
}

// Load reads the configuration from path. A missing file returns defaults
// without error; a malformed file returns an error (unlike transcripts,
// silently discarding the user's config would hide a real mistake).
// Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fall through to env overrides
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if _, err := model.ParseProvider(cfg.Provider); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Env wins over file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AGENTDECK_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("AGENTDECK_OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("AGENTDECK_BRADIE_URL"); v != "" {
		cfg.BradieURL = v
	}
	if v := os.Getenv("AGENTDECK_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("AGENTDECK_REMOTE_DOMAIN"); v != "" {
		cfg.RemoteDomain = v
	}
}

// Save writes the configuration to path atomically, creating parent
// directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ToAgentConfig converts the file representation into the runtime value
// the router consumes. The active session is attached separately by the
// manager.
func (c Config) ToAgentConfig() model.AgentConfig {
	provider, _ := model.ParseProvider(c.Provider)
	endpoint := c.OllamaURL
	if provider == model.ProviderBradie {
		endpoint = c.BradieURL
	}
	return model.AgentConfig{
		Provider:     provider,
		Endpoint:     endpoint,
		Model:        c.Model,
		RemoteDomain: c.RemoteDomain,
	}
}
