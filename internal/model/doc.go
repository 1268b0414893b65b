// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core value types shared across agentdeck.
//
// # Key Types
//
//   - Provider: enum of selectable AI backends (ollama, bradie)
//   - ConnectionStatus: tri-state probe result (checking/online/offline)
//   - ChatMessage: one transcript entry with role, content, timestamp
//   - Session: a named backend-scoped working context
//   - AgentConfig: the immutable "what happens on send" configuration value
//
// AgentConfig is replaced wholesale on every change; the With* helpers
// return modified copies so consumers never observe a partial update.
package model
