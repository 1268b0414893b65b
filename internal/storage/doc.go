// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the key-value persistence port for agentdeck.
//
// Session lists and chat transcripts are persisted through the Store
// interface so the same orchestration logic runs against a directory of
// JSON files, a SQLite database, or an in-memory map in tests.
//
// # Key Types
//
//   - Store: the Get/Set/Delete port; both sides assumed fallible
//   - FileStore: one atomic-written file per key
//   - SQLiteStore: single kv table via modernc.org/sqlite
//   - MemStore: in-memory store with failure injection for tests
//
// Callers never treat storage as transactional: write failures are logged
// and swallowed, read failures degrade to empty defaults.
package storage
