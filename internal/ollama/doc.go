// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local model-serving API.
//
// This package implements the client for the Ollama-compatible local LLM
// server: health checks, model management (list/pull/delete), and
// streaming generation over newline-delimited JSON.
//
// # Key Types
//
//   - Client: HTTP client for the model-serving API
//   - ModelInfo: one locally installed model
//   - PullProgress: one status line from a streaming pull
//   - StreamReader: NDJSON reader for /api/generate responses
//
// # Usage
//
//	client := ollama.NewClient("http://127.0.0.1:11434")
//	models, err := client.ListModels(ctx)
//	err = client.GenerateStream(ctx, "llama2", prompt, func(text string) {
//	    // accumulate text
//	})
//
// Errors carry an ErrorType so callers can distinguish "server down" from
// "model missing" from "bad response"; check with errors.Is against the
// package sentinels.
package ollama
