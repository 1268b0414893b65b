// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"testing"

	"github.com/jeranaias/agentdeck/internal/model"
)

func TestAssembler_ChunksConcatenateInOrder(t *testing.T) {
	a := New()
	gen := a.Begin(model.ProviderOllama)

	a.Chunk(gen, "Hel")
	a.Chunk(gen, "lo ")
	a.Chunk(gen, "world")

	msg, ok := a.Complete(gen)
	if !ok {
		t.Fatal("Complete should produce a message")
	}
	if msg.Content != "Hello world" {
		t.Errorf("Content = %q, want chunks concatenated in arrival order", msg.Content)
	}
	if msg.Role != model.RoleAssistant {
		t.Errorf("Role = %v, want assistant", msg.Role)
	}
	if msg.Provider != model.ProviderOllama {
		t.Errorf("Provider = %v, want ollama", msg.Provider)
	}
	if msg.ID == "" {
		t.Error("finalized message should have an ID")
	}
	if a.State() != StateIdle {
		t.Errorf("State = %v, want idle after completion", a.State())
	}
}

func TestAssembler_EmptyCompletionProducesNoMessage(t *testing.T) {
	a := New()

	for _, chunks := range [][]string{nil, {""}, {"  ", "\n\t"}} {
		gen := a.Begin(model.ProviderOllama)
		for _, c := range chunks {
			a.Chunk(gen, c)
		}
		if _, ok := a.Complete(gen); ok {
			t.Errorf("Complete after chunks %q should produce no message", chunks)
		}
		if a.State() != StateIdle {
			t.Errorf("State = %v, want idle", a.State())
		}
	}
}

func TestAssembler_FailDiscardsPartialContent(t *testing.T) {
	a := New()
	gen := a.Begin(model.ProviderOllama)
	a.Chunk(gen, "partial response")

	a.Fail(gen)
	if a.State() != StateIdle {
		t.Errorf("State = %v, want idle after failure", a.State())
	}
	if a.Preview() != "" {
		t.Errorf("Preview = %q, want buffer discarded", a.Preview())
	}

	// A later Complete for the failed cycle must not resurrect anything.
	if _, ok := a.Complete(gen); ok {
		t.Error("Complete after Fail should produce no message")
	}
}

func TestAssembler_StaleGenerationDropped(t *testing.T) {
	a := New()
	old := a.Begin(model.ProviderOllama)
	a.Chunk(old, "stale ")

	cur := a.Begin(model.ProviderBradie)
	a.Chunk(old, "ghost chunk")
	a.Chunk(cur, "fresh")

	// Stale terminal events are ignored entirely.
	if _, ok := a.Complete(old); ok {
		t.Error("Complete with stale generation should produce no message")
	}
	a.Fail(old)
	if a.State() != StateStreaming {
		t.Errorf("State = %v, stale Fail must not abort the current cycle", a.State())
	}

	msg, ok := a.Complete(cur)
	if !ok {
		t.Fatal("current cycle should complete")
	}
	if msg.Content != "fresh" {
		t.Errorf("Content = %q, want only current-cycle chunks", msg.Content)
	}
	if msg.Provider != model.ProviderBradie {
		t.Errorf("Provider = %v, want bradie", msg.Provider)
	}
}

func TestAssembler_BeginResetsPreviousBuffer(t *testing.T) {
	a := New()
	gen := a.Begin(model.ProviderOllama)
	a.Chunk(gen, "abandoned")

	next := a.Begin(model.ProviderOllama)
	if a.Preview() != "" {
		t.Errorf("Preview = %q, want empty after new Begin", a.Preview())
	}
	a.Chunk(next, "kept")
	msg, ok := a.Complete(next)
	if !ok || msg.Content != "kept" {
		t.Errorf("Content = %q, want %q", msg.Content, "kept")
	}
}

func TestAssembler_PreviewTracksAccumulation(t *testing.T) {
	a := New()
	gen := a.Begin(model.ProviderOllama)
	a.Chunk(gen, "Hel")
	if got := a.Preview(); got != "Hel" {
		t.Errorf("Preview = %q, want %q", got, "Hel")
	}
	a.Chunk(gen, "lo")
	if got := a.Preview(); got != "Hello" {
		t.Errorf("Preview = %q, want %q", got, "Hello")
	}
}

func TestState_String(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateStreaming, "streaming"},
		{StateFinalizing, "finalizing"},
		{State(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}
