// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/agentdeck/internal/model"
	"github.com/jeranaias/agentdeck/internal/ollama"
	"github.com/jeranaias/agentdeck/internal/probe"
)

// fakeClient counts calls and can block inside PullModel.
type fakeClient struct {
	mu          sync.Mutex
	listCalls   int
	pullCalls   int
	deleteCalls int

	models    []ollama.ModelInfo
	pullErr   error
	deleteErr error
	pullGate  chan struct{} // when non-nil, PullModel blocks until closed
}

func (f *fakeClient) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	return f.models, nil
}

func (f *fakeClient) PullModel(ctx context.Context, name string, progress func(ollama.PullProgress)) error {
	f.mu.Lock()
	f.pullCalls++
	gate := f.pullGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.pullErr
}

func (f *fakeClient) DeleteModel(ctx context.Context, name string) error {
	f.mu.Lock()
	f.deleteCalls++
	f.mu.Unlock()
	return f.deleteErr
}

// onlineBoard returns a board with the ollama provider marked online.
func onlineBoard(t *testing.T) *probe.Board {
	t.Helper()
	board := probe.NewBoard()
	prober := probe.NewProber(board)
	prober.Register(model.ProviderOllama, func(ctx context.Context) error { return nil })
	prober.Probe(context.Background(), model.ProviderOllama)
	return board
}

func accept() Confirmer  { return ConfirmerFunc(func(string) bool { return true }) }
func decline() Confirmer { return ConfirmerFunc(func(string) bool { return false }) }

// =============================================================================
// LIST TESTS
// =============================================================================

func TestList_OfflineShortCircuit(t *testing.T) {
	client := &fakeClient{models: []ollama.ModelInfo{{Name: "llama2"}}}
	reg := New(client, probe.NewBoard()) // board says offline

	names, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Names = %v, want empty when offline", names)
	}
	if client.listCalls != 0 {
		t.Errorf("listCalls = %d, want 0 (no network call when offline)", client.listCalls)
	}
}

func TestList_Online(t *testing.T) {
	client := &fakeClient{models: []ollama.ModelInfo{{Name: "llama2"}, {Name: "mistral"}}}
	reg := New(client, onlineBoard(t))

	names, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 || names[0] != "llama2" || names[1] != "mistral" {
		t.Errorf("Names = %v, want [llama2 mistral]", names)
	}
}

// =============================================================================
// PULL TESTS
// =============================================================================

func TestPull_EmptyNameNoNetworkCall(t *testing.T) {
	client := &fakeClient{}
	reg := New(client, onlineBoard(t))

	for _, name := range []string{"", "   ", "\t\n"} {
		if err := reg.Pull(context.Background(), name, nil); !errors.Is(err, ErrEmptyName) {
			t.Errorf("Pull(%q) = %v, want ErrEmptyName", name, err)
		}
	}
	if client.pullCalls != 0 {
		t.Errorf("pullCalls = %d, want 0", client.pullCalls)
	}
}

func TestPull_ErrorSurfacedVerbatim(t *testing.T) {
	pullErr := errors.New("pull model manifest: file does not exist")
	client := &fakeClient{pullErr: pullErr}
	reg := New(client, onlineBoard(t))

	err := reg.Pull(context.Background(), "nope", nil)
	if !errors.Is(err, pullErr) {
		t.Errorf("Pull error = %v, want client error unchanged", err)
	}
}

func TestPull_MutualExclusion(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{pullGate: gate}
	reg := New(client, onlineBoard(t))

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- reg.Pull(context.Background(), "llama2", nil)
	}()
	<-started
	deadline := time.Now().Add(time.Second)
	for !reg.IsPulling() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !reg.IsPulling() {
		t.Fatal("First pull never claimed the operation slot")
	}

	// Second pull and a delete must both bounce while one is in flight.
	if err := reg.Pull(context.Background(), "mistral", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("Concurrent Pull = %v, want ErrBusy", err)
	}
	if err := reg.Delete(context.Background(), "llama2", accept()); !errors.Is(err, ErrBusy) {
		t.Errorf("Concurrent Delete = %v, want ErrBusy", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("First pull failed: %v", err)
	}
	if reg.IsPulling() {
		t.Error("IsPulling should clear after completion")
	}

	// Slot is free again.
	if err := reg.Pull(context.Background(), "mistral", nil); err != nil {
		t.Errorf("Pull after release = %v, want nil", err)
	}
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDelete_DeclinedMakesNoCall(t *testing.T) {
	client := &fakeClient{}
	reg := New(client, onlineBoard(t))

	err := reg.Delete(context.Background(), "llama2", decline())
	if !errors.Is(err, ErrDeclined) {
		t.Errorf("Delete = %v, want ErrDeclined", err)
	}
	if client.deleteCalls != 0 {
		t.Errorf("deleteCalls = %d, want 0 when declined", client.deleteCalls)
	}
}

func TestDelete_Confirmed(t *testing.T) {
	client := &fakeClient{}
	reg := New(client, onlineBoard(t))

	var prompt string
	confirm := ConfirmerFunc(func(msg string) bool {
		prompt = msg
		return true
	})
	if err := reg.Delete(context.Background(), "llama2", confirm); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if client.deleteCalls != 1 {
		t.Errorf("deleteCalls = %d, want 1", client.deleteCalls)
	}
	if !strings.Contains(prompt, "llama2") {
		t.Errorf("Confirmation prompt %q should name the model", prompt)
	}
}
