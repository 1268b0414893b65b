// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package probe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/agentdeck/internal/model"
)

func TestBoard_DefaultsOffline(t *testing.T) {
	board := NewBoard()
	if got := board.Get(model.ProviderOllama); got != model.StatusOffline {
		t.Errorf("Initial status = %v, want offline", got)
	}
}

func TestProbe_Online(t *testing.T) {
	board := NewBoard()
	prober := NewProber(board)
	prober.Register(model.ProviderOllama, func(ctx context.Context) error {
		return nil
	})

	if !prober.Probe(context.Background(), model.ProviderOllama) {
		t.Error("Probe should report online")
	}
	if got := board.Get(model.ProviderOllama); got != model.StatusOnline {
		t.Errorf("Status = %v, want online", got)
	}
}

func TestProbe_AnyErrorMeansOffline(t *testing.T) {
	board := NewBoard()
	prober := NewProber(board)
	prober.Register(model.ProviderBradie, func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	if prober.Probe(context.Background(), model.ProviderBradie) {
		t.Error("Probe should report offline")
	}
	if got := board.Get(model.ProviderBradie); got != model.StatusOffline {
		t.Errorf("Status = %v, want offline", got)
	}
}

func TestProbe_SetsCheckingDuringCall(t *testing.T) {
	board := NewBoard()
	prober := NewProber(board)

	observed := make(chan model.ConnectionStatus, 1)
	prober.Register(model.ProviderOllama, func(ctx context.Context) error {
		observed <- board.Get(model.ProviderOllama)
		return nil
	})

	prober.Probe(context.Background(), model.ProviderOllama)
	if got := <-observed; got != model.StatusChecking {
		t.Errorf("Status during probe = %v, want checking", got)
	}
}

func TestProbe_UnregisteredProvider(t *testing.T) {
	prober := NewProber(NewBoard())
	if prober.Probe(context.Background(), model.ProviderBradie) {
		t.Error("Probe of unregistered provider should report offline")
	}
}

func TestProbe_TimeoutResolvesOffline(t *testing.T) {
	board := NewBoard()
	prober := NewProber(board)
	prober.SetTimeout(20 * time.Millisecond)
	prober.Register(model.ProviderOllama, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if prober.Probe(context.Background(), model.ProviderOllama) {
		t.Error("Hung probe should resolve offline")
	}
	if got := board.Get(model.ProviderOllama); got != model.StatusOffline {
		t.Errorf("Status = %v, want offline after timeout", got)
	}
}

func TestProbe_ProvidersIndependent(t *testing.T) {
	board := NewBoard()
	prober := NewProber(board)

	// A slow ollama probe must not block the bradie probe.
	ollamaStarted := make(chan struct{})
	releaseOllama := make(chan struct{})
	prober.Register(model.ProviderOllama, func(ctx context.Context) error {
		close(ollamaStarted)
		<-releaseOllama
		return nil
	})
	prober.Register(model.ProviderBradie, func(ctx context.Context) error {
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		prober.Probe(context.Background(), model.ProviderOllama)
	}()

	<-ollamaStarted
	if !prober.Probe(context.Background(), model.ProviderBradie) {
		t.Error("Bradie probe should succeed while ollama probe is in flight")
	}
	if got := board.Get(model.ProviderOllama); got != model.StatusChecking {
		t.Errorf("Ollama status = %v, want still checking", got)
	}

	close(releaseOllama)
	wg.Wait()
	if got := board.Get(model.ProviderOllama); got != model.StatusOnline {
		t.Errorf("Ollama status = %v, want online after release", got)
	}
}
