// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/agentdeck/internal/model"
	"github.com/jeranaias/agentdeck/internal/storage"
)

// fakeBackend assigns sequential IDs and counts calls.
type fakeBackend struct {
	calls int
	err   error
}

func (f *fakeBackend) CreateSession(ctx context.Context, name, path string) (model.Session, error) {
	f.calls++
	if f.err != nil {
		return model.Session{}, f.err
	}
	return model.Session{ID: "s1", Name: name, Path: path}, nil
}

func TestCreate_ValidationBeforeBackend(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore(storage.NewMemStore(), backend)

	cases := []struct {
		name, path string
		want       error
	}{
		{"", "/proj", ErrNameRequired},
		{"   ", "/proj", ErrNameRequired},
		{"work", "", ErrPathRequired},
		{"work", "  \t", ErrPathRequired},
	}
	for _, tc := range cases {
		if _, err := store.Create(context.Background(), tc.name, tc.path); !errors.Is(err, tc.want) {
			t.Errorf("Create(%q, %q) = %v, want %v", tc.name, tc.path, err, tc.want)
		}
	}
	if backend.calls != 0 {
		t.Errorf("backend calls = %d, want 0 (validation must precede the call)", backend.calls)
	}
}

func TestCreate_BackendAssignsID(t *testing.T) {
	kv := storage.NewMemStore()
	store := NewStore(kv, &fakeBackend{})

	sess, err := store.Create(context.Background(), "work", "/proj")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.ID != "s1" {
		t.Errorf("ID = %q, want backend-assigned s1", sess.ID)
	}
	if got := store.Sessions(); len(got) != 1 || got[0].ID != "s1" {
		t.Errorf("Sessions = %v, want the created session", got)
	}
	if kv.SetCalls != 1 {
		t.Errorf("SetCalls = %d, want 1 (persisted after create)", kv.SetCalls)
	}
}

func TestCreate_BackendErrorLeavesListUnchanged(t *testing.T) {
	backend := &fakeBackend{err: errors.New("backend down")}
	store := NewStore(storage.NewMemStore(), backend)

	if _, err := store.Create(context.Background(), "work", "/proj"); err == nil {
		t.Fatal("Create should surface the backend error")
	}
	if got := store.Sessions(); len(got) != 0 {
		t.Errorf("Sessions = %v, want empty after failed create", got)
	}
}

func TestLoad_CorruptDataStartsEmpty(t *testing.T) {
	kv := storage.NewMemStore()
	if err := kv.Set(StorageKey, "{not json"); err != nil {
		t.Fatal(err)
	}

	store := NewStore(kv, &fakeBackend{})
	if got := store.Sessions(); len(got) != 0 {
		t.Errorf("Sessions = %v, want empty on corrupt persisted data", got)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	kv := storage.NewMemStore()
	first := NewStore(kv, &fakeBackend{})
	if _, err := first.Create(context.Background(), "work", "/proj"); err != nil {
		t.Fatal(err)
	}

	second := NewStore(kv, &fakeBackend{})
	got := second.Sessions()
	if len(got) != 1 || got[0].Name != "work" || got[0].Path != "/proj" {
		t.Errorf("Sessions after reload = %v, want persisted session", got)
	}
}

func TestSave_FailureSwallowed(t *testing.T) {
	kv := storage.NewMemStore()
	kv.FailSets = errors.New("disk full")
	store := NewStore(kv, &fakeBackend{})

	sess, err := store.Create(context.Background(), "work", "/proj")
	if err != nil {
		t.Fatalf("Create should succeed despite persistence failure: %v", err)
	}
	if got := store.Sessions(); len(got) != 1 || got[0].ID != sess.ID {
		t.Errorf("Sessions = %v, want in-memory list to stay authoritative", got)
	}
}

func TestDelete_ActiveSessionClearsReference(t *testing.T) {
	store := NewStore(storage.NewMemStore(), &fakeBackend{})
	sess, err := store.Create(context.Background(), "work", "/proj")
	if err != nil {
		t.Fatal(err)
	}
	store.SetActive(sess.ID)
	if store.Active() == nil {
		t.Fatal("session should be active")
	}

	if wasActive := store.Delete(sess.ID); !wasActive {
		t.Error("Delete should report the active session was removed")
	}
	if store.Active() != nil {
		t.Error("Active should be nil after deleting the active session")
	}
	if got := store.Sessions(); len(got) != 0 {
		t.Errorf("Sessions = %v, want empty", got)
	}
}

func TestDelete_NonActiveLeavesActiveAlone(t *testing.T) {
	kv := storage.NewMemStore()
	store := NewStore(kv, &fakeBackend{})
	kept, _ := store.Create(context.Background(), "keep", "/a")

	// Second session has a distinct backend-assigned ID.
	other := model.Session{ID: "s2", Name: "drop", Path: "/b"}
	store.mu.Lock()
	store.sessions = append(store.sessions, other)
	store.mu.Unlock()

	store.SetActive(kept.ID)
	if wasActive := store.Delete(other.ID); wasActive {
		t.Error("Delete of non-active session should report false")
	}
	if active := store.Active(); active == nil || active.ID != kept.ID {
		t.Errorf("Active = %v, want %q untouched", active, kept.ID)
	}
}

func TestDelete_UnknownIDIsNoOp(t *testing.T) {
	kv := storage.NewMemStore()
	store := NewStore(kv, &fakeBackend{})
	if _, err := store.Create(context.Background(), "work", "/proj"); err != nil {
		t.Fatal(err)
	}
	before := kv.SetCalls

	if wasActive := store.Delete("missing"); wasActive {
		t.Error("Delete of unknown ID should report false")
	}
	if kv.SetCalls != before {
		t.Error("Delete of unknown ID should not rewrite the persisted list")
	}
}

func TestSetActive_UnknownIDClearsSelection(t *testing.T) {
	store := NewStore(storage.NewMemStore(), &fakeBackend{})
	sess, _ := store.Create(context.Background(), "work", "/proj")
	store.SetActive(sess.ID)

	store.SetActive("missing")
	if store.Active() != nil {
		t.Error("SetActive with unknown ID should clear the selection")
	}
}
