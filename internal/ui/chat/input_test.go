// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(t *testing.T, in Input, text string) Input {
	t.Helper()
	for _, r := range text {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return in
}

func TestInput_EnterSubmits(t *testing.T) {
	in := typeText(t, NewInput(), "hello")

	in, cmd := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter on a non-blank draft should emit a command")
	}
	msg, ok := cmd().(SubmitMsg)
	if !ok {
		t.Fatalf("cmd produced %T, want SubmitMsg", cmd())
	}
	if msg.Text != "hello" {
		t.Errorf("SubmitMsg.Text = %q, want %q", msg.Text, "hello")
	}
	if in.Value() != "" {
		t.Errorf("Value = %q, want cleared after submit", in.Value())
	}
}

func TestInput_CtrlJInsertsNewline(t *testing.T) {
	in := typeText(t, NewInput(), "line1")
	in, cmd := in.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	if cmd != nil {
		if _, isSubmit := cmd().(SubmitMsg); isSubmit {
			t.Fatal("Ctrl+J must not submit")
		}
	}
	in = typeText(t, in, "line2")

	if in.Value() != "line1\nline2" {
		t.Errorf("Value = %q, want two lines", in.Value())
	}
}

func TestInput_BlankEnterIsNoOp(t *testing.T) {
	in := typeText(t, NewInput(), "   ")
	in, cmd := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		if _, isSubmit := cmd().(SubmitMsg); isSubmit {
			t.Error("blank draft should not submit")
		}
	}
	if in.Value() != "   " {
		t.Errorf("Value = %q, blank draft should be left as-is", in.Value())
	}
}

func TestInput_DisabledSwallowsSubmit(t *testing.T) {
	in := typeText(t, NewInput(), "pending")
	in.SetEnabled(false)

	in, cmd := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("disabled composer should swallow Enter")
	}
	if in.Value() != "pending" {
		t.Errorf("Value = %q, want draft preserved while disabled", in.Value())
	}
}
