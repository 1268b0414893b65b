// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat panel's multi-line input component.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// SubmitMsg is emitted when the user submits the drafted text.
type SubmitMsg struct {
	Text string
}

// KeyMap defines the input's key bindings. Enter submits; Shift+Enter
// (and Ctrl+J, for terminals that cannot report shifted Enter) inserts a
// newline.
type KeyMap struct {
	Submit  key.Binding
	Newline key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("shift+enter", "ctrl+j"),
			key.WithHelp("shift+enter", "newline"),
		),
	}
}

// =============================================================================
// INPUT
// =============================================================================

// Input is the message composer: a multi-line textarea where Enter submits
// and Shift+Enter continues the draft on a new line.
type Input struct {
	textarea textarea.Model
	keys     KeyMap
	enabled  bool
}

// NewInput creates an empty, enabled composer.
func NewInput() Input {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	keys := DefaultKeyMap()
	// The textarea's own newline binding must match ours, or Enter would
	// insert a line instead of reaching the submit branch.
	ta.KeyMap.InsertNewline = keys.Newline

	return Input{textarea: ta, keys: keys, enabled: true}
}

// Value returns the current draft text.
func (i Input) Value() string {
	return i.textarea.Value()
}

// SetValue replaces the draft text.
func (i *Input) SetValue(text string) {
	i.textarea.SetValue(text)
}

// SetEnabled toggles whether the composer accepts submits. Typing stays
// possible while a response streams; only submission is gated.
func (i *Input) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// Update handles one message. Enter on a non-blank draft emits SubmitMsg
// and clears the textarea; a blank draft is swallowed silently.
func (i Input) Update(msg tea.Msg) (Input, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, i.keys.Submit) {
		if !i.enabled {
			return i, nil
		}
		text := i.textarea.Value()
		if strings.TrimSpace(text) == "" {
			return i, nil
		}
		i.textarea.Reset()
		return i, func() tea.Msg { return SubmitMsg{Text: text} }
	}

	var cmd tea.Cmd
	i.textarea, cmd = i.textarea.Update(msg)
	return i, cmd
}

// View renders the composer.
func (i Input) View() string {
	return i.textarea.View()
}
