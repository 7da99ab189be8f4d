package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func newDefaults() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

func TestResolveDefaults(t *testing.T) {
	r := newDefaults()
	tests := []struct {
		context, key, want string
	}{
		{ContextList, "j", "cursor-down"},
		{ContextList, "enter", "open-note"},
		{ContextSidebar, "enter", "select"},
		{ContextEditor, "esc", "dismiss-editor"},
		{ContextEditor, "j", ""}, // typed text
		{ContextEditorCategory, "l", "next-category"},
		{ContextGlobal, "q", "quit"},
		{"unknown", "q", ""},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.context, tt.key); got != tt.want {
			t.Errorf("Resolve(%s, %s) = %q, want %q", tt.context, tt.key, got, tt.want)
		}
	}
}

func TestResolveSequence(t *testing.T) {
	r := newDefaults()
	if got := r.Resolve(ContextList, "g"); got != "" {
		t.Fatalf("first g resolved to %q", got)
	}
	if !r.Pending() {
		t.Fatal("expected pending sequence after g")
	}
	if got := r.Resolve(ContextList, "g"); got != "cursor-top" {
		t.Fatalf("g g = %q, want cursor-top", got)
	}
	if r.Pending() {
		t.Fatal("sequence should be consumed")
	}

	// A broken sequence resolves the second key on its own.
	r.Resolve(ContextList, "g")
	if got := r.Resolve(ContextList, "j"); got != "cursor-down" {
		t.Errorf("g j = %q, want cursor-down", got)
	}
}

func TestUserOverrides(t *testing.T) {
	r := newDefaults()
	r.SetUserOverride("ctrl+n", "new-note")
	r.SetUserOverride("y", "")

	if got := r.Resolve(ContextList, "ctrl+n"); got != "new-note" {
		t.Errorf("override ctrl+n = %q, want new-note", got)
	}
	if got := r.Resolve(ContextSidebar, "ctrl+n"); got != "new-note" {
		t.Errorf("override in sidebar = %q, want new-note", got)
	}
	// new-note is not an editor command
	if got := r.Resolve(ContextEditor, "ctrl+n"); got != "" {
		t.Errorf("override leaked into editor: %q", got)
	}
	if got := r.Resolve(ContextList, "y"); got != "" {
		t.Errorf("unbound y = %q, want empty", got)
	}
	// Default key still works alongside the override.
	if got := r.Resolve(ContextList, "n"); got != "new-note" {
		t.Errorf("default n = %q, want new-note", got)
	}
}

func TestKeysForAndHelpBinding(t *testing.T) {
	r := newDefaults()
	r.SetUserOverride("ctrl+n", "new-note")

	keys := r.KeysFor(ContextList, "new-note")
	if len(keys) != 2 || keys[0] != "ctrl+n" || keys[1] != "n" {
		t.Fatalf("KeysFor = %v, want [ctrl+n n]", keys)
	}

	b := r.HelpBinding(ContextList, "cursor-down", "Down")
	if b.Help().Key != "j" || b.Help().Desc != "Down" {
		t.Errorf("help = %+v", b.Help())
	}
	if !key.Matches(tea.KeyMsg{Type: tea.KeyDown}, b) {
		t.Error("binding should match the down arrow")
	}

	if r.HelpBinding(ContextList, "no-such", "x").Enabled() {
		t.Error("binding for unbound command should be disabled")
	}
}
