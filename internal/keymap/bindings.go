package keymap

// Binding maps a key (or a space-separated key sequence) to a command in a
// context.
type Binding struct {
	Key     string
	Command string
	Context string
}

// Focus contexts.
const (
	ContextGlobal         = "global"
	ContextSidebar        = "notes-sidebar"
	ContextList           = "notes-list"
	ContextEditor         = "notes-editor"
	ContextEditorCategory = "notes-editor-category"
	ContextQuitConfirm    = "quit-confirm"
)

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "q", Command: "quit", Context: ContextGlobal},
		{Key: "ctrl+c", Command: "quit", Context: ContextGlobal},
		{Key: "?", Command: "toggle-help", Context: ContextGlobal},
		{Key: "ctrl+h", Command: "toggle-footer", Context: ContextGlobal},
		{Key: "T", Command: "cycle-theme", Context: ContextGlobal},
		{Key: "r", Command: "refresh", Context: ContextGlobal},

		// Category sidebar
		{Key: "j", Command: "cursor-down", Context: ContextSidebar},
		{Key: "down", Command: "cursor-down", Context: ContextSidebar},
		{Key: "k", Command: "cursor-up", Context: ContextSidebar},
		{Key: "up", Command: "cursor-up", Context: ContextSidebar},
		{Key: "enter", Command: "select", Context: ContextSidebar},
		{Key: "tab", Command: "switch-pane", Context: ContextSidebar},
		{Key: "l", Command: "switch-pane", Context: ContextSidebar},
		{Key: "right", Command: "switch-pane", Context: ContextSidebar},
		{Key: "n", Command: "new-note", Context: ContextSidebar},
		{Key: "[", Command: "shrink-list", Context: ContextSidebar},
		{Key: "]", Command: "grow-list", Context: ContextSidebar},

		// Note list
		{Key: "j", Command: "cursor-down", Context: ContextList},
		{Key: "down", Command: "cursor-down", Context: ContextList},
		{Key: "k", Command: "cursor-up", Context: ContextList},
		{Key: "up", Command: "cursor-up", Context: ContextList},
		{Key: "g g", Command: "cursor-top", Context: ContextList},
		{Key: "G", Command: "cursor-bottom", Context: ContextList},
		{Key: "enter", Command: "open-note", Context: ContextList},
		{Key: "n", Command: "new-note", Context: ContextList},
		{Key: "y", Command: "yank-note", Context: ContextList},
		{Key: "p", Command: "toggle-preview", Context: ContextList},
		{Key: "tab", Command: "switch-pane", Context: ContextList},
		{Key: "h", Command: "switch-pane", Context: ContextList},
		{Key: "left", Command: "switch-pane", Context: ContextList},
		{Key: "[", Command: "shrink-list", Context: ContextList},
		{Key: "]", Command: "grow-list", Context: ContextList},

		// Editor modal, title and content fields
		{Key: "esc", Command: "dismiss-editor", Context: ContextEditor},
		{Key: "ctrl+w", Command: "close-editor", Context: ContextEditor},
		{Key: "tab", Command: "next-field", Context: ContextEditor},
		{Key: "shift+tab", Command: "prev-field", Context: ContextEditor},
		{Key: "ctrl+y", Command: "yank-note", Context: ContextEditor},

		// Editor modal, category picker
		{Key: "esc", Command: "dismiss-editor", Context: ContextEditorCategory},
		{Key: "ctrl+w", Command: "close-editor", Context: ContextEditorCategory},
		{Key: "tab", Command: "next-field", Context: ContextEditorCategory},
		{Key: "shift+tab", Command: "prev-field", Context: ContextEditorCategory},
		{Key: "right", Command: "next-category", Context: ContextEditorCategory},
		{Key: "l", Command: "next-category", Context: ContextEditorCategory},
		{Key: "j", Command: "next-category", Context: ContextEditorCategory},
		{Key: "left", Command: "prev-category", Context: ContextEditorCategory},
		{Key: "h", Command: "prev-category", Context: ContextEditorCategory},
		{Key: "k", Command: "prev-category", Context: ContextEditorCategory},
		{Key: "ctrl+y", Command: "yank-note", Context: ContextEditorCategory},

		// Quit confirmation
		{Key: "y", Command: "confirm", Context: ContextQuitConfirm},
		{Key: "n", Command: "cancel", Context: ContextQuitConfirm},
		{Key: "esc", Command: "cancel", Context: ContextQuitConfirm},
	}
}
