package plugin

import tea "github.com/charmbracelet/bubbletea"

// Plugin defines the interface for all noteshelf plugins.
type Plugin interface {
	ID() string
	Name() string
	Icon() string
	Init(ctx *Context) error
	Start() tea.Cmd
	Stop()
	Update(msg tea.Msg) (Plugin, tea.Cmd)
	View(width, height int) string
	IsFocused() bool
	SetFocused(bool)
	Commands() []Command
	FocusContext() string
}

// TextInputConsumer is an optional capability for plugins that need
// alphanumeric key input to be forwarded as typed text instead of being
// intercepted by app-level shortcuts.
type TextInputConsumer interface {
	ConsumesTextInput() bool
}

// Flusher is implemented by plugins holding unsaved work. Flush starts
// persisting it. When pending is true the plugin emits exactly one
// FlushedMsg once the work has settled.
type Flusher interface {
	Flush() (cmd tea.Cmd, pending bool)
}

// FlushedMsg reports that a plugin finished flushing. Err is the last save
// error, if the flush could not persist everything.
type FlushedMsg struct {
	PluginID string
	Err      error
}

// AuthExpiredMsg tells the app the store rejected our credentials. The app
// exits with Err.
type AuthExpiredMsg struct {
	Err error
}

// Category represents a logical grouping of commands for the help view.
type Category string

const (
	CategoryNavigation Category = "Navigation"
	CategoryActions    Category = "Actions"
	CategoryView       Category = "View"
	CategoryEdit       Category = "Edit"
	CategorySystem     Category = "System"
)

// Command represents a keybinding command exposed by a plugin.
type Command struct {
	ID          string   // Unique identifier (e.g., "new-note")
	Name        string   // Short name for footer (e.g., "New")
	Description string   // Full description for help
	Category    Category // Logical grouping for help display
	Context     string   // Activation context
	Priority    int      // Footer display priority: 1=highest, 0=default (treated as 99)
}

// PluginFocusedMsg is sent to a plugin when it becomes the active plugin.
type PluginFocusedMsg struct{}

// EpochMessage is implemented by async messages that need staleness detection.
type EpochMessage interface {
	GetEpoch() uint64
}

// IsStale returns true if the message's epoch doesn't match the current context epoch.
// Use this in Update() handlers to discard results of superseded requests:
//
//	if plugin.IsStale(p.ctx, msg) { return p, nil }
func IsStale(ctx *Context, msg EpochMessage) bool {
	return ctx != nil && msg.GetEpoch() != ctx.Epoch
}
