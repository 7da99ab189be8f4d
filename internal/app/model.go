package app

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/noteshelf/internal/config"
	"github.com/marcus/noteshelf/internal/keymap"
	"github.com/marcus/noteshelf/internal/plugin"
	"github.com/marcus/noteshelf/internal/styles"
	"github.com/marcus/noteshelf/internal/ui"
)

// defaultFlushTimeout bounds how long quitting waits for plugins to persist
// unsaved work.
const defaultFlushTimeout = 15 * time.Second

// Model is the root Bubble Tea model for the noteshelf application.
type Model struct {
	cfg    *config.Config
	logger *slog.Logger

	// Plugin management
	registry     *plugin.Registry
	activePlugin int

	// Keymap
	keymap        *keymap.Registry
	activeContext string

	// UI state
	width, height int
	ready         bool
	showHelp      bool
	showFooter    bool
	help          help.Model
	quitConfirm   *ui.ConfirmDialog
	clock         time.Time

	// Status/toast messages
	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool

	// Teardown
	quitting     bool
	done         bool
	flushPending int
	flushTimeout time.Duration

	// exitErr is reported by the command once the program ends.
	exitErr error
}

// New creates a new application model.
func New(reg *plugin.Registry, km *keymap.Registry, cfg *config.Config, logger *slog.Logger) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := Model{
		cfg:           cfg,
		logger:        logger,
		registry:      reg,
		keymap:        km,
		activeContext: keymap.ContextGlobal,
		showFooter:    cfg.UI.ShowFooter,
		help:          help.New(),
		clock:         time.Now(),
		flushTimeout:  defaultFlushTimeout,
	}
	m.styleHelp()
	if p := m.ActivePlugin(); p != nil {
		p.SetFocused(true)
		m.activeContext = p.FocusContext()
	}
	return m
}

// Init initializes the model and returns initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	cmds = append(cmds, m.registry.Start()...)
	return tea.Batch(cmds...)
}

// Err returns the error the application exited with, if any.
func (m Model) Err() error {
	return m.exitErr
}

// ActivePlugin returns the currently active plugin.
func (m Model) ActivePlugin() plugin.Plugin {
	plugins := m.registry.Plugins()
	if len(plugins) == 0 {
		return nil
	}
	if m.activePlugin >= len(plugins) {
		return plugins[0]
	}
	return plugins[m.activePlugin]
}

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(msg string, duration time.Duration, isError bool) {
	m.statusMsg = msg
	m.statusExpiry = m.clock.Add(duration)
	m.statusIsError = isError
}

// ClearToast clears any expired toast message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && !m.clock.Before(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

// consumesText reports whether p wants printable keys as typed text.
func consumesText(p plugin.Plugin) bool {
	tc, ok := p.(plugin.TextInputConsumer)
	return ok && tc.ConsumesTextInput()
}

// refresher is implemented by plugins that can reload their data.
type refresher interface {
	Refresh() tea.Cmd
}

// updateContext sets activeContext based on current state.
func (m *Model) updateContext() {
	switch {
	case m.quitConfirm != nil:
		m.activeContext = keymap.ContextQuitConfirm
	case m.ActivePlugin() != nil:
		m.activeContext = m.ActivePlugin().FocusContext()
	default:
		m.activeContext = keymap.ContextGlobal
	}
}

func (m *Model) styleHelp() {
	m.help.Styles.ShortKey = styles.KeyHint
	m.help.Styles.ShortDesc = styles.Muted
	m.help.Styles.ShortSeparator = styles.Subtle
	m.help.Styles.FullKey = styles.KeyHint
	m.help.Styles.FullDesc = styles.Body
	m.help.Styles.FullSeparator = styles.Subtle
	m.help.Styles.Ellipsis = styles.Subtle
}
