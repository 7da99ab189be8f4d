package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/noteshelf/internal/config"
	"github.com/marcus/noteshelf/internal/keymap"
	appmsg "github.com/marcus/noteshelf/internal/msg"
	"github.com/marcus/noteshelf/internal/plugin"
	"github.com/marcus/noteshelf/internal/styles"
	"github.com/marcus/noteshelf/internal/ui"
)

const themeToastDuration = 2 * time.Second

// Update handles all messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		// Plugins only see the content area.
		msg.Height = m.contentHeight()
		return m.forwardAll(msg)

	case TickMsg:
		m.clock = time.Time(msg)
		m.ClearToast()
		return m, tickCmd()

	case appmsg.ToastMsg:
		m.ShowToast(msg.Message, msg.Duration, msg.IsError)
		return m, nil

	case plugin.AuthExpiredMsg:
		// The session is gone; unsaved edits cannot be persisted anyway.
		m.logger.Error("app: store rejected credentials", "err", msg.Err)
		m.exitErr = fmt.Errorf("session expired, sign in again: %w", msg.Err)
		return m.finishQuit()

	case plugin.FlushedMsg:
		if !m.quitting || m.done {
			return m, nil
		}
		if msg.Err != nil {
			m.logger.Warn("app: unsaved changes lost on exit", "plugin", msg.PluginID, "err", msg.Err)
		}
		m.flushPending--
		if m.flushPending <= 0 {
			return m.finishQuit()
		}
		return m, nil

	case flushTimeoutMsg:
		if !m.quitting || m.done {
			return m, nil
		}
		m.logger.Warn("app: gave up waiting for plugins to flush", "pending", m.flushPending)
		return m.finishQuit()
	}

	return m.forwardAll(msg)
}

// forwardAll sends msg to every plugin so async results reach their owner
// even when another plugin is focused.
func (m Model) forwardAll(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	plugins := m.registry.Plugins()
	for i, p := range plugins {
		newPlugin, cmd := p.Update(msg)
		plugins[i] = newPlugin
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	m.updateContext()
	return m, tea.Batch(cmds...)
}

// forwardActive sends msg to the active plugin only.
func (m Model) forwardActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	p := m.ActivePlugin()
	if p == nil {
		return m, nil
	}
	newPlugin, cmd := p.Update(msg)
	plugins := m.registry.Plugins()
	if m.activePlugin < len(plugins) {
		plugins[m.activePlugin] = newPlugin
	}
	m.updateContext()
	return m, cmd
}

// handleKeyMsg processes keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.quitting {
		// A second ctrl+c abandons the flush.
		if key == "ctrl+c" && !m.done {
			m.logger.Warn("app: flush abandoned by user", "pending", m.flushPending)
			return m.finishQuit()
		}
		return m, nil
	}

	if m.quitConfirm != nil {
		return m.handleQuitConfirmKey(msg)
	}

	if m.showHelp {
		switch m.keymap.Resolve(keymap.ContextGlobal, key) {
		case "quit":
			m.showHelp = false
			m.openQuitConfirm()
		case "toggle-help":
			m.showHelp = false
		}
		if msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}

	// Text fields and half-typed sequences belong to the plugin; only
	// ctrl+c is intercepted.
	p := m.ActivePlugin()
	if consumesText(p) || m.keymap.Pending() {
		if key == "ctrl+c" {
			m.openQuitConfirm()
			return m, nil
		}
		return m.forwardActive(msg)
	}

	switch m.keymap.Resolve(keymap.ContextGlobal, key) {
	case "quit":
		m.openQuitConfirm()
		return m, nil
	case "toggle-help":
		m.showHelp = true
		return m, nil
	case "toggle-footer":
		m.showFooter = !m.showFooter
		return m, nil
	case "cycle-theme":
		return m, m.cycleTheme()
	case "refresh":
		if r, ok := p.(refresher); ok {
			return m, r.Refresh()
		}
		return m, nil
	}

	return m.forwardActive(msg)
}

func (m *Model) openQuitConfirm() {
	d := ui.NewConfirmDialog("Quit noteshelf?", "Unsaved edits are saved before exiting.")
	d.ConfirmLabel = " Quit "
	m.quitConfirm = d
	m.updateContext()
}

func (m Model) handleQuitConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var result ui.ConfirmResult
	switch m.keymap.Resolve(keymap.ContextQuitConfirm, msg.String()) {
	case "confirm":
		result = ui.ConfirmAccepted
	case "cancel":
		result = ui.ConfirmCancelled
	default:
		result = m.quitConfirm.HandleKey(msg)
	}

	switch result {
	case ui.ConfirmAccepted:
		return m.beginQuit()
	case ui.ConfirmCancelled:
		m.quitConfirm = nil
		m.updateContext()
	}
	return m, nil
}

// beginQuit asks every Flusher to persist its work and waits for their
// FlushedMsg, bounded by flushTimeout.
func (m Model) beginQuit() (tea.Model, tea.Cmd) {
	m.quitConfirm = nil
	m.quitting = true
	m.flushPending = 0

	var cmds []tea.Cmd
	for _, p := range m.registry.Plugins() {
		f, ok := p.(plugin.Flusher)
		if !ok {
			continue
		}
		cmd, pending := f.Flush()
		if pending {
			m.flushPending++
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if m.flushPending == 0 {
		return m.finishQuit()
	}

	m.logger.Debug("app: waiting for plugins to flush", "pending", m.flushPending)
	cmds = append(cmds, flushTimeoutCmd(m.flushTimeout))
	return m, tea.Batch(cmds...)
}

func (m Model) finishQuit() (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	m.quitting = true
	m.done = true
	m.registry.Stop()
	return m, tea.Quit
}

func (m *Model) cycleTheme() tea.Cmd {
	name := styles.NextTheme()
	styles.ApplyTheme(name)
	m.styleHelp()
	m.cfg.UI.Theme.Name = name
	if err := config.SaveTheme(name); err != nil {
		m.logger.Warn("app: save theme", "theme", name, "err", err)
		return appmsg.ShowError("Theme not saved: "+err.Error(), themeToastDuration)
	}
	return appmsg.ShowToast("Theme: "+name, themeToastDuration)
}

// handleMouseMsg forwards mouse events to the active plugin in content
// coordinates.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.quitting || m.quitConfirm != nil || m.showHelp {
		return m, nil
	}
	msg.Y -= headerHeight
	if msg.Y < 0 || msg.Y >= m.contentHeight() {
		return m, nil
	}
	return m.forwardActive(msg)
}
