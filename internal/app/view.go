package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/noteshelf/internal/keymap"
	"github.com/marcus/noteshelf/internal/plugin"
	"github.com/marcus/noteshelf/internal/styles"
	"github.com/marcus/noteshelf/internal/ui"
)

const (
	headerHeight = 2 // header line + spacing
	footerHeight = 1
	minWidth     = 60
	minHeight    = 16
)

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show warning if terminal is too small
	if m.width < minWidth || m.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.ErrText.Render(msg))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderContent(m.width, m.contentHeight()))
	if m.showFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	bg := b.String()
	switch {
	case m.quitting:
		modal := styles.ModalBox.Render(styles.Saving.Render("Saving changes..."))
		return ui.OverlayModal(bg, modal, m.width, m.height)
	case m.quitConfirm != nil:
		return ui.OverlayModal(bg, m.quitConfirm.View(), m.width, m.height)
	case m.showHelp:
		return ui.OverlayModal(bg, m.renderHelp(), m.width, m.height)
	}
	return bg
}

func (m Model) contentHeight() int {
	h := m.height - headerHeight
	if m.showFooter {
		h -= footerHeight
	}
	return max(h, 0)
}

func (m Model) renderHeader() string {
	title := styles.Title.Render(" noteshelf")
	if p := m.ActivePlugin(); p != nil {
		title += styles.Subtitle.Render(" / " + p.Name())
	}
	clock := styles.Muted.Render(m.clock.Format("15:04") + " ")
	spacing := max(m.width-lipgloss.Width(title)-lipgloss.Width(clock), 0)
	return styles.Header.Width(m.width).MaxWidth(m.width).Render(title + strings.Repeat(" ", spacing) + clock)
}

// renderContent renders the main content area.
func (m Model) renderContent(width, height int) string {
	if height == 0 {
		return ""
	}
	p := m.ActivePlugin()
	if p == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.Muted.Render("No plugins loaded"))
	}
	// MaxHeight truncates plugin output that would push the header off-screen.
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(p.View(width, height))
}

// renderFooter renders the bottom bar with key hints and the toast.
func (m Model) renderFooter() string {
	var status string
	if m.statusMsg != "" {
		toastStyle := styles.ToastSuccess
		if m.statusIsError {
			toastStyle = styles.ToastError
		}
		status = toastStyle.Render(m.statusMsg)
	}

	h := m.help
	h.Width = max(m.width-lipgloss.Width(status)-2, 0)
	hints := h.ShortHelpView(m.footerBindings())

	spacing := max(m.width-lipgloss.Width(hints)-lipgloss.Width(status), 0)
	footer := hints + strings.Repeat(" ", spacing) + status
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(footer)
}

// footerBindings lists the active plugin's commands, most important first,
// followed by the essential global ones.
func (m Model) footerBindings() []key.Binding {
	var out []key.Binding
	if p := m.ActivePlugin(); p != nil {
		out = m.pluginBindings(p)
	}
	return append(out,
		m.keymap.HelpBinding(keymap.ContextGlobal, "toggle-help", "help"),
		m.keymap.HelpBinding(keymap.ContextGlobal, "quit", "quit"),
	)
}

func (m Model) pluginBindings(p plugin.Plugin) []key.Binding {
	cmds := p.Commands()
	sort.SliceStable(cmds, func(i, j int) bool {
		return priority(cmds[i]) < priority(cmds[j])
	})
	out := make([]key.Binding, 0, len(cmds))
	for _, c := range cmds {
		b := m.keymap.HelpBinding(c.Context, c.ID, c.Name)
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

func priority(c plugin.Command) int {
	if c.Priority == 0 {
		return 99
	}
	return c.Priority
}

// renderHelp renders the help modal: plugin commands by category, then the
// global bindings.
func (m Model) renderHelp() string {
	var columns [][]key.Binding
	if p := m.ActivePlugin(); p != nil {
		byCat := make(map[plugin.Category][]key.Binding)
		var order []plugin.Category
		for _, c := range p.Commands() {
			b := m.keymap.HelpBinding(c.Context, c.ID, c.Description)
			if !b.Enabled() {
				continue
			}
			if _, ok := byCat[c.Category]; !ok {
				order = append(order, c.Category)
			}
			byCat[c.Category] = append(byCat[c.Category], b)
		}
		for _, cat := range order {
			columns = append(columns, byCat[cat])
		}
	}
	columns = append(columns, []key.Binding{
		m.keymap.HelpBinding(keymap.ContextGlobal, "refresh", "Reload notes"),
		m.keymap.HelpBinding(keymap.ContextGlobal, "cycle-theme", "Next theme"),
		m.keymap.HelpBinding(keymap.ContextGlobal, "toggle-footer", "Toggle footer"),
		m.keymap.HelpBinding(keymap.ContextGlobal, "toggle-help", "Close help"),
		m.keymap.HelpBinding(keymap.ContextGlobal, "quit", "Quit"),
	})

	h := m.help
	h.Width = max(m.width-8, 20)
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitle.Render("Keyboard Shortcuts"),
		"",
		h.FullHelpView(columns),
		"",
		styles.Subtle.Render("Press ? or esc to close"),
	)
	return styles.ModalBox.Render(body)
}
