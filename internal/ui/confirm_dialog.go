package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/noteshelf/internal/styles"
)

// ModalWidthMedium is the default width for small dialogs.
const ModalWidthMedium = 50

// ConfirmResult is the outcome of a key press on a ConfirmDialog.
type ConfirmResult int

const (
	ConfirmPending ConfirmResult = iota
	ConfirmAccepted
	ConfirmCancelled
)

// ConfirmDialog is a two-button confirmation modal.
type ConfirmDialog struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Width        int
	Focus        int // 0=confirm, 1=cancel
}

// NewConfirmDialog creates a dialog with sensible defaults.
func NewConfirmDialog(title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		Title:        title,
		Message:      message,
		ConfirmLabel: " Confirm ",
		CancelLabel:  " Cancel ",
		Width:        ModalWidthMedium,
	}
}

// HandleKey applies a key press. y/n answer directly; tab and arrows move
// focus; enter picks the focused button; esc cancels.
func (d *ConfirmDialog) HandleKey(msg tea.KeyMsg) ConfirmResult {
	switch msg.String() {
	case "y", "Y":
		return ConfirmAccepted
	case "n", "N", "esc":
		return ConfirmCancelled
	case "tab", "shift+tab", "left", "right", "h", "l":
		d.Focus = 1 - d.Focus
	case "enter":
		if d.Focus == 0 {
			return ConfirmAccepted
		}
		return ConfirmCancelled
	}
	return ConfirmPending
}

// View renders the dialog box.
func (d *ConfirmDialog) View() string {
	confirm, cancel := styles.Button, styles.Button
	if d.Focus == 0 {
		confirm = styles.ButtonFocus
	} else {
		cancel = styles.ButtonFocus
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		confirm.Render(d.ConfirmLabel), "  ", cancel.Render(d.CancelLabel))

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitle.Render(d.Title),
		styles.Body.Render(d.Message),
		"",
		buttons,
	)
	return styles.ModalBox.Width(d.Width).Render(body)
}
