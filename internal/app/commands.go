package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Message types for tea.Cmd
type (
	// TickMsg is sent on each clock tick.
	TickMsg time.Time

	// flushTimeoutMsg ends a teardown that is taking too long.
	flushTimeoutMsg struct{}
)

// tickCmd returns a command that ticks every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func flushTimeoutCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return flushTimeoutMsg{}
	})
}
