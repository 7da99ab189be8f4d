package editor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickFunc arms a one-shot timer that delivers fn's message after d.
// tea.Tick satisfies it; tests substitute a deterministic version.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// timerSlot is the scheduler's single pending-timer handle. Arming bumps
// the generation, so a fire from an older arm is ignored.
type timerSlot struct {
	gen   uint64
	armed bool
}

func (t *timerSlot) arm() uint64 {
	t.gen++
	t.armed = true
	return t.gen
}

func (t *timerSlot) cancel() {
	t.armed = false
}

// fire consumes the slot if gen is the current arm.
func (t *timerSlot) fire(gen uint64) bool {
	if !t.armed || gen != t.gen {
		return false
	}
	t.armed = false
	return true
}
