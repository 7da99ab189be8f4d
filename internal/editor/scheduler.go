package editor

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/noteshelf/internal/note"
)

// Default timings.
const (
	DefaultDebounce       = time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// ChangeClass selects how a field mutation is persisted.
type ChangeClass int

const (
	// Debounced changes (title, content) wait for a quiet window.
	Debounced ChangeClass = iota
	// Immediate changes (category) save right away.
	Immediate
)

// Scheduler decides when a buffer is persisted. It owns one timer slot and
// allows a single request in flight; a save asked for while one is running
// is remembered and issued on completion with the then-current values.
type Scheduler struct {
	store   note.Store
	delay   time.Duration
	timeout time.Duration
	tick    TickFunc
	logger  *slog.Logger

	session  uint64
	timer    timerSlot
	seq      uint64
	inFlight bool
	rerun    bool
}

func newScheduler(session uint64, opts Options) *Scheduler {
	return &Scheduler{
		store:   opts.Store,
		delay:   opts.Debounce,
		timeout: opts.RequestTimeout,
		tick:    opts.Tick,
		logger:  opts.Logger,
		session: session,
	}
}

// Touch reacts to a field mutation of the given class.
func (s *Scheduler) Touch(b *Buffer, class ChangeClass) tea.Cmd {
	if class == Immediate {
		s.timer.cancel()
		return s.Flush(b)
	}
	gen := s.timer.arm()
	session := s.session
	return s.tick(s.delay, func(time.Time) tea.Msg {
		return debounceFiredMsg{session: session, gen: gen}
	})
}

// Fire handles a timer slot firing. Superseded generations are ignored.
func (s *Scheduler) Fire(b *Buffer, gen uint64) tea.Cmd {
	if !s.timer.fire(gen) {
		return nil
	}
	return s.Flush(b)
}

// Cancel disarms the timer slot.
func (s *Scheduler) Cancel() { s.timer.cancel() }

// Pending reports whether a debounced save is waiting on the timer.
func (s *Scheduler) Pending() bool { return s.timer.armed }

// InFlight reports whether a request is outstanding.
func (s *Scheduler) InFlight() bool { return s.inFlight }

// Flush saves the buffer now if it is dirty. While a request is in flight
// the save is deferred until that request completes; dirty is judged then,
// against the snapshot the response leaves behind.
func (s *Scheduler) Flush(b *Buffer) tea.Cmd {
	if s.inFlight {
		s.rerun = true
		return nil
	}
	if !b.Dirty() {
		return nil
	}
	return s.issue(b)
}

func (s *Scheduler) issue(b *Buffer) tea.Cmd {
	s.inFlight = true
	s.rerun = false
	s.seq++

	seq := s.seq
	session := s.session
	sent := b.Fields()
	store := s.store
	timeout := s.timeout

	if b.IsNew() {
		s.logger.Debug("editor: create", "session", session, "seq", seq, "category", sent.CategoryID)
		in := note.NewNote{CategoryID: sent.CategoryID, Title: sent.Title, Content: sent.Content}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			n, err := store.CreateNote(ctx, in)
			return SaveResultMsg{Session: session, Seq: seq, Sent: sent, Created: true, Note: n, Err: err}
		}
	}

	id := b.ID()
	patch := b.patch()
	s.logger.Debug("editor: update", "session", session, "seq", seq, "id", id)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := store.UpdateNote(ctx, id, patch)
		return SaveResultMsg{Session: session, Seq: seq, Sent: sent, Note: n, Err: err}
	}
}

// Complete records the outcome of the in-flight request. When allowRerun is
// set and a save was deferred behind it, the deferred save is issued.
func (s *Scheduler) Complete(b *Buffer, m SaveResultMsg, allowRerun bool) tea.Cmd {
	if !s.inFlight || m.Seq != s.seq {
		return nil
	}
	s.inFlight = false
	if m.Err == nil {
		b.markSaved(m.Sent, m.Note)
	}
	rerun := s.rerun
	s.rerun = false
	if !rerun || !allowRerun || note.KindOf(m.Err) == note.KindAuth {
		return nil
	}
	return s.Flush(b)
}
