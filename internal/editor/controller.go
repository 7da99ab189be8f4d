// Package editor keeps one note's in-progress edits synchronized with a
// note.Store. All state is owned by the bubbletea update loop; store calls
// run as tea.Cmds and report back as SaveResultMsg.
package editor

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/noteshelf/internal/note"
)

// SaveListener is told about every successful save, including saves that
// complete after their session has closed.
type SaveListener interface {
	NoteSaved(n note.Note, created bool)
}

// Options configure a Controller.
type Options struct {
	Store            note.Store
	Listener         SaveListener
	Logger           *slog.Logger
	Debounce         time.Duration
	RequestTimeout   time.Duration
	PlaceholderTitle string
	Tick             TickFunc
}

// Controller runs the editor session state machine. At most one session
// exists at a time.
type Controller struct {
	opts       Options
	categories []note.Category
	nextID     uint64
	cur        *session
}

// New returns a Controller with defaults filled in.
func New(opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.PlaceholderTitle == "" {
		opts.PlaceholderTitle = note.DefaultTitle
	}
	if opts.Tick == nil {
		opts.Tick = tea.Tick
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{opts: opts}
}

// SetCategories replaces the known category table used for new notes.
func (c *Controller) SetCategories(cats []note.Category) {
	c.categories = append([]note.Category(nil), cats...)
	note.SortCategories(c.categories)
}

// Categories returns the known categories in display order.
func (c *Controller) Categories() []note.Category { return c.categories }

// Open starts a session. A nil note opens an empty buffer for a new note.
func (c *Controller) Open(existing *note.Note) error {
	if c.cur != nil {
		return ErrSessionActive
	}
	var (
		buf *Buffer
		err error
	)
	if existing != nil {
		buf = NewBuffer(*existing)
	} else {
		buf, err = NewEmptyBuffer(c.categories, c.opts.PlaceholderTitle)
		if err != nil {
			return err
		}
	}
	c.nextID++
	c.cur = &session{
		id:          c.nextID,
		state:       StateOpen,
		buf:         buf,
		sched:       newScheduler(c.nextID, c.opts),
		lastSavedAt: buf.LastEditedAt(),
	}
	c.opts.Logger.Debug("editor: open", "session", c.nextID, "id", buf.ID())
	return nil
}

// State returns the current session state.
func (c *Controller) State() State {
	if c.cur == nil {
		return StateClosed
	}
	return c.cur.state
}

// IsOpen reports whether a session exists (Open or Closing).
func (c *Controller) IsOpen() bool { return c.cur != nil }

// SessionID returns the live session's ID, or 0.
func (c *Controller) SessionID() uint64 {
	if c.cur == nil {
		return 0
	}
	return c.cur.id
}

// Fields returns the buffer's current values.
func (c *Controller) Fields() Fields {
	if c.cur == nil {
		return Fields{}
	}
	return c.cur.buf.Fields()
}

// NoteID returns the buffer's note ID, empty for an uncreated note.
func (c *Controller) NoteID() string {
	if c.cur == nil {
		return ""
	}
	return c.cur.buf.ID()
}

// Saving reports whether a save request is in flight.
func (c *Controller) Saving() bool {
	return c.cur != nil && c.cur.sched.InFlight()
}

// Pending reports whether a debounced save is waiting to fire.
func (c *Controller) Pending() bool {
	return c.cur != nil && c.cur.sched.Pending()
}

// Dirty reports whether the buffer has unsaved changes.
func (c *Controller) Dirty() bool {
	return c.cur != nil && c.cur.buf.Dirty()
}

// LastSavedAt returns the last confirmed edit time of the open note.
func (c *Controller) LastSavedAt() time.Time {
	if c.cur == nil {
		return time.Time{}
	}
	return c.cur.lastSavedAt
}

// Err returns the most recent save error, cleared by the next success.
func (c *Controller) Err() error {
	if c.cur == nil {
		return nil
	}
	return c.cur.err
}

// FieldError returns the validation message attached to field.
func (c *Controller) FieldError(field string) string {
	if c.cur == nil {
		return ""
	}
	return c.cur.fieldErrs[field]
}

// SetTitle edits the title.
func (c *Controller) SetTitle(title string) tea.Cmd {
	s := c.editable()
	if s == nil || !s.buf.SetTitle(title) {
		return nil
	}
	return s.sched.Touch(s.buf, Debounced)
}

// SetContent edits the content.
func (c *Controller) SetContent(content string) tea.Cmd {
	s := c.editable()
	if s == nil || !s.buf.SetContent(content) {
		return nil
	}
	return s.sched.Touch(s.buf, Debounced)
}

// SetCategory moves the note to another category and saves immediately.
func (c *Controller) SetCategory(id string) tea.Cmd {
	s := c.editable()
	if s == nil || !s.buf.SetCategory(id) {
		return nil
	}
	return s.sched.Touch(s.buf, Immediate)
}

func (c *Controller) editable() *session {
	if c.cur == nil || c.cur.state != StateOpen {
		return nil
	}
	return c.cur
}

// Close asks the session to close. Pending debounced edits are flushed
// first; ClosedMsg follows once nothing is left to persist. A teardown
// request upgrades a close that is already in progress.
func (c *Controller) Close(reason CloseReason) tea.Cmd {
	s := c.cur
	if s == nil {
		return nil
	}
	if s.state == StateClosing {
		if reason == CloseTeardown {
			s.reason = reason
		}
		return nil
	}
	s.state = StateClosing
	s.reason = reason
	s.finalIssued = false
	s.sched.Cancel()
	c.opts.Logger.Debug("editor: closing", "session", s.id, "reason", reason, "dirty", s.buf.Dirty())
	return c.advanceClose(s)
}

// advanceClose moves a closing session forward: wait for the in-flight
// request, then one final save if still dirty, then Closed.
func (c *Controller) advanceClose(s *session) tea.Cmd {
	if s.sched.InFlight() {
		return nil
	}
	if s.buf.Dirty() && !s.finalIssued {
		s.finalIssued = true
		return s.sched.Flush(s.buf)
	}
	return c.finish(s, nil)
}

func (c *Controller) finish(s *session, err error) tea.Cmd {
	s.state = StateClosed
	if c.cur == s {
		c.cur = nil
	}
	if err != nil {
		c.opts.Logger.Warn("editor: closed with unsaved changes", "session", s.id, "id", s.buf.ID(), "err", err)
	} else {
		c.opts.Logger.Debug("editor: closed", "session", s.id, "id", s.buf.ID())
	}
	closed := ClosedMsg{Session: s.id, NoteID: s.buf.ID(), Reason: s.reason, Err: err}
	return func() tea.Msg { return closed }
}

// Update routes editor messages. Unrelated messages return nil.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case debounceFiredMsg:
		s := c.editable()
		if s == nil || s.id != m.session {
			return nil
		}
		return s.sched.Fire(s.buf, m.gen)
	case SaveResultMsg:
		return c.handleResult(m)
	}
	return nil
}

func (c *Controller) handleResult(m SaveResultMsg) tea.Cmd {
	if m.Err == nil && m.Note != nil && c.opts.Listener != nil {
		c.opts.Listener.NoteSaved(*m.Note, m.Created)
	}

	s := c.cur
	if s == nil || s.id != m.Session {
		c.opts.Logger.Debug("editor: result for finished session", "session", m.Session, "err", m.Err)
		return nil
	}

	closing := s.state == StateClosing
	wasFinal := closing && s.finalIssued
	next := s.sched.Complete(s.buf, m, !closing)

	if m.Err == nil {
		s.clearErr()
		s.lastSavedAt = s.buf.LastEditedAt()
		if closing {
			return c.advanceClose(s)
		}
		return next
	}

	kind := note.KindOf(m.Err)
	field := note.FieldOf(m.Err)
	s.setErr(m.Err, field)
	c.opts.Logger.Error("editor: save failed", "session", s.id, "id", s.buf.ID(), "kind", kind, "err", m.Err)
	failed := SaveFailedMsg{Session: s.id, Kind: kind, Field: field, Closing: closing, Err: m.Err}
	report := func() tea.Msg { return failed }

	switch {
	case kind == note.KindAuth:
		return tea.Batch(report, c.finish(s, m.Err))
	case !closing:
		return tea.Batch(report, next)
	case wasFinal && s.reason == CloseTeardown:
		return tea.Batch(report, c.finish(s, m.Err))
	case wasFinal:
		// Keep the edits: back to Open with the error shown.
		s.state = StateOpen
		s.finalIssued = false
		return report
	default:
		// The request that was in flight when close began failed; the
		// final save retries it.
		return tea.Batch(report, c.advanceClose(s))
	}
}
