package editor

import (
	"errors"
	"time"
)

// ErrSessionActive is returned when opening while another session is live.
var ErrSessionActive = errors.New("an editor session is already active")

// State is the lifecycle state of an editor session.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// CloseReason records what asked the session to close.
type CloseReason int

const (
	CloseExplicit CloseReason = iota
	CloseBackdrop
	CloseEscape
	CloseTeardown
)

func (r CloseReason) String() string {
	switch r {
	case CloseBackdrop:
		return "backdrop"
	case CloseEscape:
		return "escape"
	case CloseTeardown:
		return "teardown"
	default:
		return "explicit"
	}
}

// session is one open editor: a buffer, its scheduler and close progress.
type session struct {
	id    uint64
	state State
	buf   *Buffer
	sched *Scheduler

	reason      CloseReason
	finalIssued bool

	err         error
	fieldErrs   map[string]string
	lastSavedAt time.Time
}

func (s *session) setErr(err error, field string) {
	s.err = err
	s.fieldErrs = nil
	if field != "" {
		s.fieldErrs = map[string]string{field: err.Error()}
	}
}

func (s *session) clearErr() {
	s.err = nil
	s.fieldErrs = nil
}
