package editor

import (
	"github.com/marcus/noteshelf/internal/note"
)

// debounceFiredMsg is delivered when an armed timer slot elapses.
type debounceFiredMsg struct {
	session uint64
	gen     uint64
}

// SaveResultMsg reports the outcome of one store request.
type SaveResultMsg struct {
	Session uint64
	Seq     uint64
	Sent    Fields
	Created bool
	Note    *note.Note
	Err     error
}

// SaveFailedMsg is emitted after a save error has been recorded so the
// shell can route it (toast, inline field error, sign-in redirect).
type SaveFailedMsg struct {
	Session uint64
	Kind    note.Kind
	Field   string
	Closing bool
	Err     error
}

// ClosedMsg is emitted once a session has reached Closed.
type ClosedMsg struct {
	Session uint64
	NoteID  string
	Reason  CloseReason
	Err     error
}
