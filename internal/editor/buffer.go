package editor

import (
	"time"

	"github.com/marcus/noteshelf/internal/note"
)

// Fields are the editable fields of a note.
type Fields struct {
	CategoryID string
	Title      string
	Content    string
}

// Buffer holds the in-progress state of the one note being edited.
// It never talks to the store; the Scheduler decides when it is flushed.
type Buffer struct {
	id           string
	fields       Fields
	saved        Fields // values carried by the last successful save
	lastEditedAt time.Time
}

// NewBuffer mirrors an existing note.
func NewBuffer(n note.Note) *Buffer {
	f := Fields{CategoryID: n.CategoryID, Title: n.Title, Content: n.Content}
	return &Buffer{
		id:           n.ID,
		fields:       f,
		saved:        f,
		lastEditedAt: n.LastEditedAt,
	}
}

// NewEmptyBuffer starts a not-yet-created note in the first category.
func NewEmptyBuffer(categories []note.Category, placeholder string) (*Buffer, error) {
	if len(categories) == 0 {
		return nil, note.Invalid("category", "no categories available")
	}
	cats := append([]note.Category(nil), categories...)
	note.SortCategories(cats)
	if placeholder == "" {
		placeholder = note.DefaultTitle
	}
	f := Fields{CategoryID: cats[0].ID, Title: placeholder}
	return &Buffer{fields: f, saved: f}, nil
}

// ID returns the note ID, empty until the first create succeeds.
func (b *Buffer) ID() string { return b.id }

// IsNew reports whether the note has not been created yet.
func (b *Buffer) IsNew() bool { return b.id == "" }

// Fields returns the current field values.
func (b *Buffer) Fields() Fields { return b.fields }

// LastEditedAt returns the last server-confirmed edit time.
func (b *Buffer) LastEditedAt() time.Time { return b.lastEditedAt }

// Dirty reports whether any field differs from the last saved values.
func (b *Buffer) Dirty() bool { return b.fields != b.saved }

// SetTitle records a new title. Returns false if nothing changed.
func (b *Buffer) SetTitle(title string) bool {
	if b.fields.Title == title {
		return false
	}
	b.fields.Title = title
	return true
}

// SetContent records new content. Returns false if nothing changed.
func (b *Buffer) SetContent(content string) bool {
	if b.fields.Content == content {
		return false
	}
	b.fields.Content = content
	return true
}

// SetCategory records a new category. Returns false if nothing changed.
func (b *Buffer) SetCategory(id string) bool {
	if b.fields.CategoryID == id {
		return false
	}
	b.fields.CategoryID = id
	return true
}

// patch returns the fields that differ from the last saved values.
func (b *Buffer) patch() note.Patch {
	var p note.Patch
	if b.fields.CategoryID != b.saved.CategoryID {
		v := b.fields.CategoryID
		p.CategoryID = &v
	}
	if b.fields.Title != b.saved.Title {
		v := b.fields.Title
		p.Title = &v
	}
	if b.fields.Content != b.saved.Content {
		v := b.fields.Content
		p.Content = &v
	}
	return p
}

// markSaved records a successful round-trip that carried sent. Only the ID
// and timestamp are taken from the response; field values stay local.
func (b *Buffer) markSaved(sent Fields, resp *note.Note) {
	b.saved = sent
	if resp == nil {
		return
	}
	if b.id == "" && resp.ID != "" {
		b.id = resp.ID
	}
	// Responses can land out of order; the timestamp never moves back.
	if resp.LastEditedAt.After(b.lastEditedAt) {
		b.lastEditedAt = resp.LastEditedAt
	}
}
