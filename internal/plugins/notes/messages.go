package notes

import "github.com/marcus/noteshelf/internal/note"

// CategoriesLoadedMsg carries the category table.
type CategoriesLoadedMsg struct {
	Categories []note.Category
	Err        error
	Epoch      uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m CategoriesLoadedMsg) GetEpoch() uint64 { return m.Epoch }

// NoteLoadedMsg carries the full note fetched before opening the editor.
type NoteLoadedMsg struct {
	ID    string
	Note  *note.Note
	Err   error
	Epoch uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m NoteLoadedMsg) GetEpoch() uint64 { return m.Epoch }
