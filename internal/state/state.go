package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// DefaultListWidth is the list pane width used when none is saved.
const DefaultListWidth = 40

// State holds persistent user preferences.
type State struct {
	// CategoryFilter is the last category the list was filtered by ("" = all).
	CategoryFilter string `json:"categoryFilter,omitempty"`
	// SelectedNote is the ID of the note under the cursor on exit.
	SelectedNote string `json:"selectedNote,omitempty"`
	// ListWidth is the list pane width in columns.
	ListWidth int `json:"listWidth,omitempty"`
}

var (
	current *State
	mu      sync.RWMutex
	path    string
)

// Init loads state from the default location.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitWithDir(filepath.Join(home, ".config", "noteshelf"))
}

// InitWithDir loads state from a specified directory.
// This is primarily for testing to avoid reading real user state.
func InitWithDir(dir string) error {
	path = filepath.Join(dir, "state.json")
	return Load()
}

// Load reads state from disk.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	current = &State{ListWidth: DefaultListWidth}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, current)
}

// Save writes state to disk.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil || path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func update(fn func(s *State)) error {
	mu.Lock()
	if current == nil {
		current = &State{ListWidth: DefaultListWidth}
	}
	fn(current)
	mu.Unlock()
	return Save()
}

// GetCategoryFilter returns the saved category filter.
func GetCategoryFilter() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.CategoryFilter
}

// SetCategoryFilter saves the category filter.
func SetCategoryFilter(id string) error {
	return update(func(s *State) { s.CategoryFilter = id })
}

// GetSelectedNote returns the saved cursor note ID.
func GetSelectedNote() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.SelectedNote
}

// SetSelectedNote saves the cursor note ID.
func SetSelectedNote(id string) error {
	return update(func(s *State) { s.SelectedNote = id })
}

// GetListWidth returns the saved list pane width.
// Returns DefaultListWidth if no preference is saved.
func GetListWidth() int {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil || current.ListWidth <= 0 {
		return DefaultListWidth
	}
	return current.ListWidth
}

// SetListWidth saves the list pane width.
func SetListWidth(width int) error {
	return update(func(s *State) { s.ListWidth = width })
}
