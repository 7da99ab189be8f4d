// Package note defines the note domain shared by the editor, the list view
// and every store backend.
package note

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"
)

// DefaultTitle is the title given to a note created without one.
const DefaultTitle = "Note Title:"

// MaxTitleLength is the longest title a store accepts, in runes.
const MaxTitleLength = 500

// Note is the canonical persisted form of a note. Stores own notes; the
// client only ever holds copies.
type Note struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"category"`
	CategoryName  string    `json:"category_name,omitempty"`
	CategoryColor string    `json:"category_color,omitempty"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	LastEditedAt  time.Time `json:"last_edited_at"`
}

// Summary is the list-view projection of a note.
type Summary struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"category"`
	CategoryName  string    `json:"category_name,omitempty"`
	CategoryColor string    `json:"category_color,omitempty"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	LastEditedAt  time.Time `json:"last_edited_at"`
}

// Summary projects the note for list display.
func (n Note) Summary() Summary {
	return Summary{
		ID:            n.ID,
		CategoryID:    n.CategoryID,
		CategoryName:  n.CategoryName,
		CategoryColor: n.CategoryColor,
		Title:         n.Title,
		Content:       n.Content,
		CreatedAt:     n.CreatedAt,
		LastEditedAt:  n.LastEditedAt,
	}
}

// Category groups notes under a display name and color.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

// SortCategories orders categories by sort position, then name.
func SortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].SortOrder != cats[j].SortOrder {
			return cats[i].SortOrder < cats[j].SortOrder
		}
		return cats[i].Name < cats[j].Name
	})
}

// FindCategory returns the category with the given ID.
func FindCategory(cats []Category, id string) (Category, bool) {
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// DefaultCategories are seeded into empty stores.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Random Thoughts", Color: "#FFA07A", SortOrder: 1},
		{Name: "School", Color: "#87CEEB", SortOrder: 2},
		{Name: "Personal", Color: "#98FB98", SortOrder: 3},
	}
}

// NewNote is the input for creating a note.
type NewNote struct {
	CategoryID string `json:"category"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// Validate checks the fields every store requires on create.
func (in NewNote) Validate() error {
	if in.CategoryID == "" {
		return Invalid("category", "this field is required")
	}
	return validateTitle(in.Title)
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	CategoryID *string `json:"category,omitempty"`
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.CategoryID == nil && p.Title == nil && p.Content == nil
}

// Validate checks the fields present in the patch.
func (p Patch) Validate() error {
	if p.CategoryID != nil && *p.CategoryID == "" {
		return Invalid("category", "this field may not be blank")
	}
	if p.Title != nil {
		return validateTitle(*p.Title)
	}
	return nil
}

func validateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return Invalid("title", "ensure this field has no more than %d characters (it has %d)", MaxTitleLength, n)
	}
	return nil
}

// Apply writes the patch fields onto n.
func (p Patch) Apply(n *Note) {
	if p.CategoryID != nil {
		n.CategoryID = *p.CategoryID
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
}

// Store is the remote note store the editor synchronizes with.
type Store interface {
	// CreateNote persists a new note and returns it with its server-assigned
	// ID and timestamps.
	CreateNote(ctx context.Context, in NewNote) (*Note, error)
	// UpdateNote applies a partial update and returns the canonical note.
	UpdateNote(ctx context.Context, id string, patch Patch) (*Note, error)
	// ListNotes returns summaries, most recently edited first. An empty
	// categoryID lists every note.
	ListNotes(ctx context.Context, categoryID string) ([]Summary, error)
	// GetNote returns the full detail of one note.
	GetNote(ctx context.Context, id string) (*Note, error)
	// ListCategories returns all categories in display order.
	ListCategories(ctx context.Context) ([]Category, error)
}
