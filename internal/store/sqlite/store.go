// Package sqlite is the local note store. It works with either the cgo
// driver (mattn/go-sqlite3, "sqlite3") or the pure Go one
// (modernc.org/sqlite, "sqlite").
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/marcus/noteshelf/internal/note"
)

// Driver names accepted by Open.
const (
	DriverCGo    = "sqlite3"
	DriverPureGo = "sqlite"
)

// ActionType is the kind of change recorded in the change log.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
)

// Fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store handles SQLite operations for notes and categories.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ note.Store = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath and seeds the
// default categories into an empty database.
func Open(ctx context.Context, driver, dbPath string) (*Store, error) {
	dsn, err := dataSource(driver, dbPath)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if err := store.seedCategories(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return store, nil
}

func dataSource(driver, dbPath string) (string, error) {
	switch driver {
	case DriverCGo:
		return dbPath + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", nil
	case DriverPureGo:
		return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", nil
	default:
		return "", fmt.Errorf("unknown sqlite driver %q", driver)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    category_id TEXT NOT NULL REFERENCES categories(id),
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL,
    last_edited_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_edited ON notes(last_edited_at DESC);
CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category_id);
CREATE TABLE IF NOT EXISTS action_log (
    id TEXT PRIMARY KEY,
    action_type TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    previous_data TEXT,
    new_data TEXT,
    timestamp TEXT NOT NULL
);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) seedCategories(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := s.SeedCategories(ctx, note.DefaultCategories())
	return err
}

// SeedCategories inserts categories whose names are not present yet and
// returns how many were added.
func (s *Store) SeedCategories(ctx context.Context, cats []note.Category) (int, error) {
	added := 0
	for _, c := range cats {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO categories (id, name, color, sort_order) VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING
		`, id, c.Name, c.Color, c.SortOrder)
		if err != nil {
			return added, fmt.Errorf("insert category %q: %w", c.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

// ListCategories returns all categories ordered by sort order then name.
func (s *Store) ListCategories(ctx context.Context) ([]note.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color, sort_order FROM categories ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []note.Category
	for rows.Next() {
		var c note.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Store) categoryExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CreateNote inserts a new note and logs the action.
func (s *Store) CreateNote(ctx context.Context, in note.NewNote) (*note.Note, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ok, err := s.categoryExists(ctx, in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return nil, note.Invalid("category", "invalid pk %q - object does not exist", in.CategoryID)
	}

	now := s.now()
	n := &note.Note{
		ID:           uuid.NewString(),
		CategoryID:   in.CategoryID,
		Title:        in.Title,
		Content:      in.Content,
		CreatedAt:    now,
		LastEditedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notes (id, category_id, title, content, created_at, last_edited_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.CategoryID, n.Title, n.Content,
		n.CreatedAt.Format(timeLayout),
		n.LastEditedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	if err := s.logAction(ctx, ActionCreate, n.ID, nil, n); err != nil {
		return nil, fmt.Errorf("log action: %w", err)
	}
	return s.GetNote(ctx, n.ID)
}

// UpdateNote applies a partial update and logs the action. The edit
// timestamp always advances.
func (s *Store) UpdateNote(ctx context.Context, id string, patch note.Patch) (*note.Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	prev, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get previous state: %w", err)
	}
	if patch.CategoryID != nil {
		ok, err := s.categoryExists(ctx, *patch.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return nil, note.Invalid("category", "invalid pk %q - object does not exist", *patch.CategoryID)
		}
	}

	next := *prev
	patch.Apply(&next)
	next.LastEditedAt = s.now()
	if !next.LastEditedAt.After(prev.LastEditedAt) {
		next.LastEditedAt = prev.LastEditedAt.Add(time.Microsecond)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE notes SET category_id = ?, title = ?, content = ?, last_edited_at = ?
		WHERE id = ?
	`, next.CategoryID, next.Title, next.Content, next.LastEditedAt.Format(timeLayout), id)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}

	if err := s.logAction(ctx, ActionUpdate, id, prev, &next); err != nil {
		return nil, fmt.Errorf("log action: %w", err)
	}
	return s.GetNote(ctx, id)
}

const selectNotes = `
	SELECT n.id, n.category_id, c.name, c.color, n.title, n.content, n.created_at, n.last_edited_at
	FROM notes n JOIN categories c ON c.id = n.category_id`

// GetNote retrieves a note by ID.
func (s *Store) GetNote(ctx context.Context, id string) (*note.Note, error) {
	rows, err := s.db.QueryContext(ctx, selectNotes+` WHERE n.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query note: %w", err)
	}
	notes, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("note %s: %w", id, note.ErrNotFound)
	}
	return &notes[0], nil
}

// ListNotes returns summaries, most recently edited first with ID as the
// tie-break. An empty categoryID lists every note.
func (s *Store) ListNotes(ctx context.Context, categoryID string) ([]note.Summary, error) {
	query := selectNotes
	var args []any
	if categoryID != "" {
		query += ` WHERE n.category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY n.last_edited_at DESC, n.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	notes, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	out := make([]note.Summary, len(notes))
	for i, n := range notes {
		out[i] = n.Summary()
	}
	return out, nil
}

func scanNotes(rows *sql.Rows) ([]note.Note, error) {
	defer rows.Close()

	var notes []note.Note
	for rows.Next() {
		var n note.Note
		var createdAt, editedAt string
		err := rows.Scan(&n.ID, &n.CategoryID, &n.CategoryName, &n.CategoryColor,
			&n.Title, &n.Content, &createdAt, &editedAt)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		n.LastEditedAt, _ = time.Parse(timeLayout, editedAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Action is one change log entry.
type Action struct {
	ID        string
	Type      ActionType
	EntityID  string
	Timestamp time.Time
}

// Actions returns the change log, oldest first.
func (s *Store) Actions(ctx context.Context) ([]Action, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action_type, entity_id, timestamp FROM action_log ORDER BY timestamp, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query action log: %w", err)
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		var ts, typ string
		if err := rows.Scan(&a.ID, &typ, &a.EntityID, &ts); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Type = ActionType(typ)
		a.Timestamp, _ = time.Parse(timeLayout, ts)
		out = append(out, a)
	}
	return out, rows.Err()
}

// logAction writes an entry to the action_log table.
func (s *Store) logAction(ctx context.Context, actionType ActionType, entityID string, prev, next any) error {
	var prevData, newData sql.NullString

	if prev != nil {
		b, err := json.Marshal(prev)
		if err != nil {
			return fmt.Errorf("marshal previous data: %w", err)
		}
		prevData = sql.NullString{String: string(b), Valid: true}
	}
	if next != nil {
		b, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal new data: %w", err)
		}
		newData = sql.NullString{String: string(b), Valid: true}
	}

	actionID := "al-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_log (id, action_type, entity_type, entity_id, previous_data, new_data, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, actionID, string(actionType), "notes", entityID, prevData, newData, s.now().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return nil
}
