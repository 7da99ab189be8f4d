// Package notelist keeps the summary list consistent with saves made by the
// editor and with filtered fetches from the store.
package notelist

import (
	"context"
	"log/slog"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/noteshelf/internal/note"
)

const defaultTimeout = 10 * time.Second

// FetchedMsg carries the result of a ListNotes call.
type FetchedMsg struct {
	Gen    uint64
	Filter string
	Items  []note.Summary
	Err    error
}

// Model is the reconciled summary list.
type Model struct {
	store      note.Store
	logger     *slog.Logger
	timeout    time.Duration
	categories []note.Category

	filter  string
	items   []note.Summary
	overlay map[string]note.Summary // notes saved this session
	gen     uint64
	loading bool
	err     error
}

// New returns an empty list bound to store.
func New(store note.Store, logger *slog.Logger, timeout time.Duration) *Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Model{
		store:   store,
		logger:  logger,
		timeout: timeout,
		overlay: make(map[string]note.Summary),
	}
}

// SetCategories sets the table used to fill in category name and color.
func (m *Model) SetCategories(cats []note.Category) {
	m.categories = append([]note.Category(nil), cats...)
	for i := range m.items {
		m.decorate(&m.items[i])
	}
}

// Items returns the current summaries.
func (m *Model) Items() []note.Summary { return m.items }

// Len returns the number of summaries.
func (m *Model) Len() int { return len(m.items) }

// Filter returns the active category filter, empty for all.
func (m *Model) Filter() string { return m.filter }

// Loading reports whether the latest fetch is outstanding.
func (m *Model) Loading() bool { return m.loading }

// Err returns the list-level fetch error.
func (m *Model) Err() error { return m.err }

// Index returns the position of id, or -1.
func (m *Model) Index(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

// SetFilter switches the category filter and fetches.
func (m *Model) SetFilter(categoryID string) tea.Cmd {
	m.filter = categoryID
	return m.Refresh()
}

// Refresh fetches the list for the active filter. Responses from earlier
// fetches are discarded when they land.
func (m *Model) Refresh() tea.Cmd {
	m.gen++
	m.loading = true
	gen, filter := m.gen, m.filter
	store, timeout := m.store, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := store.ListNotes(ctx, filter)
		return FetchedMsg{Gen: gen, Filter: filter, Items: items, Err: err}
	}
}

// Update applies list messages. It reports whether msg was consumed.
func (m *Model) Update(msg tea.Msg) bool {
	fm, ok := msg.(FetchedMsg)
	if !ok {
		return false
	}
	if fm.Gen != m.gen {
		m.logger.Debug("notelist: stale fetch discarded", "gen", fm.Gen, "current", m.gen)
		return true
	}
	m.loading = false
	if fm.Err != nil {
		m.err = fm.Err
		m.logger.Error("notelist: fetch failed", "filter", fm.Filter, "err", fm.Err)
		return true
	}
	m.err = nil
	m.items = m.merge(fm.Items)
	return true
}

// merge lays saved-this-session notes over a fetch result.
func (m *Model) merge(fetched []note.Summary) []note.Summary {
	items := make([]note.Summary, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for _, s := range fetched {
		if ov, ok := m.overlay[s.ID]; ok && ov.LastEditedAt.After(s.LastEditedAt) {
			s = ov
		}
		m.decorate(&s)
		seen[s.ID] = true
		items = append(items, s)
	}

	var missing []note.Summary
	for id, ov := range m.overlay {
		if !seen[id] && m.matches(ov.CategoryID) {
			missing = append(missing, ov)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if !missing[i].LastEditedAt.Equal(missing[j].LastEditedAt) {
			return missing[i].LastEditedAt.After(missing[j].LastEditedAt)
		}
		return missing[i].ID < missing[j].ID
	})
	return append(missing, items...)
}

// NoteSaved reconciles a successful save. An existing summary is updated
// in place; a created note is prepended when it matches the filter.
func (m *Model) NoteSaved(n note.Note, created bool) {
	s := n.Summary()
	m.decorate(&s)
	if prev, ok := m.overlay[s.ID]; !ok || !prev.LastEditedAt.After(s.LastEditedAt) {
		m.overlay[s.ID] = s
	}

	if i := m.Index(s.ID); i >= 0 {
		if m.items[i].LastEditedAt.After(s.LastEditedAt) {
			return
		}
		m.items[i] = s
		return
	}
	if created && m.matches(s.CategoryID) {
		m.items = append([]note.Summary{s}, m.items...)
	}
}

func (m *Model) matches(categoryID string) bool {
	return m.filter == "" || m.filter == categoryID
}

func (m *Model) decorate(s *note.Summary) {
	if s.CategoryName != "" && s.CategoryColor != "" {
		return
	}
	if c, ok := note.FindCategory(m.categories, s.CategoryID); ok {
		if s.CategoryName == "" {
			s.CategoryName = c.Name
		}
		if s.CategoryColor == "" {
			s.CategoryColor = c.Color
		}
	}
}
