package notes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/noteshelf/internal/config"
	"github.com/marcus/noteshelf/internal/msg"
	"github.com/marcus/noteshelf/internal/note"
	"github.com/marcus/noteshelf/internal/plugin"
	"github.com/marcus/noteshelf/internal/state"
)

var testBase = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu      sync.Mutex
	notes   map[string]*note.Note
	creates []note.NewNote
	updates []note.Patch
	lists   []string
	errs    []error
	clock   int
}

func newFakeStore(existing ...note.Note) *fakeStore {
	fs := &fakeStore{notes: make(map[string]*note.Note)}
	for i := range existing {
		n := existing[i]
		fs.notes[n.ID] = &n
	}
	return fs
}

func (f *fakeStore) failNext(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, errs...)
}

func (f *fakeStore) popErr() error {
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeStore) stamp() time.Time {
	f.clock++
	return testBase.Add(time.Duration(f.clock) * time.Minute)
}

func (f *fakeStore) CreateNote(_ context.Context, in note.NewNote) (*note.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in)
	if err := f.popErr(); err != nil {
		return nil, err
	}
	now := f.stamp()
	n := &note.Note{
		ID:           fmt.Sprintf("new-%d", len(f.creates)),
		CategoryID:   in.CategoryID,
		Title:        in.Title,
		Content:      in.Content,
		CreatedAt:    now,
		LastEditedAt: now,
	}
	f.notes[n.ID] = n
	out := *n
	return &out, nil
}

func (f *fakeStore) UpdateNote(_ context.Context, id string, patch note.Patch) (*note.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, patch)
	if err := f.popErr(); err != nil {
		return nil, err
	}
	n, ok := f.notes[id]
	if !ok {
		return nil, note.ErrNotFound
	}
	patch.Apply(n)
	n.LastEditedAt = f.stamp()
	out := *n
	return &out, nil
}

func (f *fakeStore) ListNotes(_ context.Context, categoryID string) ([]note.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, categoryID)
	var out []note.Summary
	for _, n := range f.notes {
		if categoryID == "" || n.CategoryID == categoryID {
			out = append(out, n.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastEditedAt.Equal(out[j].LastEditedAt) {
			return out[i].LastEditedAt.After(out[j].LastEditedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) GetNote(_ context.Context, id string) (*note.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, note.ErrNotFound
	}
	out := *n
	return &out, nil
}

func (f *fakeStore) ListCategories(context.Context) ([]note.Category, error) {
	return testCategories(), nil
}

func (f *fakeStore) lastUpdate() note.Patch {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return note.Patch{}
	}
	return f.updates[len(f.updates)-1]
}

func testCategories() []note.Category {
	return []note.Category{
		{ID: "c2", Name: "School", Color: "#87CEEB", SortOrder: 2},
		{ID: "c1", Name: "Random Thoughts", Color: "#FFA07A", SortOrder: 1},
		{ID: "c3", Name: "Personal", Color: "#98FB98", SortOrder: 3},
	}
}

func seedNotes() []note.Note {
	return []note.Note{
		{ID: "a", CategoryID: "c1", Title: "Older", Content: "first", CreatedAt: testBase, LastEditedAt: testBase},
		{ID: "b", CategoryID: "c2", Title: "Newer", Content: "# Homework\n\n- math", CreatedAt: testBase, LastEditedAt: testBase.Add(30 * time.Second)},
	}
}

// immediateTick delivers the debounce message as soon as the command runs.
func immediateTick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(testBase) }
}

func newTestPlugin(t *testing.T, fs *fakeStore) *Plugin {
	t.Helper()
	if err := state.InitWithDir(t.TempDir()); err != nil {
		t.Fatalf("state: %v", err)
	}
	cfg := config.Default()
	cfg.Watch.Enabled = false

	p := New()
	p.tick = immediateTick
	p.now = func() time.Time { return testBase.Add(2 * time.Hour) }
	if err := p.Init(&plugin.Context{Config: cfg, Store: fs}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p.titleInput.Cursor.SetMode(cursor.CursorStatic)
	p.contentArea.Cursor.SetMode(cursor.CursorStatic)

	settle(p, p.Start())
	p.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return p
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(p *Plugin, m tea.Msg) tea.Cmd {
	_, cmd := p.Update(m)
	return cmd
}

// press sends each key and settles only the commands of the last one, so
// superseded debounce timers never fire.
func press(p *Plugin, keys ...string) []tea.Msg {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = send(p, keyMsg(k))
	}
	return settle(p, cmd)
}

// pressUnsettled sends keys without running any resulting command.
func pressUnsettled(p *Plugin, keys ...string) {
	for _, k := range keys {
		send(p, keyMsg(k))
	}
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	m := cmd()
	if batch, ok := m.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if m == nil {
		return nil
	}
	return []tea.Msg{m}
}

// settle runs cmd to quiescence, feeding every message back into the
// plugin. Messages addressed to the app are returned.
func settle(p *Plugin, cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := drain(cmd)
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		switch m.(type) {
		case spinner.TickMsg:
		case msg.ToastMsg, plugin.AuthExpiredMsg, plugin.FlushedMsg:
			out = append(out, m)
		default:
			out = append(out, m)
			queue = append(queue, drain(send(p, m))...)
		}
	}
	return out
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
