package editor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/noteshelf/internal/note"
)

var testBase = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type updateCall struct {
	id    string
	patch note.Patch
}

// fakeStore records calls and returns scripted errors.
type fakeStore struct {
	mu      sync.Mutex
	creates []note.NewNote
	updates []updateCall
	notes   map[string]*note.Note
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
	f.updates = append(f.updates, updateCall{id: id, patch: patch})
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

func (f *fakeStore) ListNotes(context.Context, string) ([]note.Summary, error) {
	return nil, nil
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

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.updates)
}

type savedEvent struct {
	note    note.Note
	created bool
}

type recordingListener struct {
	events []savedEvent
}

func (l *recordingListener) NoteSaved(n note.Note, created bool) {
	l.events = append(l.events, savedEvent{note: n, created: created})
}

func testCategories() []note.Category {
	return []note.Category{
		{ID: "c2", Name: "School", Color: "#87CEEB", SortOrder: 2},
		{ID: "c1", Name: "Random Thoughts", Color: "#FFA07A", SortOrder: 1},
		{ID: "c3", Name: "Personal", Color: "#98FB98", SortOrder: 3},
	}
}

// immediateTick delivers the timer message as soon as the command runs;
// tests decide when to feed it back, which stands in for time passing.
func immediateTick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(testBase) }
}

func newTestController(t *testing.T, fs *fakeStore) (*Controller, *recordingListener) {
	t.Helper()
	l := &recordingListener{}
	c := New(Options{Store: fs, Listener: l, Tick: immediateTick})
	c.SetCategories(testCategories())
	return c, l
}

// drain runs cmd and any batched commands, returning the produced messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle runs cmd to quiescence, feeding every timer and save result back
// into the controller. It returns the messages meant for the shell.
func settle(c *Controller, cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := drain(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case debounceFiredMsg, SaveResultMsg:
			queue = append(queue, drain(c.Update(msg))...)
		default:
			out = append(out, msg)
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

func strp(s string) *string { return &s }
