// Package notes is the note browser and editor plugin.
package notes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/noteshelf/internal/config"
	"github.com/marcus/noteshelf/internal/editor"
	"github.com/marcus/noteshelf/internal/keymap"
	"github.com/marcus/noteshelf/internal/msg"
	"github.com/marcus/noteshelf/internal/note"
	"github.com/marcus/noteshelf/internal/notelist"
	"github.com/marcus/noteshelf/internal/plugin"
	"github.com/marcus/noteshelf/internal/state"
	"github.com/marcus/noteshelf/internal/ui"
	"github.com/marcus/noteshelf/internal/watch"
)

const (
	pluginID   = "notes"
	pluginName = "notes"
	pluginIcon = "N"

	toastDuration = 3 * time.Second
)

// FocusPane represents which pane is active.
type FocusPane int

const (
	PaneSidebar FocusPane = iota
	PaneList
)

// EditField is the focused field of the editor modal.
type EditField int

const (
	FieldTitle EditField = iota
	FieldContent
	FieldCategory
)

func (f EditField) next() EditField { return (f + 1) % 3 }
func (f EditField) prev() EditField { return (f + 2) % 3 }

// Plugin implements the notes plugin.
type Plugin struct {
	ctx     *plugin.Context
	focused bool

	list   *notelist.Model
	editor *editor.Controller
	tick   editor.TickFunc
	now    func() time.Time

	categories []note.Category
	catErr     error

	// View dimensions
	width  int
	height int

	// Pane state
	activePane    FocusPane
	listWidth     int
	sidebarCursor int // 0 = all notes, i+1 = categories[i]
	cursor        int
	scrollOff     int
	selectedID    string
	showPreview   bool

	// Editor modal
	titleInput  textinput.Model
	contentArea textarea.Model
	editField   EditField
	modalRect   ui.Rect
	opening     string // ID of the note being fetched for the editor

	spinner  spinner.Model
	spinning bool
	preview  *previewRenderer

	// Teardown
	flushing bool

	watcher *watch.Watcher
}

// New creates a new notes plugin.
func New() *Plugin {
	return &Plugin{now: time.Now}
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return pluginID }

// Name returns the plugin display name.
func (p *Plugin) Name() string { return pluginName }

// Icon returns the plugin icon character.
func (p *Plugin) Icon() string { return pluginIcon }

// Init initializes the plugin with context.
func (p *Plugin) Init(ctx *plugin.Context) error {
	p.ctx = ctx
	if p.ctx.Logger == nil {
		p.ctx.Logger = slog.New(slog.DiscardHandler)
	}
	if p.ctx.Config == nil {
		p.ctx.Config = config.Default()
	}
	if p.ctx.Keymap == nil {
		p.ctx.Keymap = keymap.NewRegistry()
		keymap.RegisterDefaults(p.ctx.Keymap)
	}
	cfg := p.ctx.Config

	p.list = notelist.New(ctx.Store, ctx.Logger, cfg.Store.RequestTimeout)
	p.editor = editor.New(editor.Options{
		Store:            ctx.Store,
		Listener:         p.list,
		Logger:           ctx.Logger,
		Debounce:         cfg.Editor.Debounce,
		RequestTimeout:   cfg.Store.RequestTimeout,
		PlaceholderTitle: cfg.Editor.PlaceholderTitle,
		Tick:             p.tick,
	})

	p.activePane = PaneList
	p.listWidth = state.GetListWidth()
	p.showPreview = cfg.UI.MarkdownPreview
	p.cursor, p.scrollOff = 0, 0
	p.selectedID = state.GetSelectedNote()
	p.opening = ""
	p.flushing = false

	p.titleInput = textinput.New()
	p.titleInput.Prompt = ""
	p.titleInput.CharLimit = note.MaxTitleLength
	p.contentArea = textarea.New()
	p.contentArea.ShowLineNumbers = false
	p.contentArea.CharLimit = 0
	p.contentArea.MaxHeight = 0
	p.contentArea.Prompt = ""
	p.contentArea.Placeholder = "Pour your heart out..."
	p.styleInputs()

	p.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	p.preview = newPreviewRenderer()
	return nil
}

// Start loads categories and the first page of notes, and starts the
// database watcher when the store is a local file.
func (p *Plugin) Start() tea.Cmd {
	cmds := []tea.Cmd{
		p.loadCategories(),
		p.list.SetFilter(state.GetCategoryFilter()),
	}
	if cmd := p.startWatcher(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (p *Plugin) startWatcher() tea.Cmd {
	cfg := p.ctx.Config
	if cfg.Store.Backend != config.BackendSQLite || !cfg.Watch.Enabled || cfg.Store.DBPath == ":memory:" {
		return nil
	}
	w, err := watch.New(cfg.Store.DBPath, cfg.Watch.Debounce, p.ctx.Logger)
	if err != nil {
		p.ctx.Logger.Warn("notes: watcher disabled", "err", err)
		return nil
	}
	p.watcher = w
	return w.Wait()
}

// Stop cleans up plugin resources.
func (p *Plugin) Stop() {
	if p.watcher != nil {
		_ = p.watcher.Close()
		p.watcher = nil
	}
	if p.selectedID != "" {
		_ = state.SetSelectedNote(p.selectedID)
	}
}

// Flush closes the editor for teardown, persisting any unsaved edits.
func (p *Plugin) Flush() (tea.Cmd, bool) {
	p.opening = ""
	if !p.editor.IsOpen() {
		return nil, false
	}
	p.flushing = true
	return p.editor.Close(editor.CloseTeardown), true
}

// Update handles messages.
func (p *Plugin) Update(m tea.Msg) (plugin.Plugin, tea.Cmd) {
	var cmds []tea.Cmd

	switch m := m.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, p.handleKey(m))

	case tea.MouseMsg:
		cmds = append(cmds, p.handleMouse(m))

	case tea.WindowSizeMsg:
		p.width = m.Width
		p.height = m.Height

	case CategoriesLoadedMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		cmds = append(cmds, p.applyCategories(m))

	case notelist.FetchedMsg:
		p.list.Update(m)
		p.syncCursor()
		if m.Err != nil && errors.Is(p.list.Err(), m.Err) {
			cmds = append(cmds, p.reportError("Couldn't load notes", m.Err))
		}

	case NoteLoadedMsg:
		if plugin.IsStale(p.ctx, m) || m.ID != p.opening {
			return p, nil
		}
		p.opening = ""
		cmds = append(cmds, p.openLoaded(m))

	case editor.SaveResultMsg:
		cmds = append(cmds, p.editor.Update(m))
		p.syncCursor()
		p.syncInputs()

	case editor.SaveFailedMsg:
		cmds = append(cmds, p.handleSaveFailed(m))

	case editor.ClosedMsg:
		cmds = append(cmds, p.handleClosed(m))

	case watch.ChangedMsg:
		p.ctx.Logger.Debug("notes: database changed on disk")
		cmds = append(cmds, p.list.Refresh(), p.loadCategories())
		if p.watcher != nil {
			cmds = append(cmds, p.watcher.Wait())
		}

	case spinner.TickMsg:
		if !p.busy() {
			p.spinning = false
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(m)
		return p, cmd

	default:
		cmds = append(cmds, p.editor.Update(m))
	}

	if p.busy() && !p.spinning {
		p.spinning = true
		cmds = append(cmds, p.spinner.Tick)
	}
	return p, tea.Batch(cmds...)
}

// busy reports whether a store request the user is waiting on is out.
func (p *Plugin) busy() bool {
	return p.list.Loading() || p.opening != "" || p.editor.Saving()
}

// Refresh reloads categories and the list.
func (p *Plugin) Refresh() tea.Cmd {
	p.ctx.NextEpoch()
	return tea.Batch(p.loadCategories(), p.list.Refresh())
}

func (p *Plugin) loadCategories() tea.Cmd {
	store := p.ctx.Store
	epoch := p.ctx.Epoch
	timeout := p.ctx.Config.Store.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		cats, err := store.ListCategories(ctx)
		return CategoriesLoadedMsg{Categories: cats, Err: err, Epoch: epoch}
	}
}

func (p *Plugin) applyCategories(m CategoriesLoadedMsg) tea.Cmd {
	if m.Err != nil {
		p.catErr = m.Err
		return p.reportError("Couldn't load categories", m.Err)
	}
	p.catErr = nil
	p.categories = append([]note.Category(nil), m.Categories...)
	note.SortCategories(p.categories)
	p.editor.SetCategories(p.categories)
	p.list.SetCategories(p.categories)

	p.sidebarCursor = 0
	for i, c := range p.categories {
		if c.ID == p.list.Filter() {
			p.sidebarCursor = i + 1
		}
	}
	return nil
}

// openNote fetches the note under the cursor, then opens the editor.
func (p *Plugin) openNote() tea.Cmd {
	if p.editor.IsOpen() || p.opening != "" {
		return nil
	}
	items := p.list.Items()
	if p.cursor < 0 || p.cursor >= len(items) {
		return nil
	}
	id := items[p.cursor].ID
	p.opening = id
	store := p.ctx.Store
	epoch := p.ctx.Epoch
	timeout := p.ctx.Config.Store.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := store.GetNote(ctx, id)
		return NoteLoadedMsg{ID: id, Note: n, Err: err, Epoch: epoch}
	}
}

func (p *Plugin) openLoaded(m NoteLoadedMsg) tea.Cmd {
	if m.Err != nil {
		cmd := p.reportError("Couldn't open note", m.Err)
		if note.KindOf(m.Err) == note.KindNotFound {
			return tea.Batch(cmd, p.list.Refresh())
		}
		return cmd
	}
	if err := p.editor.Open(m.Note); err != nil {
		return p.reportError("Couldn't open note", err)
	}
	p.beginEditing()
	return nil
}

// newNote opens the editor on an empty note in the first category.
func (p *Plugin) newNote() tea.Cmd {
	if p.editor.IsOpen() || p.opening != "" {
		return nil
	}
	if err := p.editor.Open(nil); err != nil {
		return p.reportError("Couldn't create note", err)
	}
	p.beginEditing()
	return nil
}

func (p *Plugin) beginEditing() {
	f := p.editor.Fields()
	p.styleInputs()
	p.titleInput.SetValue(f.Title)
	p.titleInput.CursorEnd()
	p.contentArea.SetValue(f.Content)
	p.focusField(FieldTitle)
	if id := p.editor.NoteID(); id != "" {
		p.selectedID = id
	}
}

// reseedInputs resets the widgets to the buffer after a failed close reopens
// the editor.
func (p *Plugin) reseedInputs() {
	f := p.editor.Fields()
	if p.titleInput.Value() != f.Title {
		p.titleInput.SetValue(f.Title)
		p.titleInput.CursorEnd()
	}
	if p.contentArea.Value() != f.Content {
		p.contentArea.SetValue(f.Content)
	}
}

func (p *Plugin) closeEditor(reason editor.CloseReason) tea.Cmd {
	return p.editor.Close(reason)
}

func (p *Plugin) handleSaveFailed(m editor.SaveFailedMsg) tea.Cmd {
	switch m.Kind {
	case note.KindAuth:
		err := m.Err
		return func() tea.Msg { return plugin.AuthExpiredMsg{Err: err} }
	case note.KindValidation:
		if m.Field != "" {
			// Shown inline under the field.
			return nil
		}
	}
	text := "Couldn't save note"
	if m.Closing {
		text = "Couldn't save note, kept it open"
		if p.editor.State() == editor.StateOpen {
			p.reseedInputs()
		}
	}
	return p.reportError(text, m.Err)
}

func (p *Plugin) handleClosed(m editor.ClosedMsg) tea.Cmd {
	p.titleInput.Blur()
	p.contentArea.Blur()
	p.modalRect = ui.Rect{}
	if m.NoteID != "" {
		p.selectedID = m.NoteID
	}
	p.syncCursor()

	if p.flushing {
		p.flushing = false
		flushed := plugin.FlushedMsg{PluginID: pluginID, Err: m.Err}
		return func() tea.Msg { return flushed }
	}
	return nil
}

// reportError toasts err, or asks the app to exit when credentials expired.
func (p *Plugin) reportError(prefix string, err error) tea.Cmd {
	if note.KindOf(err) == note.KindAuth {
		return func() tea.Msg { return plugin.AuthExpiredMsg{Err: err} }
	}
	return msg.ShowError(prefix+": "+err.Error(), toastDuration)
}

// syncCursor keeps the cursor on the selected note as the list changes.
func (p *Plugin) syncCursor() {
	n := p.list.Len()
	if p.selectedID != "" {
		if i := p.list.Index(p.selectedID); i >= 0 {
			p.cursor = i
		}
	}
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	if n > 0 {
		p.selectedID = p.list.Items()[p.cursor].ID
	}
	p.ensureCursorVisible()
}

// syncInputs picks up the note ID assigned by the first create.
func (p *Plugin) syncInputs() {
	if id := p.editor.NoteID(); id != "" && p.editor.IsOpen() {
		p.selectedID = id
		p.syncCursor()
	}
}

// IsFocused returns whether the plugin is focused.
func (p *Plugin) IsFocused() bool { return p.focused }

// SetFocused sets the focus state.
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// Commands returns the commands shown in the footer for the current focus.
func (p *Plugin) Commands() []plugin.Command {
	if p.editor != nil && p.editor.IsOpen() {
		ctx := p.FocusContext()
		cmds := []plugin.Command{
			{ID: "dismiss-editor", Name: "Close", Description: "Save and close the editor", Category: plugin.CategoryActions, Context: ctx, Priority: 1},
			{ID: "next-field", Name: "Next", Description: "Focus the next field", Category: plugin.CategoryNavigation, Context: ctx, Priority: 2},
			{ID: "yank-note", Name: "Yank", Description: "Copy note content", Category: plugin.CategoryEdit, Context: ctx, Priority: 4},
		}
		if p.editField == FieldCategory {
			cmds = append(cmds, plugin.Command{ID: "next-category", Name: "Category", Description: "Move note to the next category", Category: plugin.CategoryEdit, Context: ctx, Priority: 3})
		}
		return cmds
	}
	if p.activePane == PaneSidebar {
		return []plugin.Command{
			{ID: "select", Name: "Filter", Description: "Show notes in this category", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar, Priority: 1},
			{ID: "new-note", Name: "New", Description: "Create a note", Category: plugin.CategoryActions, Context: keymap.ContextSidebar, Priority: 2},
			{ID: "switch-pane", Name: "Notes", Description: "Switch to the note list", Category: plugin.CategoryNavigation, Context: keymap.ContextSidebar, Priority: 3},
		}
	}
	return []plugin.Command{
		{ID: "open-note", Name: "Open", Description: "Edit the selected note", Category: plugin.CategoryActions, Context: keymap.ContextList, Priority: 1},
		{ID: "new-note", Name: "New", Description: "Create a note", Category: plugin.CategoryActions, Context: keymap.ContextList, Priority: 2},
		{ID: "switch-pane", Name: "Categories", Description: "Switch to the category list", Category: plugin.CategoryNavigation, Context: keymap.ContextList, Priority: 3},
		{ID: "yank-note", Name: "Yank", Description: "Copy note content", Category: plugin.CategoryActions, Context: keymap.ContextList, Priority: 4},
		{ID: "toggle-preview", Name: "Preview", Description: "Toggle the markdown preview", Category: plugin.CategoryView, Context: keymap.ContextList, Priority: 5},
	}
}

// FocusContext returns the current focus context.
func (p *Plugin) FocusContext() string {
	if p.editor != nil && p.editor.IsOpen() {
		if p.editField == FieldCategory {
			return keymap.ContextEditorCategory
		}
		return keymap.ContextEditor
	}
	if p.activePane == PaneSidebar {
		return keymap.ContextSidebar
	}
	return keymap.ContextList
}

// ConsumesTextInput reports whether the editor has a text field focused.
func (p *Plugin) ConsumesTextInput() bool {
	return p.editor != nil && p.editor.IsOpen() && p.editField != FieldCategory
}
