package notes

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/noteshelf/internal/editor"
	"github.com/marcus/noteshelf/internal/msg"
	"github.com/marcus/noteshelf/internal/state"
	"github.com/marcus/noteshelf/internal/styles"
)

const (
	minListWidth  = 24
	maxListWidth  = 80
	listWidthStep = 4
)

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

func (p *Plugin) handleKey(k tea.KeyMsg) tea.Cmd {
	if p.editor.IsOpen() {
		return p.handleEditorKey(k)
	}
	if p.opening != "" {
		return nil
	}
	if p.activePane == PaneSidebar {
		return p.handleSidebarKey(k)
	}
	return p.handleListKey(k)
}

func (p *Plugin) handleListKey(k tea.KeyMsg) tea.Cmd {
	switch p.ctx.Keymap.Resolve(p.FocusContext(), k.String()) {
	case "cursor-down":
		p.moveCursor(1)
	case "cursor-up":
		p.moveCursor(-1)
	case "cursor-top":
		p.moveCursor(-p.list.Len())
	case "cursor-bottom":
		p.moveCursor(p.list.Len())
	case "open-note":
		return p.openNote()
	case "new-note":
		return p.newNote()
	case "yank-note":
		return p.yankSelected()
	case "toggle-preview":
		p.showPreview = !p.showPreview
	case "switch-pane":
		p.activePane = PaneSidebar
	case "shrink-list":
		p.resizeList(-listWidthStep)
	case "grow-list":
		p.resizeList(listWidthStep)
	}
	return nil
}

func (p *Plugin) handleSidebarKey(k tea.KeyMsg) tea.Cmd {
	switch p.ctx.Keymap.Resolve(p.FocusContext(), k.String()) {
	case "cursor-down":
		if p.sidebarCursor < len(p.categories) {
			p.sidebarCursor++
		}
	case "cursor-up":
		if p.sidebarCursor > 0 {
			p.sidebarCursor--
		}
	case "select":
		return p.applyFilter()
	case "new-note":
		return p.newNote()
	case "switch-pane":
		p.activePane = PaneList
	case "shrink-list":
		p.resizeList(-listWidthStep)
	case "grow-list":
		p.resizeList(listWidthStep)
	}
	return nil
}

// applyFilter filters the list by the category under the sidebar cursor.
func (p *Plugin) applyFilter() tea.Cmd {
	filter := ""
	if p.sidebarCursor > 0 && p.sidebarCursor <= len(p.categories) {
		filter = p.categories[p.sidebarCursor-1].ID
	}
	p.activePane = PaneList
	if filter == p.list.Filter() {
		return nil
	}
	if err := state.SetCategoryFilter(filter); err != nil {
		p.ctx.Logger.Warn("notes: save filter", "err", err)
	}
	p.cursor, p.scrollOff = 0, 0
	p.selectedID = ""
	return p.list.SetFilter(filter)
}

func (p *Plugin) handleEditorKey(k tea.KeyMsg) tea.Cmd {
	switch p.ctx.Keymap.Resolve(p.FocusContext(), k.String()) {
	case "dismiss-editor":
		return p.closeEditor(editor.CloseEscape)
	case "close-editor":
		return p.closeEditor(editor.CloseExplicit)
	case "next-field":
		p.focusField(p.editField.next())
		return nil
	case "prev-field":
		p.focusField(p.editField.prev())
		return nil
	case "next-category":
		return p.cycleCategory(1)
	case "prev-category":
		return p.cycleCategory(-1)
	case "yank-note":
		return p.yank(p.editor.Fields().Content)
	}

	if p.editor.State() != editor.StateOpen {
		return nil
	}
	var cmd tea.Cmd
	switch p.editField {
	case FieldTitle:
		p.titleInput, cmd = p.titleInput.Update(k)
		return tea.Batch(cmd, p.editor.SetTitle(p.titleInput.Value()))
	case FieldContent:
		p.contentArea, cmd = p.contentArea.Update(k)
		return tea.Batch(cmd, p.editor.SetContent(p.contentArea.Value()))
	}
	return nil
}

func (p *Plugin) handleMouse(m tea.MouseMsg) tea.Cmd {
	if m.Action != tea.MouseActionPress || m.Button != tea.MouseButtonLeft {
		return nil
	}
	if p.editor.IsOpen() {
		if p.modalRect.W > 0 && !p.modalRect.Contains(m.X, m.Y) {
			return p.closeEditor(editor.CloseBackdrop)
		}
		return nil
	}
	if p.opening != "" {
		return nil
	}

	// Rows start below the pane border and header.
	row := m.Y - paneHeaderRows
	switch {
	case m.X < sidebarWidth:
		p.activePane = PaneSidebar
		if row >= 0 && row <= len(p.categories) {
			p.sidebarCursor = row
			return p.applyFilter()
		}
	case m.X < sidebarWidth+p.listWidth:
		p.activePane = PaneList
		if row >= 0 {
			idx := p.scrollOff + row/rowHeight
			if idx < p.list.Len() {
				p.cursor = idx
				p.selectedID = p.list.Items()[idx].ID
			}
		}
	}
	return nil
}

func (p *Plugin) moveCursor(delta int) {
	n := p.list.Len()
	if n == 0 {
		return
	}
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= n {
		p.cursor = n - 1
	}
	p.selectedID = p.list.Items()[p.cursor].ID
	p.ensureCursorVisible()
}

func (p *Plugin) ensureCursorVisible() {
	visible := p.visibleRows()
	if visible <= 0 {
		return
	}
	if p.cursor < p.scrollOff {
		p.scrollOff = p.cursor
	}
	if p.cursor >= p.scrollOff+visible {
		p.scrollOff = p.cursor - visible + 1
	}
	if p.scrollOff < 0 {
		p.scrollOff = 0
	}
}

func (p *Plugin) resizeList(delta int) {
	w := p.listWidth + delta
	if w < minListWidth {
		w = minListWidth
	}
	if w > maxListWidth {
		w = maxListWidth
	}
	if w == p.listWidth {
		return
	}
	p.listWidth = w
	if err := state.SetListWidth(w); err != nil {
		p.ctx.Logger.Warn("notes: save list width", "err", err)
	}
}

func (p *Plugin) focusField(f EditField) {
	p.editField = f
	p.titleInput.Blur()
	p.contentArea.Blur()
	switch f {
	case FieldTitle:
		p.titleInput.Focus()
	case FieldContent:
		p.contentArea.Focus()
	}
}

// cycleCategory moves the open note delta places through the category list.
func (p *Plugin) cycleCategory(delta int) tea.Cmd {
	cats := p.editor.Categories()
	if len(cats) == 0 {
		return nil
	}
	cur := p.editor.Fields().CategoryID
	idx := 0
	for i, c := range cats {
		if c.ID == cur {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(cats)) % len(cats)
	return p.editor.SetCategory(cats[idx].ID)
}

func (p *Plugin) yankSelected() tea.Cmd {
	items := p.list.Items()
	if p.cursor < 0 || p.cursor >= len(items) {
		return nil
	}
	return p.yank(items[p.cursor].Content)
}

func (p *Plugin) yank(content string) tea.Cmd {
	if err := clipboardWrite(content); err != nil {
		return msg.ShowError("Copy failed: "+err.Error(), toastDuration)
	}
	return msg.ShowToast("Copied note content", toastDuration)
}

// styleInputs applies the current theme to the editor fields.
func (p *Plugin) styleInputs() {
	p.titleInput.TextStyle = styles.Title
	p.titleInput.PlaceholderStyle = styles.Muted
	p.titleInput.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	p.contentArea.FocusedStyle.Base = lipgloss.NewStyle()
	p.contentArea.FocusedStyle.CursorLine = lipgloss.NewStyle()
	p.contentArea.FocusedStyle.Text = styles.Body
	p.contentArea.FocusedStyle.Placeholder = styles.Muted
	p.contentArea.FocusedStyle.EndOfBuffer = styles.Subtle
	p.contentArea.BlurredStyle = p.contentArea.FocusedStyle
	p.contentArea.BlurredStyle.Text = styles.Subtitle
}
