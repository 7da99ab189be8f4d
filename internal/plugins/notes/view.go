package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/marcus/noteshelf/internal/editor"
	"github.com/marcus/noteshelf/internal/keymap"
	"github.com/marcus/noteshelf/internal/note"
	"github.com/marcus/noteshelf/internal/styles"
	"github.com/marcus/noteshelf/internal/ui"
)

const (
	sidebarWidth    = 24
	paneHeaderRows  = 3 // top border, header, header margin
	rowHeight       = 2
	minPreviewWidth = 24
	maxModalWidth   = 96
)

// View renders the plugin.
func (p *Plugin) View(width, height int) string {
	p.width = width
	p.height = height
	p.ensureCursorVisible()

	content := p.renderPanes()
	if p.editor.IsOpen() {
		modal := p.renderEditorModal()
		p.modalRect = ui.ModalRect(modal, width, height)
		content = ui.OverlayModal(content, modal, width, height)
	}

	// Constrain output to allocated height
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
}

func (p *Plugin) visibleRows() int {
	return (p.height - paneHeaderRows - 1) / rowHeight
}

func (p *Plugin) renderPanes() string {
	listW := p.listWidth
	if rest := p.width - sidebarWidth; listW > rest {
		listW = rest
	}
	panes := []string{p.renderSidebar(p.height), p.renderList(listW, p.height)}
	if previewW := p.width - sidebarWidth - listW; p.showPreview && previewW >= minPreviewWidth {
		panes = append(panes, p.renderPreview(previewW, p.height))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func panel(active bool, width, height int) lipgloss.Style {
	s := styles.PanelInactive
	if active {
		s = styles.PanelActive
	}
	return s.Width(max(width-2, 0)).Height(max(height-2, 0)).MaxHeight(height)
}

func (p *Plugin) renderSidebar(height int) string {
	inner := sidebarWidth - 4
	var b strings.Builder
	b.WriteString(styles.PanelHeader.Render("Categories"))
	b.WriteString("\n")

	rows := []string{"All notes"}
	colors := []string{""}
	for _, c := range p.categories {
		rows = append(rows, c.Name)
		colors = append(colors, c.Color)
	}
	for i, name := range rows {
		label := runewidth.Truncate(name, inner-2, "…")
		dot := " "
		if colors[i] != "" {
			dot = styles.CategoryDot(colors[i])
		}
		line := dot + " " + label
		switch {
		case i == p.sidebarCursor && p.activePane == PaneSidebar && !p.editor.IsOpen():
			line = styles.ListItemSelected.Width(inner).Render(dot + " " + label)
		case p.isFilter(i):
			line = dot + " " + styles.Title.Render(label)
		default:
			line = dot + " " + styles.ListItemNormal.Render(label)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if p.catErr != nil {
		b.WriteString(styles.ErrText.Render(runewidth.Truncate(p.catErr.Error(), inner, "…")))
	}
	return panel(p.activePane == PaneSidebar, sidebarWidth, height).Render(b.String())
}

func (p *Plugin) isFilter(row int) bool {
	if row == 0 {
		return p.list.Filter() == ""
	}
	return row <= len(p.categories) && p.categories[row-1].ID == p.list.Filter()
}

func (p *Plugin) listTitle() string {
	name := "All notes"
	if c, ok := note.FindCategory(p.categories, p.list.Filter()); ok {
		name = c.Name
	}
	return fmt.Sprintf("%s (%d)", name, p.list.Len())
}

func (p *Plugin) renderList(width, height int) string {
	inner := width - 4
	var b strings.Builder
	b.WriteString(styles.PanelHeader.Render(runewidth.Truncate(p.listTitle(), inner, "…")))
	b.WriteString("\n")

	items := p.list.Items()
	switch {
	case len(items) == 0 && p.list.Loading():
		b.WriteString(p.spinner.View() + " " + styles.Muted.Render("Loading notes..."))
	case len(items) == 0 && p.list.Err() != nil:
		b.WriteString(styles.ErrText.Render(runewidth.Truncate("Couldn't load notes: "+p.list.Err().Error(), inner, "…")))
	case len(items) == 0:
		hint := "No notes yet."
		if keys := p.ctx.Keymap.KeysFor(keymap.ContextList, "new-note"); len(keys) > 0 {
			hint += " Press " + keys[0] + " to write one."
		}
		b.WriteString(styles.Muted.Render(hint))
	default:
		now := p.now()
		end := min(p.scrollOff+p.visibleRows(), len(items))
		for i := p.scrollOff; i < end; i++ {
			b.WriteString(p.renderRow(items[i], i == p.cursor, inner, now))
			b.WriteString("\n")
		}
	}
	return panel(p.activePane == PaneList && !p.editor.IsOpen(), width, height).Render(b.String())
}

func (p *Plugin) renderRow(s note.Summary, selected bool, width int, now time.Time) string {
	date := note.FormatCardDate(s.LastEditedAt, now)
	titleW := max(width-runewidth.StringWidth(date)-3, 1)
	title := runewidth.Truncate(strings.TrimSpace(s.Title), titleW, "…")
	gap := max(width-2-runewidth.StringWidth(title)-runewidth.StringWidth(date), 1)

	preview := strings.Join(strings.Fields(note.Preview(s.Content, note.PreviewLength)), " ")
	preview = runewidth.Truncate(preview, width-2, "…")

	dot := styles.CategoryDot(s.CategoryColor)
	if selected && p.activePane == PaneList {
		line1 := styles.ListItemSelected.Width(width - 2).Render(title + strings.Repeat(" ", gap) + date)
		return dot + " " + line1 + "\n  " + styles.Subtitle.Render(preview)
	}
	marker := " "
	if selected {
		marker = styles.ListCursor.Render("›")
	}
	line1 := styles.ListItemNormal.Render(title) + strings.Repeat(" ", gap) + styles.Muted.Render(date)
	return dot + marker + line1 + "\n  " + styles.Subtle.Render(preview)
}

func (p *Plugin) renderPreview(width, height int) string {
	inner := width - 4
	items := p.list.Items()
	if p.cursor < 0 || p.cursor >= len(items) {
		return panel(false, width, height).Render(styles.Muted.Render("Nothing selected"))
	}
	s := items[p.cursor]

	var b strings.Builder
	b.WriteString(styles.PanelHeader.Render(runewidth.Truncate(s.Title, inner, "…")))
	b.WriteString("\n")
	if s.CategoryName != "" {
		b.WriteString(styles.CategoryBadge(s.CategoryName, s.CategoryColor))
		b.WriteString("  ")
	}
	if edited := note.FormatLastEdited(s.LastEditedAt, p.now()); edited != "" {
		b.WriteString(styles.Muted.Render("Last edited: " + edited))
	}
	b.WriteString("\n\n")

	body := p.preview.Render(s.Content, inner)
	lines := strings.Split(body, "\n")
	if maxLines := height - paneHeaderRows - 4; maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	b.WriteString(strings.Join(lines, "\n"))
	return panel(false, width, height).Render(b.String())
}

func (p *Plugin) renderEditorModal() string {
	w := min(p.width-4, maxModalWidth)
	h := max(p.height-4, 12)
	inner := max(w-6, 10) // border + padding

	f := p.editor.Fields()
	cat, _ := note.FindCategory(p.editor.Categories(), f.CategoryID)

	badge := styles.CategoryBadge(cat.Name, cat.Color)
	if p.editField == FieldCategory {
		badge = styles.ListCursor.Render("‹ ") + badge + styles.ListCursor.Render(" ›")
	}
	status := p.statusText()
	gap := max(inner-lipgloss.Width(badge)-lipgloss.Width(status), 1)
	header := badge + strings.Repeat(" ", gap) + status

	p.titleInput.Width = inner - 1
	lines := []string{header, "", p.titleInput.View()}
	lines = appendFieldErr(lines, p.editor.FieldError("title"))
	lines = appendFieldErr(lines, p.editor.FieldError("category"))
	lines = append(lines, "")

	if err := p.editor.Err(); err != nil && note.FieldOf(err) == "" {
		lines = append(lines, styles.ErrText.Render(runewidth.Truncate(err.Error(), inner, "…")), "")
	}
	contentErr := p.editor.FieldError("content")

	used := len(lines) + 4 // footer + borders
	if contentErr != "" {
		used++
	}
	p.contentArea.SetWidth(inner)
	p.contentArea.SetHeight(max(h-used, 3))
	lines = append(lines, p.contentArea.View())
	lines = appendFieldErr(lines, contentErr)
	lines = append(lines, "", p.editorHints())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.CategoryColor(cat.Color)).
		Padding(0, 2).
		Width(w - 2).
		Render(strings.Join(lines, "\n"))
}

func appendFieldErr(lines []string, msg string) []string {
	if msg == "" {
		return lines
	}
	return append(lines, styles.ErrText.Render(msg))
}

// statusText is the save indicator in the editor header.
func (p *Plugin) statusText() string {
	switch {
	case p.editor.State() == editor.StateClosing, p.editor.Saving():
		return p.spinner.View() + styles.Saving.Render("Saving...")
	case p.editor.Err() != nil:
		return styles.ErrText.Render("Not saved")
	case p.editor.Dirty():
		return styles.Muted.Render("Edited")
	}
	if edited := note.FormatLastEdited(p.editor.LastSavedAt(), p.now()); edited != "" {
		return styles.Muted.Render("Last edited: " + edited)
	}
	return ""
}

func (p *Plugin) editorHints() string {
	ctx := p.FocusContext()
	var parts []string
	for _, c := range p.Commands() {
		keys := p.ctx.Keymap.KeysFor(ctx, c.ID)
		if len(keys) == 0 {
			continue
		}
		parts = append(parts, styles.KeyHint.Render(keys[0])+" "+styles.Muted.Render(c.Name))
	}
	return strings.Join(parts, "  ")
}
