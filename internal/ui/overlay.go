// Package ui provides shared UI components and helpers for the TUI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DimStyle applies a dim gray color to background content behind modals.
// SGR 2 (faint) doesn't combine reliably with existing color codes, so the
// background is stripped and recolored instead.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

// Rect is a screen region in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// maxLineWidth returns the maximum visual width of the given lines.
func maxLineWidth(lines []string) int {
	maxWidth := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// ModalRect returns where OverlayModal places modal on a width x height screen.
func ModalRect(modal string, width, height int) Rect {
	lines := strings.Split(modal, "\n")
	w := maxLineWidth(lines)
	h := len(lines)
	return Rect{X: max((width-w)/2, 0), Y: max((height-h)/2, 0), W: w, H: h}
}

// dimLine strips ANSI codes and applies dim gray styling.
func dimLine(s string) string {
	return DimStyle.Render(ansi.Strip(s))
}

// compositeRow overlays modalLine onto bgLine at position modalStartX.
func compositeRow(bgLine, modalLine string, modalStartX, modalWidth, totalWidth int) string {
	var result strings.Builder

	stripped := ansi.Strip(bgLine)
	bgWidth := ansi.StringWidth(stripped)

	if modalStartX > 0 {
		leftSeg := ansi.Truncate(stripped, modalStartX, "")
		result.WriteString(DimStyle.Render(leftSeg))
		if w := ansi.StringWidth(leftSeg); w < modalStartX {
			result.WriteString(strings.Repeat(" ", modalStartX-w))
		}
	}

	result.WriteString(modalLine)

	rightStartX := modalStartX + modalWidth
	if rightStartX < totalWidth && bgWidth > rightStartX {
		result.WriteString(DimStyle.Render(ansi.Cut(stripped, rightStartX, bgWidth)))
	}

	return result.String()
}

// OverlayModal centers modal over a dimmed background.
func OverlayModal(background, modal string, width, height int) string {
	bgLines := strings.Split(background, "\n")
	modalLines := strings.Split(modal, "\n")
	r := ModalRect(modal, width, height)

	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	result := make([]string, 0, height)
	for y := 0; y < height; y++ {
		row := y - r.Y
		if row >= 0 && row < r.H {
			result = append(result, compositeRow(bgLines[y], modalLines[row], r.X, r.W, width))
		} else {
			result = append(result, dimLine(bgLines[y]))
		}
	}

	return strings.Join(result, "\n")
}
