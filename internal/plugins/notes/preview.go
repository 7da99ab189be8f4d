package notes

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/marcus/noteshelf/internal/styles"
)

const maxCachedPreviews = 128

// previewRenderer renders note content as markdown, caching by content hash.
// The cache is dropped whenever the width or glamour style changes.
type previewRenderer struct {
	mu       sync.Mutex
	style    string
	width    int
	renderer *glamour.TermRenderer
	cache    map[uint64]string
}

func newPreviewRenderer() *previewRenderer {
	return &previewRenderer{cache: make(map[uint64]string)}
}

// Render returns content rendered for width columns.
func (r *previewRenderer) Render(content string, width int) string {
	if width <= 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	style := styles.GetMarkdownTheme()
	if r.renderer == nil || r.width != width || r.style != style {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return wrapPlain(content, width)
		}
		r.renderer = tr
		r.width = width
		r.style = style
		r.cache = make(map[uint64]string)
	}

	key := xxhash.Sum64String(content)
	if out, ok := r.cache[key]; ok {
		return out
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		return wrapPlain(content, width)
	}
	out = strings.Trim(out, "\n")
	if len(r.cache) >= maxCachedPreviews {
		r.cache = make(map[uint64]string)
	}
	r.cache[key] = out
	return out
}

// wrapPlain hard-wraps content when markdown rendering is unavailable.
func wrapPlain(content string, width int) string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		for runewidth.StringWidth(line) > width {
			head := runewidth.Truncate(line, width, "")
			if head == "" {
				break
			}
			out = append(out, head)
			line = line[len(head):]
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
