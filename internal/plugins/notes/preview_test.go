package notes

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestPreviewRendererCaches(t *testing.T) {
	r := newPreviewRenderer()
	first := r.Render("# Groceries\n\n- milk\n- eggs", 40)
	if !strings.Contains(ansi.Strip(first), "Groceries") {
		t.Fatalf("rendered preview missing heading: %q", ansi.Strip(first))
	}
	if len(r.cache) != 1 {
		t.Fatalf("cache size = %d, want 1", len(r.cache))
	}

	again := r.Render("# Groceries\n\n- milk\n- eggs", 40)
	if again != first {
		t.Error("cached render differs")
	}

	// A width change drops the cache.
	r.Render("# Groceries\n\n- milk\n- eggs", 60)
	if len(r.cache) != 1 || r.width != 60 {
		t.Errorf("after resize cache=%d width=%d", len(r.cache), r.width)
	}
}

func TestWrapPlain(t *testing.T) {
	got := wrapPlain("abcdefghij\nxy", 4)
	want := "abcd\nefgh\nij\nxy"
	if got != want {
		t.Errorf("wrapPlain = %q, want %q", got, want)
	}
	if r := newPreviewRenderer(); r.Render("x", 0) != "" {
		t.Error("zero width should render nothing")
	}
}
