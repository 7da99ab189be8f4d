package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/marcus/noteshelf/internal/note"
	"github.com/marcus/noteshelf/internal/store/sqlite"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Groceries", "groceries"},
		{"  Math HW: ch. 3!  ", "math-hw-ch-3"},
		{"Café au lait", "café-au-lait"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "groceries-0f8fad5b.md", exportFileName(note.Note{ID: "0f8fad5b-d9cb-469f-a165-70867728950e", Title: "Groceries"}))
	assert.Equal(t, "abc.md", exportFileName(note.Note{ID: "abc", Title: "!!"}))
}

func TestRenderMarkdown(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	n := note.Note{
		ID:           "n1",
		CategoryID:   "c1",
		CategoryName: "Random Thoughts",
		Title:        "Title: with colon",
		Content:      "- milk\n- eggs",
		CreatedAt:    created,
		LastEditedAt: created.Add(time.Hour),
	}
	data, err := renderMarkdown(n)
	require.NoError(t, err)

	parts := bytes.SplitN(data, []byte("---\n"), 3)
	require.Len(t, parts, 3)
	assert.Empty(t, parts[0])

	var fm frontmatter
	require.NoError(t, yaml.Unmarshal(parts[1], &fm))
	assert.Equal(t, "Title: with colon", fm.Title)
	assert.Equal(t, "Random Thoughts", fm.Category)
	assert.True(t, fm.LastEdited.Equal(n.LastEditedAt))
	assert.Equal(t, "\n- milk\n- eggs\n", string(parts[2]))
}

func TestExportNotes(t *testing.T) {
	logger = slog.New(slog.DiscardHandler)
	ctx := context.Background()
	s, err := sqlite.Open(ctx, sqlite.DriverPureGo, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	_, err = s.CreateNote(ctx, note.NewNote{CategoryID: cats[0].ID, Title: "Groceries", Content: "milk"})
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, note.NewNote{CategoryID: cats[1].ID, Title: "Homework", Content: "math"})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	id, err := resolveCategory(ctx, s, strings.ToUpper(cats[0].Name))
	require.NoError(t, err)
	n, err := exportNotes(ctx, s, id, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "groceries-"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "category: "+cats[0].Name)
	assert.True(t, strings.HasSuffix(string(data), "\nmilk\n"))

	_, err = resolveCategory(ctx, s, "nope")
	assert.Error(t, err)
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	printSummaries(&buf, nil)
	assert.Equal(t, "No notes yet.\n", buf.String())

	buf.Reset()
	printSummaries(&buf, []note.Summary{{ID: "n1", Title: strings.Repeat("x", 60), CategoryName: "School"}})
	line := buf.String()
	assert.Contains(t, line, "…")
	assert.Contains(t, line, "School")
}
