package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marcus/noteshelf/internal/note"
)

var exportCategory string

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write every note to dir as markdown with YAML frontmatter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		categoryID, err := resolveCategory(ctx, s, exportCategory)
		if err != nil {
			return err
		}
		n, err := exportNotes(ctx, s, categoryID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "Only export notes in this category (name or ID)")
}

// frontmatter is the YAML header written above each exported note.
type frontmatter struct {
	ID         string    `yaml:"id"`
	Title      string    `yaml:"title"`
	Category   string    `yaml:"category,omitempty"`
	CategoryID string    `yaml:"category_id"`
	Created    time.Time `yaml:"created"`
	LastEdited time.Time `yaml:"last_edited"`
}

// exportNotes writes one file per note into dir and returns the count.
func exportNotes(ctx context.Context, s note.Store, categoryID, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	summaries, err := s.ListNotes(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("list notes: %w", err)
	}

	for _, sum := range summaries {
		n, err := s.GetNote(ctx, sum.ID)
		if err != nil {
			return 0, fmt.Errorf("get note %s: %w", sum.ID, err)
		}
		if n.CategoryName == "" {
			n.CategoryName = sum.CategoryName
		}
		data, err := renderMarkdown(*n)
		if err != nil {
			return 0, fmt.Errorf("render note %s: %w", n.ID, err)
		}
		path := filepath.Join(dir, exportFileName(*n))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return 0, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("exported note", "id", n.ID, "path", path)
	}
	return len(summaries), nil
}

// renderMarkdown formats n as a markdown document with YAML frontmatter.
func renderMarkdown(n note.Note) ([]byte, error) {
	meta, err := yaml.Marshal(frontmatter{
		ID:         n.ID,
		Title:      n.Title,
		Category:   n.CategoryName,
		CategoryID: n.CategoryID,
		Created:    n.CreatedAt.UTC(),
		LastEdited: n.LastEditedAt.UTC(),
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(n.Content)
	if !strings.HasSuffix(n.Content, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// exportFileName is a slug of the title plus a short ID so titles that
// collide still get distinct files.
func exportFileName(n note.Note) string {
	id := n.ID
	if len(id) > 8 {
		id = id[:8]
	}
	slug := slugify(n.Title)
	if slug == "" {
		return id + ".md"
	}
	return slug + "-" + id + ".md"
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
