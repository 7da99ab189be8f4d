package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/marcus/noteshelf/internal/note"
)

const listTitleWidth = 40

var (
	listJSON     bool
	listCategory string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recently edited first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		categoryID, err := resolveCategory(ctx, s, listCategory)
		if err != nil {
			return err
		}
		notes, err := s.ListNotes(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("list notes: %w", err)
		}
		if listJSON {
			return writeJSON(cmd.OutOrStdout(), notes)
		}
		printSummaries(cmd.OutOrStdout(), notes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Only list notes in this category (name or ID)")
}

// resolveCategory maps a category name or ID to its ID. Empty means all.
func resolveCategory(ctx context.Context, s note.Store, nameOrID string) (string, error) {
	if nameOrID == "" {
		return "", nil
	}
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == nameOrID || strings.EqualFold(c.Name, nameOrID) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("no category named %q", nameOrID)
}

func printSummaries(w io.Writer, notes []note.Summary) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes yet.")
		return
	}
	for _, n := range notes {
		title := runewidth.Truncate(strings.TrimSpace(n.Title), listTitleWidth, "…")
		fmt.Fprintf(w, "%s  %s  %-16s  %s\n",
			n.ID,
			runewidth.FillRight(title, listTitleWidth),
			n.CategoryName,
			n.LastEditedAt.Local().Format("2006-01-02 15:04"))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
