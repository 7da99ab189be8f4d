package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/noteshelf/internal/note"
	"github.com/marcus/noteshelf/internal/store"
	"github.com/marcus/noteshelf/internal/styles"
)

var categoriesJSON bool

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List note categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		cats, err := s.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		note.SortCategories(cats)
		if categoriesJSON {
			return writeJSON(cmd.OutOrStdout(), cats)
		}
		for _, c := range cats {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-20s %s  %s\n", styles.CategoryDot(c.Color), c.Name, c.Color, c.ID)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default categories if they are missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		seeder, ok := s.(store.Seeder)
		if !ok {
			return fmt.Errorf("the %s backend manages its own categories", cfg.Store.Backend)
		}
		n, err := seeder.SeedCategories(ctx, note.DefaultCategories())
		if err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d categories\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd, seedCmd)
	categoriesCmd.Flags().BoolVar(&categoriesJSON, "json", false, "Output in JSON format")
}
