package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/storage"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with their totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.requireLogin(); err != nil {
			return err
		}

		categories, err := app.expenses.Categories(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOLOR\tTOTAL")
		for _, c := range categories {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n", c.ID, c.Name, c.Color, c.TotalAmount)
		}
		return w.Flush()
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category with a color from the palette",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.requireLogin(); err != nil {
			return err
		}

		c, err := app.expenses.CreateCategory(cmd.Context(), args[0])
		if errors.Is(err, storage.ErrDuplicateCategory) {
			return fmt.Errorf("category %q already exists", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Category %s created with color %s\n", c.Name, c.Color)
		return nil
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a category that has no expenses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.requireLogin(); err != nil {
			return err
		}

		err = app.expenses.RemoveCategory(cmd.Context(), id)
		if errors.Is(err, storage.ErrCategoryInUse) {
			return errors.New("category still has expenses, delete or recategorize them first")
		}
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("category %d not found", id)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Category %d deleted\n", id)
		return nil
	},
}

func init() {
	categoriesCmd.AddCommand(categoryAddCmd, categoryRemoveCmd)
	rootCmd.AddCommand(categoriesCmd)
}
