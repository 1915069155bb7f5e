package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

var (
	addTitle     string
	addAmount    string
	addCategory  string
	addDate      string
	addNote      string
	addRecurring string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
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

		amount, err := core.ParseAmount(addAmount)
		if err != nil {
			return fmt.Errorf("amount %q: %w", addAmount, err)
		}

		e := core.Expense{
			Title:       addTitle,
			Description: addNote,
			Amount:      amount,
			Category:    addCategory,
			Date:        addDate,
		}
		if addRecurring != "" {
			e.IsRecurring = true
			e.RecurringType = core.RecurringType(addRecurring)
		}

		id, err := app.expenses.CreateExpense(cmd.Context(), e)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Expense %d recorded\n", id)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the full expense history, newest first",
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

		expenses, err := app.expenses.ListExpenses(cmd.Context())
		if err != nil {
			return err
		}
		printExpenses(cmd, expenses)
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent [n]",
	Short: "Show the n most recent expenses (default 5)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 5
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 1 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			n = parsed
		}

		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.requireLogin(); err != nil {
			return err
		}

		expenses, err := app.expenses.RecentExpenses(cmd.Context(), n)
		if err != nil {
			return err
		}
		printExpenses(cmd, expenses)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one expense",
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

		e, err := app.expenses.GetExpense(cmd.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("expense %d not found", id)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:       %d\n", e.ID)
		fmt.Fprintf(out, "Title:    %s\n", e.Title)
		fmt.Fprintf(out, "Amount:   %.2f\n", e.Amount)
		fmt.Fprintf(out, "Category: %s\n", e.Category)
		fmt.Fprintf(out, "Date:     %s\n", e.Date)
		if e.Description != "" {
			fmt.Fprintf(out, "Note:     %s\n", e.Description)
		}
		if e.IsRecurring {
			fmt.Fprintf(out, "Repeats:  %s\n", e.RecurringType)
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update fields of an expense",
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

		e, err := app.expenses.GetExpense(cmd.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("expense %d not found", id)
		}
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("title") {
			e.Title = addTitle
		}
		if flags.Changed("amount") {
			amount, err := core.ParseAmount(addAmount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", addAmount, err)
			}
			e.Amount = amount
		}
		if flags.Changed("category") {
			e.Category = addCategory
		}
		if flags.Changed("date") {
			e.Date = addDate
		}
		if flags.Changed("note") {
			e.Description = addNote
		}
		if flags.Changed("recurring") {
			if addRecurring == "" {
				e.IsRecurring = false
				e.RecurringType = ""
			} else {
				e.IsRecurring = true
				e.RecurringType = core.RecurringType(addRecurring)
			}
		}

		if err := app.expenses.UpdateExpense(cmd.Context(), *e); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Expense %d updated\n", id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an expense",
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

		if err := app.expenses.DeleteExpense(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Expense %d deleted\n", id)
		return nil
	},
}

var totalCmd = &cobra.Command{
	Use:   "total",
	Short: "Show the overall total spent",
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

		total, err := app.expenses.TotalSpent(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", total)
		return nil
	},
}

func printExpenses(cmd *cobra.Command, expenses []core.Expense) {
	if len(expenses) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No expenses recorded")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tCATEGORY\tAMOUNT")
	for _, e := range expenses {
		title := e.Title
		if e.IsRecurring {
			title += " (" + string(e.RecurringType) + ")"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\n", e.ID, e.Date, title, e.Category, e.Amount)
	}
	w.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "expense title (required)")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "amount, e.g. 12.50 (required)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "category name (required)")
	addCmd.Flags().StringVar(&addDate, "date", time.Now().Format(core.DateLayout), "date in YYYY-MM-DD form")
	addCmd.Flags().StringVar(&addNote, "note", "", "optional description")
	addCmd.Flags().StringVar(&addRecurring, "recurring", "", "mark recurring: Daily, Weekly or Monthly")
	addCmd.MarkFlagRequired("title")
	addCmd.MarkFlagRequired("amount")
	addCmd.MarkFlagRequired("category")

	editCmd.Flags().StringVar(&addTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&addAmount, "amount", "", "new amount")
	editCmd.Flags().StringVar(&addCategory, "category", "", "new category name")
	editCmd.Flags().StringVar(&addDate, "date", "", "new date in YYYY-MM-DD form")
	editCmd.Flags().StringVar(&addNote, "note", "", "new description")
	editCmd.Flags().StringVar(&addRecurring, "recurring", "", "Daily, Weekly, Monthly or empty to clear")

	rootCmd.AddCommand(addCmd, listCmd, recentCmd, showCmd, editCmd, deleteCmd, totalCmd)
}
