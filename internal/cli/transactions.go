package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saldo/internal/app"
	"saldo/internal/core"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return id, nil
}

func addCmd(e *env) *cobra.Command {
	var category, date string
	cmd := &cobra.Command{
		Use:   "add <income|expense> <amount> <description...>",
		Short: "Record an income or expense",
		Example: `  saldo add expense 4.50 Coffee with Ana -c Food
  saldo add income 1500 March salary -c Salary -d 2024-03-01`,
		Args: cobra.MinimumNArgs(3),
		RunE: withLedger(e, func(cmd *cobra.Command, args []string) error {
			res, err := e.ctrl.SubmitTransaction(cmd.Context(), app.Submission{
				Type:        args[0],
				AmountText:  args[1],
				Description: strings.Join(args[2:], " "),
				Category:    category,
				DateText:    date,
			})
			if err := report(cmd.OutOrStdout(), res, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  id %d\n", res.Transaction.ID)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD (default: today)")
	return cmd
}

func editCmd(e *env) *cobra.Command {
	var typ, amount, description, category, date string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Long:  "Fields without a flag keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: withLedger(e, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := e.ctrl.RequestEdit(id)
			if err != nil {
				return userError{err}
			}

			sub := app.Submission{
				Type:        current.Type.String(),
				AmountText:  current.Amount.Abs().String(),
				Description: current.Description,
				Category:    current.Category,
				DateText:    current.Date.String(),
				ExistingID:  &id,
			}
			flags := cmd.Flags()
			if flags.Changed("type") {
				sub.Type = typ
			}
			if flags.Changed("amount") {
				sub.AmountText = amount
			}
			if flags.Changed("description") {
				sub.Description = description
			}
			if flags.Changed("category") {
				sub.Category = category
			}
			if flags.Changed("date") {
				sub.DateText = date
			}

			res, err := e.ctrl.SubmitTransaction(cmd.Context(), sub)
			return report(cmd.OutOrStdout(), res, err)
		}),
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "income or expense")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD")
	return cmd
}

func rmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: withLedger(e, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := e.ctrl.RequestDelete(cmd.Context(), id)
			return report(cmd.OutOrStdout(), res, err)
		}),
	}
}

func showCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withLedger(e, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tx, err := e.ctrl.RequestEdit(id)
			if err != nil {
				return userError{err}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%d\n", HeaderStyle.Render("ID"), tx.ID)
			fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("Type"), tx.Type)
			fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("Date"), tx.Date)
			fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("Category"), tx.Category)
			fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("Description"), tx.Description)
			fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("Amount"), FormatAmount(tx.Amount, e.cfg.CurrencySymbol))
			return w.Flush()
		}),
	}
}

func listCmd(e *env) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, newest first",
		Args:    cobra.NoArgs,
		RunE: withLedger(e, func(cmd *cobra.Command, _ []string) error {
			types := []core.Type{core.Income, core.Expense}
			if typ != "" {
				t, err := core.ParseType(typ)
				if err != nil {
					return userError{err}
				}
				types = []core.Type{t}
			}

			out := cmd.OutOrStdout()
			for i, t := range types {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := writeTransactions(out, t, e.ctrl.Transactions(t), e.cfg.CurrencySymbol); err != nil {
					return err
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "only income or expense")
	return cmd
}

func writeTransactions(out io.Writer, t core.Type, txs []core.Transaction, symbol string) error {
	title := "Income"
	if t == core.Expense {
		title = "Expenses"
	}
	fmt.Fprintln(out, FormatTitle(title))
	if len(txs) == 0 {
		fmt.Fprintln(out, SubtleStyle.Render("No transactions yet."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("ID"),
		HeaderStyle.Render("Date"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Description"),
		HeaderStyle.Render("Amount"))
	for _, tx := range txs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Date, tx.Category, tx.Description, FormatAmount(tx.Amount, symbol))
	}
	return w.Flush()
}
