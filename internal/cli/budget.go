package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saldo/internal/aggregate"
)

func budgetCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage spending limits per expense category",
	}
	cmd.AddCommand(budgetSetCmd(e), budgetListCmd(e))
	return cmd
}

func budgetSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> [amount]",
		Short: "Set or clear the budget of a category",
		Long:  "Omitting the amount, or giving zero or less, clears the budget.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withLedger(e, func(cmd *cobra.Command, args []string) error {
			var amount string
			if len(args) == 2 {
				amount = args[1]
			}
			res, err := e.ctrl.SetBudgetInput(cmd.Context(), args[0], amount)
			return report(cmd.OutOrStdout(), res, err)
		}),
	}
}

func budgetListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show spending against each budget",
		Args:    cobra.NoArgs,
		RunE: withLedger(e, func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			symbol := e.cfg.CurrencySymbol
			fmt.Fprintln(out, FormatTitle("Budgets"))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				HeaderStyle.Render("Category"),
				HeaderStyle.Render("Budget"),
				HeaderStyle.Render("Spent"),
				HeaderStyle.Render("Remaining"),
				HeaderStyle.Render("Progress"))
			for _, st := range e.ctrl.BudgetRows() {
				budget, remaining := "-", "-"
				if st.Level != aggregate.LevelNone {
					budget = st.Budget.Format(symbol)
					remaining = st.Remaining.Format(symbol)
					if st.Over {
						remaining = ErrorStyle.Render(remaining)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					st.Category, budget, st.Spent.Format(symbol), remaining, BudgetBar(st))
			}
			return w.Flush()
		}),
	}
}

func summaryCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show total income, expenses and balance",
		Args:  cobra.NoArgs,
		RunE: withLedger(e, func(cmd *cobra.Command, _ []string) error {
			totals := e.ctrl.Dashboard()
			symbol := e.cfg.CurrencySymbol

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, FormatTitle("Summary"))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("Income"), IncomeStyle.Render(totals.Income.Format(symbol)))
			fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("Expenses"), ExpenseStyle.Render(totals.Expenses.Format(symbol)))
			fmt.Fprintf(w, "%s\t%s\n", HeaderStyle.Render("Balance"), FormatAmount(totals.Balance, symbol))
			return w.Flush()
		}),
	}
}

func chartCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "chart",
		Short: "Show expenses by category",
		Args:  cobra.NoArgs,
		RunE: withLedger(e, func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, FormatTitle("Expenses by category"))

			pairs := e.ctrl.Chart()
			if len(pairs) == 0 {
				fmt.Fprintln(out, SubtleStyle.Render("No expenses yet."))
				return nil
			}
			var total int64
			for _, p := range pairs {
				total += p.Amount.Cents
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, p := range pairs {
				share := float64(p.Amount.Cents) / float64(total) * 100
				fmt.Fprintf(w, "%s\t%s\t%s\t%3.0f%%\n",
					p.Name, Bar(share, ExpenseStyle), p.Amount.Format(e.cfg.CurrencySymbol), share)
			}
			return w.Flush()
		}),
	}
}
