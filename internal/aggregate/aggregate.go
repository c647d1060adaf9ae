// Package aggregate derives totals, per-category spend and budget progress
// from a ledger snapshot.
package aggregate

import (
	"math"

	"saldo/internal/core"
)

// Source is the read side of the ledger. Snapshot returns the records and
// budgets of one ledger state.
type Source interface {
	Snapshot() ([]core.Transaction, core.Budgets)
	Categories() core.Categories
}

// Level classifies budget progress for display.
type Level string

const (
	LevelNone    Level = "none"
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelOver    Level = "over"
)

const warningThreshold = 80.0

// Status is the budget row of one expense category.
type Status struct {
	Category  string     `json:"category"`
	Budget    core.Money `json:"budget"`
	Spent     core.Money `json:"spent"`
	Remaining core.Money `json:"remaining"`
	Progress  float64    `json:"progress"` // percent, 0..100
	Over      bool       `json:"over"`
	Level     Level      `json:"level"`
}

// Aggregator computes derived values over the ledger as it was at
// construction. Later mutations of the source are not observed.
type Aggregator struct {
	txs     []core.Transaction
	budgets core.Budgets
	cats    core.Categories
}

func New(src Source) *Aggregator {
	txs, budgets := src.Snapshot()
	return &Aggregator{txs: txs, budgets: budgets, cats: src.Categories()}
}

// TotalIncome sums every positive amount.
func (a *Aggregator) TotalIncome() core.Money {
	var sum core.Money
	for _, tx := range a.txs {
		if tx.Amount.IsPositive() {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// TotalExpenses sums the magnitudes of every negative amount.
func (a *Aggregator) TotalExpenses() core.Money {
	var sum core.Money
	for _, tx := range a.txs {
		if tx.Amount.IsNegative() {
			sum = sum.Add(tx.Amount.Abs())
		}
	}
	return sum
}

func (a *Aggregator) Balance() core.Money {
	return a.TotalIncome().Sub(a.TotalExpenses())
}

func (a *Aggregator) Dashboard() core.Totals {
	income, expenses := a.TotalIncome(), a.TotalExpenses()
	return core.Totals{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}
}

// SpentByCategory sums expense magnitudes in category.
func (a *Aggregator) SpentByCategory(category string) core.Money {
	var sum core.Money
	for _, tx := range a.txs {
		if tx.Type == core.Expense && tx.Category == category {
			sum = sum.Add(tx.Amount.Abs())
		}
	}
	return sum
}

func (a *Aggregator) BudgetStatus(category string) Status {
	budget := a.budgets[category]
	spent := a.SpentByCategory(category)
	st := Status{
		Category:  category,
		Budget:    budget,
		Spent:     spent,
		Remaining: budget.Sub(spent),
		Over:      budget.IsPositive() && spent.Cents > budget.Cents,
		Level:     LevelNone,
	}
	if budget.IsPositive() {
		st.Progress = math.Min(float64(spent.Cents)/float64(budget.Cents)*100, 100)
		switch {
		case st.Progress >= 100:
			st.Level = LevelOver
		case st.Progress > warningThreshold:
			st.Level = LevelWarning
		default:
			st.Level = LevelOK
		}
	}
	return st
}

// BudgetStatuses returns one row per expense category, in category order.
func (a *Aggregator) BudgetStatuses() []Status {
	out := make([]Status, 0, len(a.cats.Expense))
	for _, c := range a.cats.Expense {
		out = append(out, a.BudgetStatus(c))
	}
	return out
}

// ExpenseBreakdown groups expense magnitudes by category, in the order each
// category first appears in the ledger.
func (a *Aggregator) ExpenseBreakdown() []core.CategoryAmount {
	var out []core.CategoryAmount
	pos := map[string]int{}
	for _, tx := range a.txs {
		if tx.Type != core.Expense {
			continue
		}
		i, ok := pos[tx.Category]
		if !ok {
			i = len(out)
			pos[tx.Category] = i
			out = append(out, core.CategoryAmount{Name: tx.Category})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount.Abs())
	}
	if out == nil {
		out = []core.CategoryAmount{}
	}
	return out
}
