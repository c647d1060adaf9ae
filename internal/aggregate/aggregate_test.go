package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/storage/memory"
)

type fakeSource struct {
	txs     []core.Transaction
	budgets core.Budgets
}

func (f fakeSource) Snapshot() ([]core.Transaction, core.Budgets) {
	return f.txs, f.budgets.Clone()
}

func (f fakeSource) Categories() core.Categories { return core.DefaultCategories() }

func expense(id int64, cat string, cents int64) core.Transaction {
	return core.Transaction{ID: id, Description: "x", Amount: core.Money{Cents: -cents}, Date: core.NewDate(2024, 1, 1), Type: core.Expense, Category: cat}
}

func income(id int64, cents int64) core.Transaction {
	return core.Transaction{ID: id, Description: "x", Amount: core.Money{Cents: cents}, Date: core.NewDate(2024, 1, 1), Type: core.Income, Category: "Salary"}
}

func TestEmptyLedger(t *testing.T) {
	a := New(fakeSource{})
	assert.Zero(t, a.TotalIncome())
	assert.Zero(t, a.TotalExpenses())
	assert.Zero(t, a.Balance())
	assert.Equal(t, core.Totals{}, a.Dashboard())
	assert.Empty(t, a.ExpenseBreakdown())
	assert.NotNil(t, a.ExpenseBreakdown())

	st := a.BudgetStatus("Food")
	assert.Equal(t, LevelNone, st.Level)
	assert.Zero(t, st.Progress)
	assert.False(t, st.Over)
}

func TestTotals(t *testing.T) {
	a := New(fakeSource{txs: []core.Transaction{
		income(1, 100000),
		expense(2, "Food", 500),
		expense(3, "Transport", 1250),
		income(4, 2500),
	}})

	assert.Equal(t, int64(102500), a.TotalIncome().Cents)
	assert.Equal(t, int64(1750), a.TotalExpenses().Cents)
	assert.Equal(t, a.TotalIncome().Sub(a.TotalExpenses()), a.Balance())
	assert.Equal(t, core.Totals{
		Income:   core.Money{Cents: 102500},
		Expenses: core.Money{Cents: 1750},
		Balance:  core.Money{Cents: 100750},
	}, a.Dashboard())
}

func TestSpentByCategory(t *testing.T) {
	a := New(fakeSource{txs: []core.Transaction{
		expense(1, "Food", 500),
		expense(2, "Food", 725),
		expense(3, "Transport", 100),
		income(4, 999),
	}})
	assert.Equal(t, int64(1225), a.SpentByCategory("Food").Cents)
	assert.Equal(t, int64(100), a.SpentByCategory("Transport").Cents)
	assert.Zero(t, a.SpentByCategory("Housing").Cents)
	assert.Zero(t, a.SpentByCategory("Salary").Cents)
}

func TestBudgetStatusLevels(t *testing.T) {
	tests := []struct {
		name     string
		budget   int64
		spent    int64
		progress float64
		over     bool
		level    Level
	}{
		{"no budget", 0, 500, 0, false, LevelNone},
		{"under", 2000, 500, 25, false, LevelOK},
		{"exactly 80", 1000, 800, 80, false, LevelOK},
		{"warning", 1000, 850, 85, false, LevelWarning},
		{"at limit", 1000, 1000, 100, false, LevelOver},
		{"over is capped", 1000, 5000, 100, true, LevelOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fakeSource{
				txs:     []core.Transaction{expense(1, "Food", tt.spent)},
				budgets: core.Budgets{},
			}
			if tt.budget > 0 {
				src.budgets["Food"] = core.Money{Cents: tt.budget}
			}
			st := New(src).BudgetStatus("Food")

			assert.InDelta(t, tt.progress, st.Progress, 1e-9)
			assert.GreaterOrEqual(t, st.Progress, 0.0)
			assert.LessOrEqual(t, st.Progress, 100.0)
			assert.Equal(t, tt.over, st.Over)
			assert.Equal(t, tt.level, st.Level)
			assert.Equal(t, tt.budget-tt.spent, st.Remaining.Cents)
		})
	}
}

func TestBudgetStatusesCoverEveryExpenseCategory(t *testing.T) {
	a := New(fakeSource{budgets: core.Budgets{"Housing": {Cents: 100}}})
	rows := a.BudgetStatuses()
	require.Len(t, rows, len(core.DefaultCategories().Expense))
	assert.Equal(t, "Food", rows[0].Category)
	assert.Equal(t, "Housing", rows[4].Category)
	assert.Equal(t, LevelOK, rows[4].Level)
}

func TestExpenseBreakdownFirstSeenOrder(t *testing.T) {
	a := New(fakeSource{txs: []core.Transaction{
		expense(1, "Transport", 100),
		income(2, 5000),
		expense(3, "Food", 200),
		expense(4, "Transport", 50),
	}})
	assert.Equal(t, []core.CategoryAmount{
		{Name: "Transport", Amount: core.Money{Cents: 150}},
		{Name: "Food", Amount: core.Money{Cents: 200}},
	}, a.ExpenseBreakdown())
}

func TestSpentByCategorySumsToTotalExpenses(t *testing.T) {
	tests := []struct {
		name string
		txs  []core.Transaction
	}{
		{"empty", nil},
		{"income only", []core.Transaction{income(1, 5000)}},
		{"one category", []core.Transaction{expense(1, "Food", 500), expense(2, "Food", 1)}},
		{"mixed", []core.Transaction{
			expense(1, "Transport", 100),
			income(2, 5000),
			expense(3, "Food", 200),
			expense(4, "Housing", 99999),
			expense(5, "Transport", 50),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(fakeSource{txs: tt.txs})
			var sum core.Money
			for _, pair := range a.ExpenseBreakdown() {
				spent := a.SpentByCategory(pair.Name)
				assert.Equal(t, pair.Amount, spent)
				sum = sum.Add(spent)
			}
			assert.Equal(t, a.TotalExpenses(), sum)
			assert.Equal(t, a.TotalIncome().Sub(a.TotalExpenses()), a.Balance())
		})
	}
}

func TestLargeAmountsDoNotWrap(t *testing.T) {
	ctx := context.Background()
	store := ledger.Open(ctx, memory.New(), ledger.WithLogger(log.Discard()))
	for i := 0; i < 3; i++ {
		_, err := store.Add(ctx, ledger.Input{
			Description: "Windfall",
			Amount:      core.Money{Cents: core.MaxCents},
			Date:        core.NewDate(2024, 1, 1),
			Type:        core.Income,
			Category:    "Gift",
		})
		require.NoError(t, err)
	}

	a := New(store)
	assert.Equal(t, 3*core.MaxCents, a.TotalIncome().Cents)
	assert.True(t, a.Balance().IsPositive())

	st := New(fakeSource{
		txs:     []core.Transaction{expense(1, "Food", core.MaxCents), expense(2, "Food", core.MaxCents)},
		budgets: core.Budgets{"Food": {Cents: 1}},
	}).BudgetStatus("Food")
	assert.LessOrEqual(t, st.Progress, 100.0)
	assert.True(t, st.Over)
}

func TestAggregatorIgnoresLaterMutations(t *testing.T) {
	ctx := context.Background()
	store := ledger.Open(ctx, memory.New(), ledger.WithLogger(log.Discard()))
	a := New(store)

	_, err := store.Add(ctx, ledger.Input{
		Description: "Coffee",
		Amount:      core.Money{Cents: 500},
		Date:        core.NewDate(2024, 1, 10),
		Type:        core.Expense,
		Category:    "Food",
	})
	require.NoError(t, err)
	require.NoError(t, store.SetBudget(ctx, "Food", core.Money{Cents: 2000}))

	st := a.BudgetStatus("Food")
	assert.Zero(t, st.Budget.Cents)
	assert.Zero(t, st.Spent.Cents)
	assert.Equal(t, LevelNone, st.Level)
	assert.Zero(t, a.TotalExpenses().Cents)

	fresh := New(store).BudgetStatus("Food")
	assert.Equal(t, int64(2000), fresh.Budget.Cents)
	assert.Equal(t, int64(500), fresh.Spent.Cents)
}

// Budget first, then the coffee, as the walkthrough is written.
func TestCoffeeScenarioBudgetFirst(t *testing.T) {
	ctx := context.Background()
	store := ledger.Open(ctx, memory.New(), ledger.WithLogger(log.Discard()))

	require.NoError(t, store.SetBudget(ctx, "Food", core.Money{Cents: 2000}))
	_, err := store.Add(ctx, ledger.Input{
		Description: "Coffee",
		Amount:      core.Money{Cents: 500},
		Date:        core.NewDate(2024, 1, 10),
		Type:        core.Expense,
		Category:    "Food",
	})
	require.NoError(t, err)

	assert.Equal(t, Status{
		Category:  "Food",
		Budget:    core.Money{Cents: 2000},
		Spent:     core.Money{Cents: 500},
		Remaining: core.Money{Cents: 1500},
		Progress:  25,
		Level:     LevelOK,
	}, New(store).BudgetStatus("Food"))
}

// The coffee walkthrough against a real ledger.
func TestCoffeeScenario(t *testing.T) {
	ctx := context.Background()
	store := ledger.Open(ctx, memory.New(), ledger.WithLogger(log.Discard()))

	_, err := store.Add(ctx, ledger.Input{
		Description: "Coffee",
		Amount:      core.Money{Cents: 500},
		Date:        core.NewDate(2024, 1, 10),
		Type:        core.Expense,
		Category:    "Food",
	})
	require.NoError(t, err)

	a := New(store)
	assert.Equal(t, int64(500), a.TotalExpenses().Cents)
	assert.Equal(t, int64(500), a.SpentByCategory("Food").Cents)
	assert.Equal(t, int64(-500), a.Balance().Cents)

	require.NoError(t, store.SetBudget(ctx, "Food", core.Money{Cents: 2000}))
	st := New(store).BudgetStatus("Food")
	assert.Equal(t, int64(2000), st.Budget.Cents)
	assert.Equal(t, int64(500), st.Spent.Cents)
	assert.Equal(t, int64(1500), st.Remaining.Cents)
	assert.InDelta(t, 25.0, st.Progress, 1e-9)
	assert.False(t, st.Over)

	require.NoError(t, store.SetBudget(ctx, "Food", core.Money{}))
	assert.NotContains(t, store.Budgets(), "Food")
	assert.Equal(t, LevelNone, New(store).BudgetStatus("Food").Level)
}
