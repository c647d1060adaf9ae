package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"income", Income, true},
		{" Expense ", Expense, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseType(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidType, tc.in)
		}
	}
}

func TestTypeSigned(t *testing.T) {
	assert.Equal(t, Money{Cents: 500}, Income.Signed(Money{Cents: 500}))
	assert.Equal(t, Money{Cents: -500}, Expense.Signed(Money{Cents: 500}))
	// the sign of the input never leaks through
	assert.Equal(t, Money{Cents: 500}, Income.Signed(Money{Cents: -500}))
	assert.Equal(t, Money{Cents: -500}, Expense.Signed(Money{Cents: -500}))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 1, 10), d)
	assert.Equal(t, "2024-01-10", d.String())

	_, err = ParseDate("10/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.True(t, IsValidation(err))
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 3, 5))
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-03-05"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T10:00:00Z"`), &d))
	assert.Equal(t, NewDate(2024, 3, 5), d)

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
}

func TestTransactionValidate(t *testing.T) {
	cats := DefaultCategories()
	good := Transaction{
		ID:          1,
		Description: "Coffee",
		Amount:      Money{Cents: -500},
		Date:        NewDate(2024, 1, 10),
		Type:        Expense,
		Category:    "Food",
	}
	require.NoError(t, good.Validate(cats))

	bads := map[string]func(*Transaction){
		"empty description": func(tx *Transaction) { tx.Description = "  " },
		"bad type":          func(tx *Transaction) { tx.Type = "transfer" },
		"zero amount":       func(tx *Transaction) { tx.Amount = Money{} },
		"sign mismatch":     func(tx *Transaction) { tx.Amount = Money{Cents: 500} },
		"amount too large":  func(tx *Transaction) { tx.Amount = Money{Cents: -MaxCents - 1} },
		"zero date":         func(tx *Transaction) { tx.Date = Date{} },
		"income category":   func(tx *Transaction) { tx.Category = "Salary" },
	}
	for name, mutate := range bads {
		t.Run(name, func(t *testing.T) {
			tx := good
			mutate(&tx)
			err := tx.Validate(cats)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestTransactionJSONLayout(t *testing.T) {
	tx := Transaction{
		ID:          42,
		Description: "Coffee",
		Amount:      Money{Cents: -550},
		Date:        NewDate(2024, 1, 10),
		Type:        Expense,
		Category:    "Food",
	}
	b, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"description":"Coffee","amount":-5.5,"date":"2024-01-10","type":"expense","category":"Food"}`, string(b))

	var back Transaction
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, tx, back)
}

func TestCategories(t *testing.T) {
	cats := DefaultCategories()
	assert.True(t, cats.Allows(Expense, "Food"))
	assert.False(t, cats.Allows(Income, "Food"))
	assert.True(t, cats.Allows(Income, "Gift"))
	assert.False(t, cats.Allows("other", "Gift"))
	assert.Nil(t, cats.For("other"))

	// For hands out a copy
	list := cats.For(Expense)
	list[0] = "Changed"
	assert.Equal(t, "Food", cats.Expense[0])
}

func TestStorageError(t *testing.T) {
	err := error(&StorageError{Op: "save", Key: "transactions", Err: assert.AnError})
	assert.True(t, IsStorageError(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "save transactions")
	assert.False(t, IsStorageError(ErrNotFound))
}
