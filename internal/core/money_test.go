package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"10000000000000", MaxCents, true},
		{"10000000000000.01", 0, false},
		{"46116860184273879.03", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			require.NoError(t, err, "%q", tc.in)
			assert.Equal(t, tc.out, got.Cents, "%q", tc.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, "%q", tc.in)
		}
	}
}

func TestParseLimit(t *testing.T) {
	m, err := ParseLimit("")
	require.NoError(t, err)
	assert.True(t, m.IsZero())

	m, err = ParseLimit("20")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), m.Cents)

	m, err = ParseLimit("-3")
	require.NoError(t, err)
	assert.Equal(t, int64(-300), m.Cents)

	_, err = ParseLimit("lots")
	assert.True(t, IsValidation(err))

	_, err = ParseLimit("10000000000000.01")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMoneyArithmeticSaturates(t *testing.T) {
	maxM := Money{Cents: math.MaxInt64}
	minM := Money{Cents: math.MinInt64}

	assert.Equal(t, int64(700), Money{Cents: 500}.Add(Money{Cents: 200}).Cents)
	assert.Equal(t, int64(300), Money{Cents: 500}.Sub(Money{Cents: 200}).Cents)
	assert.Equal(t, maxM, maxM.Add(Money{Cents: 1}))
	assert.Equal(t, minM, minM.Add(Money{Cents: -1}))
	assert.Equal(t, minM, minM.Sub(Money{Cents: 1}))
	assert.Equal(t, maxM, Money{}.Sub(minM))
	assert.True(t, Money{Cents: MaxCents}.InRange())
	assert.False(t, Money{Cents: -MaxCents - 1}.InRange())
}

func TestMoneyJSONRange(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`46116860184273879.03`), &m))
	assert.False(t, m.InRange())

	assert.ErrorIs(t, json.Unmarshal([]byte(`1e20`), &m), ErrInvalidAmount)
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "5.00", Money{Cents: 500}.String())
	assert.Equal(t, "-0.05", Money{Cents: -5}.String())
	assert.Equal(t, "₹12.50", Money{Cents: 1250}.Format("₹"))
	assert.Equal(t, "-₹5.00", Money{Cents: -500}.Format("₹"))
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Budgets{"Food": {Cents: 2000}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Food":20}`, string(b))

	var got Budgets
	require.NoError(t, json.Unmarshal([]byte(`{"Food":20,"Housing":"1500.5"}`), &got))
	assert.Equal(t, Budgets{"Food": {Cents: 2000}, "Housing": {Cents: 150050}}, got)

	var m Money
	assert.Error(t, json.Unmarshal([]byte(`"ten"`), &m))
}
