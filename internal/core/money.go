// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Parsing and JSON encoding go through
// shopspring/decimal so that user text and persisted numbers never pass
// through a float.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents bounds every amount and budget the ledger accepts (10^13 in
// major units). Sums of any realistic number of records stay far below
// the int64 range.
const MaxCents int64 = 1_000_000_000_000_000

// ParseAmount converts a user-entered magnitude to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up to two places. Signs are rejected: the transaction type
// decides the sign. Zero is rejected as well.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235
//	ParseAmount("-1")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, Invalid("amount", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, Invalid("amount", ErrInvalidAmount)
	}
	m, ok := fromDecimal(d, MaxCents)
	if !ok || m.Cents <= 0 {
		return Money{}, Invalid("amount", ErrInvalidAmount)
	}
	return m, nil
}

// ParseLimit is like ParseAmount but maps empty text to zero, which clears
// a budget.
func ParseLimit(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return Money{}, Invalid("budget", ErrInvalidAmount)
	}
	m, ok := fromDecimal(d, MaxCents)
	if !ok {
		return Money{}, Invalid("budget", ErrInvalidAmount)
	}
	return m, nil
}

// fromDecimal rounds d to cents and rejects magnitudes above limit.
func fromDecimal(d decimal.Decimal, limit int64) (Money, bool) {
	c := d.Shift(2).Round(0)
	if !c.IsInteger() || c.Abs().GreaterThan(decimal.New(limit, 0)) {
		return Money{}, false
	}
	return Money{Cents: c.IntPart()}, true
}

// InRange reports whether the magnitude of m is at most MaxCents.
func (m Money) InRange() bool {
	return m.Cents >= -MaxCents && m.Cents <= MaxCents
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add and Sub saturate at the int64 bounds instead of wrapping.
func (m Money) Add(o Money) Money {
	sum := m.Cents + o.Cents
	switch {
	case o.Cents > 0 && sum < m.Cents:
		sum = math.MaxInt64
	case o.Cents < 0 && sum > m.Cents:
		sum = math.MinInt64
	}
	return Money{Cents: sum}
}

func (m Money) Sub(o Money) Money {
	if o.Cents == math.MinInt64 {
		return m.Add(Money{Cents: math.MaxInt64}).Add(Money{Cents: 1})
	}
	return m.Add(Money{Cents: -o.Cents})
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsPositive() bool { return m.Cents > 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// String renders the value with two decimals, e.g. "-5.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders the value with a currency symbol, sign first: "-₹5.00".
func (m Money) Format(symbol string) string {
	if m.Cents < 0 {
		return "-" + symbol + m.Abs().String()
	}
	return symbol + m.String()
}

// MarshalJSON writes a plain number in major units (5, -12.5).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a number or a quoted number. Values outside
// MaxCents but within int64 decode, so that loading can drop the one record
// through Validate instead of the whole collection.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	v, ok := fromDecimal(d, math.MaxInt64/2)
	if !ok {
		return ErrInvalidAmount
	}
	*m = v
	return nil
}
