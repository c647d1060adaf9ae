package core

import (
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

const dateLayout = "2006-01-02"

type (
	// Type is the direction of a transaction.
	Type string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64  `json:"id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"` // signed: income >= 0, expense <= 0
		Date        Date   `json:"date"`
		Type        Type   `json:"type"`
		Category    string `json:"category"`
	}

	// Budgets maps an expense category to its spending limit.
	Budgets map[string]Money
)

// ParseType accepts "income" or "expense" in any case.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", Invalid("type", ErrInvalidType)
	}
	return t, nil
}

func (t Type) Valid() bool {
	return t == Income || t == Expense
}

func (t Type) String() string {
	return string(t)
}

// Signed returns the amount a magnitude takes for this type.
func (t Type) Signed(magnitude Money) Money {
	m := magnitude.Abs()
	if t == Expense {
		return Money{Cents: -m.Cents}
	}
	return m
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, Invalid("date", ErrInvalidDate)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return Invalid("date", ErrInvalidDate)
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		// Some browsers stored full timestamps.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*d = DateOf(t)
	return nil
}

// Validate checks the record against the category sets.
func (t Transaction) Validate(cats Categories) error {
	if strings.TrimSpace(t.Description) == "" {
		return Invalid("description", ErrEmptyDescription)
	}
	if !t.Type.Valid() {
		return Invalid("type", ErrInvalidType)
	}
	if t.Amount.IsZero() || !t.Amount.InRange() || (t.Type == Income) != t.Amount.IsPositive() {
		return Invalid("amount", ErrInvalidAmount)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !cats.Allows(t.Type, t.Category) {
		return Invalid("category", ErrInvalidCategory)
	}
	return nil
}

// Clone returns a copy that shares no storage with b.
func (b Budgets) Clone() Budgets {
	out := make(Budgets, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
