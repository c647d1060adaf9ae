// Package app turns raw form input into ledger operations and shapes the
// read models that user interfaces render.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saldo/internal/aggregate"
	"saldo/internal/core"
	"saldo/internal/ledger"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Kind    NoticeKind `json:"type"`
	Message string     `json:"message"`
}

// Result is the outcome of a mutation request.
type Result struct {
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Notice      Notice            `json:"notice"`
}

// Submission is the raw content of the transaction form. A nil ExistingID
// creates a record; otherwise the record with that id is replaced.
type Submission struct {
	Type        string
	Description string
	AmountText  string
	DateText    string
	Category    string
	ExistingID  *int64
}

type Controller struct {
	store *ledger.Store
	now   func() time.Time
}

type Option func(*Controller)

// WithClock sets the clock used for submissions without a date.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(store *ledger.Store, opts ...Option) *Controller {
	c := &Controller{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitTransaction parses sub and adds or updates a record. Validation and
// not-found errors are returned with an error notice; a storage failure
// keeps the change and returns a warning notice with a nil error.
func (c *Controller) SubmitTransaction(ctx context.Context, sub Submission) (Result, error) {
	in, err := c.parse(sub)
	if err != nil {
		return failure(err), err
	}

	var tx core.Transaction
	msg := "Transaction added!"
	if sub.ExistingID != nil {
		tx, err = c.store.Update(ctx, *sub.ExistingID, in)
		msg = "Transaction updated!"
	} else {
		tx, err = c.store.Add(ctx, in)
	}
	return settle(&tx, msg, err)
}

func (c *Controller) parse(sub Submission) (ledger.Input, error) {
	t, err := core.ParseType(sub.Type)
	if err != nil {
		return ledger.Input{}, err
	}
	amount, err := core.ParseAmount(sub.AmountText)
	if err != nil {
		return ledger.Input{}, err
	}
	date := core.DateOf(c.now())
	if sub.DateText != "" {
		if date, err = core.ParseDate(sub.DateText); err != nil {
			return ledger.Input{}, err
		}
	}
	return ledger.Input{
		Description: sub.Description,
		Amount:      amount,
		Date:        date,
		Type:        t,
		Category:    sub.Category,
	}, nil
}

func (c *Controller) RequestDelete(ctx context.Context, id int64) (Result, error) {
	return settle(nil, "Transaction removed.", c.store.Remove(ctx, id))
}

// RequestEdit returns the record to prefill the edit form.
func (c *Controller) RequestEdit(id int64) (core.Transaction, error) {
	return c.store.Get(id)
}

// SetBudgetInput parses valueText as a limit. Empty text clears the budget.
func (c *Controller) SetBudgetInput(ctx context.Context, category, valueText string) (Result, error) {
	limit, err := core.ParseLimit(valueText)
	if err != nil {
		return failure(err), err
	}
	return settle(nil, fmt.Sprintf("Budget for %s updated.", category), c.store.SetBudget(ctx, category, limit))
}

func (c *Controller) Transactions(t core.Type) []core.Transaction {
	return c.store.ListByType(t)
}

func (c *Controller) Dashboard() core.Totals {
	return aggregate.New(c.store).Dashboard()
}

func (c *Controller) BudgetRows() []aggregate.Status {
	return aggregate.New(c.store).BudgetStatuses()
}

func (c *Controller) Chart() []core.CategoryAmount {
	return aggregate.New(c.store).ExpenseBreakdown()
}

func (c *Controller) Categories(t core.Type) []string {
	return c.store.Categories().For(t)
}

func settle(tx *core.Transaction, msg string, err error) (Result, error) {
	switch {
	case err == nil:
		return Result{Transaction: tx, Notice: Notice{Kind: NoticeSuccess, Message: msg}}, nil
	case core.IsStorageError(err):
		return Result{
			Transaction: tx,
			Notice:      Notice{Kind: NoticeWarning, Message: msg + " Changes could not be saved and will be lost on restart."},
		}, nil
	default:
		return failure(err), err
	}
}

func failure(err error) Result {
	return Result{Notice: Notice{Kind: NoticeError, Message: Describe(err)}}
}

// Describe renders err as a user-facing sentence.
func Describe(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return "Please enter a description."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Please enter a valid amount greater than zero."
	case errors.Is(err, core.ErrInvalidDate):
		return "Please enter a date as YYYY-MM-DD."
	case errors.Is(err, core.ErrInvalidType):
		return "Type must be income or expense."
	case errors.Is(err, core.ErrInvalidCategory):
		return "Please choose a valid category."
	case errors.Is(err, core.ErrNotFound):
		return "Transaction not found."
	}
	return "Something went wrong."
}
