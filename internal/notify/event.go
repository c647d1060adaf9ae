// Package notify publishes ledger change events so that out-of-process
// views can refresh after a mutation.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

type Kind string

const (
	TransactionCreated Kind = "transaction.created"
	TransactionUpdated Kind = "transaction.updated"
	TransactionRemoved Kind = "transaction.removed"
	BudgetSet          Kind = "budget.set"
	BudgetCleared      Kind = "budget.cleared"
)

// Event is a lightweight change message. Consumers re-read the ledger for
// details; the event only says what changed.
type Event struct {
	Kind      Kind      `json:"kind"`
	ID        int64     `json:"id,omitempty"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(kind Kind, id int64, category string) Event {
	return Event{Kind: kind, ID: id, Category: category, Timestamp: time.Now().UTC()}
}

// RoutingKey is the kind itself, so consumers can bind to a subset.
func (e Event) RoutingKey() string {
	return string(e.Kind)
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher receives events after a mutation has been applied and persisted.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Kinds lists the kinds recorded so far, in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}
