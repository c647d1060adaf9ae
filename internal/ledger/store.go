// Package ledger owns the transactions and budgets and persists both after
// every mutation.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/notify"
	"saldo/internal/storage"
)

// Store is the ledger. All methods are safe for concurrent use; a mutation
// and its persistence write happen under one lock.
type Store struct {
	mu      sync.Mutex
	kv      storage.KV
	cats    core.Categories
	txs     []core.Transaction
	budgets core.Budgets
	ids     IDSource

	pub    notify.Publisher
	logger *log.Logger
}

type Option func(*Store)

// WithIDSource replaces the default sequence seeded from the loaded ids.
func WithIDSource(ids IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

func WithPublisher(p notify.Publisher) Option {
	return func(s *Store) { s.pub = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentLedger) }
}

// Open reads both collections from kv. Missing or malformed data leaves
// the ledger empty and is logged, never returned.
func Open(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		cats:    core.DefaultCategories(),
		budgets: core.Budgets{},
		pub:     notify.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.Config{Handler: slog.Default().Handler(), Component: log.ComponentLedger})
	}

	txs, err := storage.LoadTransactions(ctx, kv)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not load transactions, starting empty",
			log.FieldOperation, log.OpLoad, log.FieldKey, storage.KeyTransactions, log.FieldError, err)
	}
	budgets, err := storage.LoadBudgets(ctx, kv)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not load budgets, starting empty",
			log.FieldOperation, log.OpLoad, log.FieldKey, storage.KeyBudgets, log.FieldError, err)
	}

	s.txs = s.sanitizeTransactions(ctx, txs)
	s.budgets = s.sanitizeBudgets(ctx, budgets)

	if s.ids == nil {
		var last int64
		for _, tx := range s.txs {
			last = max(last, tx.ID)
		}
		s.ids = NewSequence(last)
	}

	s.logger.InfoContext(ctx, "Ledger loaded",
		"transactions", len(s.txs), "budgets", len(s.budgets))
	return s
}

func (s *Store) sanitizeTransactions(ctx context.Context, txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	seen := make(map[int64]bool, len(txs))
	for _, tx := range txs {
		if tx.Type.Valid() {
			tx.Amount = tx.Type.Signed(tx.Amount)
		}
		err := tx.Validate(s.cats)
		if err == nil && (tx.ID < 0 || seen[tx.ID]) {
			err = errors.New("duplicate or negative id")
		}
		if err != nil {
			s.logger.WarnContext(ctx, "Dropping stored transaction",
				log.FieldTxID, tx.ID, log.FieldError, err)
			continue
		}
		seen[tx.ID] = true
		out = append(out, tx)
	}
	return out
}

func (s *Store) sanitizeBudgets(ctx context.Context, b core.Budgets) core.Budgets {
	out := make(core.Budgets, len(b))
	for cat, limit := range b {
		if !s.cats.Allows(core.Expense, cat) || !limit.IsPositive() || !limit.InRange() {
			s.logger.WarnContext(ctx, "Dropping stored budget",
				log.FieldCategory, cat, log.FieldAmountCents, limit.Cents)
			continue
		}
		out[cat] = limit
	}
	return out
}

// Add validates in, assigns a fresh id and appends the record. A
// *core.StorageError is returned alongside the record when the write fails;
// the record stays in the ledger.
func (s *Store) Add(ctx context.Context, in Input) (core.Transaction, error) {
	if err := in.check(s.cats); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	tx := in.transaction(s.nextID())
	s.txs = append(s.txs, tx)
	err := s.persist(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction added", log.NewFields().
		WithOperation(log.OpCreate).
		WithTransaction(tx.ID, tx.Type.String(), tx.Category, tx.Amount.Cents).
		ToSlice()...)
	s.publish(ctx, notify.TransactionCreated, tx.ID, tx.Category)
	return tx, err
}

// Update replaces every mutable field of the record with id.
func (s *Store) Update(ctx context.Context, id int64, in Input) (core.Transaction, error) {
	if err := in.check(s.cats); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Transaction{}, core.ErrNotFound
	}
	tx := in.transaction(id)
	s.txs[i] = tx
	err := s.persist(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction updated", log.NewFields().
		WithOperation(log.OpUpdate).
		WithTransaction(tx.ID, tx.Type.String(), tx.Category, tx.Amount.Cents).
		ToSlice()...)
	s.publish(ctx, notify.TransactionUpdated, tx.ID, tx.Category)
	return tx, err
}

// Remove deletes the record with id. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.txs[i]
	s.txs = slices.Delete(s.txs, i, i+1)
	err := s.persist(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction removed",
		log.FieldOperation, log.OpDelete, log.FieldTxID, id)
	s.publish(ctx, notify.TransactionRemoved, id, removed.Category)
	return err
}

func (s *Store) Get(id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.txs[i], nil
}

// ListByType returns the records of type t, newest date first. Records
// sharing a date keep insertion order.
func (s *Store) ListByType(t core.Type) []core.Transaction {
	s.mu.Lock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	s.mu.Unlock()

	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

// Transactions returns a copy of every record in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs)
}

// SetBudget sets the limit for an expense category. A limit <= 0 removes
// the budget; removing a budget that is not set changes nothing.
func (s *Store) SetBudget(ctx context.Context, category string, limit core.Money) error {
	if !s.cats.Allows(core.Expense, category) {
		return core.Invalid("category", core.ErrInvalidCategory)
	}
	if !limit.InRange() {
		return core.Invalid("budget", core.ErrInvalidAmount)
	}

	kind := notify.BudgetSet
	s.mu.Lock()
	if limit.IsPositive() {
		s.budgets[category] = limit
	} else {
		if _, ok := s.budgets[category]; !ok {
			s.mu.Unlock()
			return nil
		}
		delete(s.budgets, category)
		kind = notify.BudgetCleared
	}
	err := s.persist(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Budget changed",
		log.FieldOperation, log.OpSetBudget,
		log.FieldCategory, category,
		log.FieldAmountCents, max(limit.Cents, 0))
	s.publish(ctx, kind, 0, category)
	return err
}

// Budget returns the limit for category, zero when none is set.
func (s *Store) Budget(category string) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets[category]
}

// Snapshot returns copies of the records and budgets taken under one lock,
// so the two always describe the same ledger state.
func (s *Store) Snapshot() ([]core.Transaction, core.Budgets) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs), s.budgets.Clone()
}

func (s *Store) Budgets() core.Budgets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.Clone()
}

func (s *Store) Categories() core.Categories {
	return core.Categories{
		Expense: s.cats.For(core.Expense),
		Income:  s.cats.For(core.Income),
	}
}

func (s *Store) Close() error {
	return errors.Join(s.pub.Close(), s.kv.Close())
}

func (s *Store) index(id int64) int {
	return slices.IndexFunc(s.txs, func(tx core.Transaction) bool { return tx.ID == id })
}

func (s *Store) nextID() int64 {
	for {
		id := s.ids.Next()
		if s.index(id) < 0 {
			return id
		}
	}
}

// persist writes both collections in full. Called with s.mu held.
func (s *Store) persist(ctx context.Context) error {
	err := errors.Join(
		storage.SaveTransactions(ctx, s.kv, s.txs),
		storage.SaveBudgets(ctx, s.kv, s.budgets),
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger",
			log.FieldOperation, log.OpSave, log.FieldError, err)
	}
	return err
}

func (s *Store) publish(ctx context.Context, kind notify.Kind, id int64, category string) {
	if err := s.pub.Publish(ctx, notify.NewEvent(kind, id, category)); err != nil {
		// The mutation is already applied and saved.
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, log.OpPublish, "kind", kind, log.FieldError, err)
	}
}
