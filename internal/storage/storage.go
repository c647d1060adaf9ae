// Package storage persists the ledger as two independent JSON values.
//
// Backends only move bytes under a key; encoding and the rules for missing
// or corrupt data live here so every backend behaves the same.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"saldo/internal/core"
)

// Keys under which the two values are stored.
const (
	KeyTransactions = "transactions"
	KeyBudgets      = "categoryBudgets"
)

var (
	// ErrNoData is returned by KV.Get when nothing is stored under a key.
	ErrNoData = errors.New("no data stored")
	// ErrMalformed marks a value that could not be decoded.
	ErrMalformed = errors.New("malformed data")
)

// KV is the durable key/value contract every backend implements.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// LoadTransactions reads the transaction collection. A missing key yields an
// empty slice and no error.
func LoadTransactions(ctx context.Context, kv KV) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := load(ctx, kv, KeyTransactions, &txs); err != nil {
		return []core.Transaction{}, err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// SaveTransactions rewrites the whole transaction collection.
func SaveTransactions(ctx context.Context, kv KV, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return save(ctx, kv, KeyTransactions, txs)
}

// LoadBudgets reads the budget map. A missing key yields an empty map.
func LoadBudgets(ctx context.Context, kv KV) (core.Budgets, error) {
	var b core.Budgets
	if err := load(ctx, kv, KeyBudgets, &b); err != nil {
		return core.Budgets{}, err
	}
	if b == nil {
		b = core.Budgets{}
	}
	return b, nil
}

// SaveBudgets rewrites the whole budget map.
func SaveBudgets(ctx context.Context, kv KV, b core.Budgets) error {
	if b == nil {
		b = core.Budgets{}
	}
	return save(ctx, kv, KeyBudgets, b)
}

func load(ctx context.Context, kv KV, key string, v any) error {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNoData) || (err == nil && len(data) == 0) {
		return nil
	}
	if err != nil {
		return &core.StorageError{Op: "load", Key: key, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &core.StorageError{Op: "load", Key: key, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return nil
}

func save(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &core.StorageError{Op: "save", Key: key, Err: err}
	}
	if err := kv.Put(ctx, key, data); err != nil {
		return &core.StorageError{Op: "save", Key: key, Err: err}
	}
	return nil
}
