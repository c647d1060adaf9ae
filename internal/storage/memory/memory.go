package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"saldo/internal/storage"
)

// Store keeps values in process memory. Writes are lost on exit.
type Store struct {
	mu     sync.Mutex
	values map[string][]byte
	// FailPut, when set, is returned by every Put. Tests use it to simulate
	// a broken disk.
	FailPut error
}

var _ storage.KV = (*Store)(nil)

func New() *Store {
	return &Store{values: map[string][]byte{}}
}

// NewFromFiles seeds the store from <base>/<key>.json files when present.
// The files are never written back.
func NewFromFiles(base string) *Store {
	s := New()
	for _, key := range []string{storage.KeyTransactions, storage.KeyBudgets} {
		data, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil || len(data) == 0 {
			continue
		}
		s.values[key] = data
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNoData
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil {
		return s.FailPut
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Set stores raw bytes directly, bypassing FailPut.
func (s *Store) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
}

func (s *Store) Close() error { return nil }
