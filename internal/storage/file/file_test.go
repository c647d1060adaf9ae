package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/storage"
)

func TestPutWritesOneFilePerKey(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, storage.KeyTransactions, []byte(`[]`)))
	require.NoError(t, s.Put(ctx, storage.KeyBudgets, []byte(`{"Food":20}`)))

	data, err := os.ReadFile(filepath.Join(dir, "categoryBudgets.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Food":20}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestGetMissing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Get(context.Background(), storage.KeyTransactions)
	assert.ErrorIs(t, err, storage.ErrNoData)
}

func TestRejectsPathKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "../x", "a/b", ".hidden"} {
		assert.Error(t, s.Put(context.Background(), key, []byte(`1`)), key)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
