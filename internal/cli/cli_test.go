package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return runContext(context.Background(), t, dir, args...)
}

func runContext(ctx context.Context, t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--backend", "file",
		"--data-dir", dir,
		"--env-file", filepath.Join(dir, "test.env"),
	}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestAddListAndPersist(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "expense", "5", "Morning", "coffee", "-c", "Food", "-d", "2024-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Transaction added!")
	assert.Contains(t, out, "id 1")

	_, err = run(t, dir, "add", "income", "1500", "Salary", "-c", "Salary", "-d", "2024-01-01")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "transactions.json"))

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Income")
	assert.Contains(t, out, "Expenses")
	assert.Contains(t, out, "Morning coffee")
	assert.Contains(t, out, "-₹5.00")
	assert.Contains(t, out, "₹1500.00")

	out, err = run(t, dir, "list", "--type", "income")
	require.NoError(t, err)
	assert.NotContains(t, out, "Morning coffee")
}

func TestRootHelp(t *testing.T) {
	root := NewRootCmd()
	assert.Contains(t, root.Long, "tracks budgets per expense category")
	assert.NotContains(t, root.Long, "monthly")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "add", "income", "10", "Refund", "-c", "Food")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
	assert.Equal(t, "Please choose a valid category.", err.Error())

	_, err = run(t, dir, "add", "expense", "0", "Bus", "-c", "Transport")
	require.Error(t, err)

	_, err = run(t, dir, "add", "expense", "3")
	assert.Error(t, err, "description is required")

	out, err := run(t, dir, "list", "-t", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions yet.")
}

func TestEditShowRemove(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "expense", "2.50", "Bus", "-c", "Transport", "-d", "2024-02-01")
	require.NoError(t, err)

	out, err := run(t, dir, "edit", "1", "--amount", "7.25", "--description", "Taxi")
	require.NoError(t, err)
	assert.Contains(t, out, "Transaction updated!")

	out, err = run(t, dir, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Taxi")
	assert.Contains(t, out, "-₹7.25")
	assert.Contains(t, out, "Transport")
	assert.Contains(t, out, "2024-02-01")

	out, err = run(t, dir, "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Transaction removed.")

	_, err = run(t, dir, "show", "1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = run(t, dir, "edit", "1", "--amount", "1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = run(t, dir, "show", "abc")
	assert.Error(t, err)
}

func TestBudgetsSummaryAndChart(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"add", "income", "100", "Gift", "-c", "Gift", "-d", "2024-03-01"},
		{"add", "expense", "5", "Coffee", "-c", "Food", "-d", "2024-03-02"},
		{"add", "expense", "15", "Train", "-c", "Transport", "-d", "2024-03-03"},
	} {
		_, err := run(t, dir, args...)
		require.NoError(t, err)
	}

	out, err := run(t, dir, "budget", "set", "Food", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget for Food updated.")

	out, err = run(t, dir, "budget", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "₹4.00")
	assert.Contains(t, out, "-₹1.00")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "no budget")

	_, err = run(t, dir, "budget", "set", "Salary", "10")
	assert.ErrorIs(t, err, core.ErrInvalidCategory)

	_, err = run(t, dir, "budget", "set", "Food")
	require.NoError(t, err)
	out, err = run(t, dir, "budget", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "₹4.00")

	out, err = run(t, dir, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "₹100.00")
	assert.Contains(t, out, "₹20.00")
	assert.Contains(t, out, "₹80.00")

	out, err = run(t, dir, "chart")
	require.NoError(t, err)
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "25%")
	assert.Contains(t, out, "75%")
}

func TestEmptyChart(t *testing.T) {
	out, err := run(t, t.TempDir(), "chart")
	require.NoError(t, err)
	assert.Contains(t, out, "No expenses yet.")
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("CURRENCY_SYMBOL", "€")
	dir := t.TempDir()
	_, err := run(t, dir, "add", "income", "3", "Tip", "-c", "Gift", "-d", "2024-01-01")
	require.NoError(t, err)

	out, err := run(t, dir, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "€3.00")
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.env"), []byte("LOG_FORMAT=yaml\n"), 0o600))
	// Registers cleanup; godotenv only sets variables that are absent.
	t.Setenv("LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("LOG_FORMAT"))

	_, err := run(t, dir, "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format 'yaml'")
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := run(t, t.TempDir(), "--backend", "cloud", "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "invalid data backend 'cloud'")
}

func TestSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ledger.db")
	_, err := run(t, dir, "--backend", "sqlite", "--db", db, "add", "expense", "9", "Cinema", "-c", "Entertainment")
	require.NoError(t, err)

	out, err := run(t, dir, "--backend", "sqlite", "--db", db, "list", "-t", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Cinema")
	assert.NoFileExists(t, filepath.Join(dir, "transactions.json"))
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServeUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	port := strconv.Itoa(freePort(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := runContext(ctx, t, dir, "serve", "--port", port)
		done <- err
	}()

	url := "http://127.0.0.1:" + port + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
