// Package cli implements the saldo command line: one ledger operation per
// command, plus serve for the HTTP API.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"saldo/internal/app"
	"saldo/internal/backend"
	"saldo/internal/config"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

// env is the state shared by every command of one invocation.
type env struct {
	v       *viper.Viper
	cfgFile string
	envFile string

	cfg    *config.Config
	logger *log.Logger
	store  *ledger.Store
	ctrl   *app.Controller
}

func newEnv() *env {
	return &env{v: config.NewViper()}
}

// setup loads .env, the optional config file and the environment, then
// validates the result and builds the logger.
func (e *env) setup(cmd *cobra.Command) error {
	var envFiles []string
	if e.envFile != "" {
		envFiles = append(envFiles, e.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return err
	}
	if err := config.ReadFile(e.v, e.cfgFile); err != nil {
		return err
	}

	e.cfg = config.FromViper(e.v)
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	level, _ := log.ParseLevel(e.cfg.LogLevel)
	e.logger = log.New(log.Config{
		Level:     level,
		Format:    e.cfg.LogFormat,
		Component: log.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
	log.SetDefault(e.logger)
	return nil
}

// open builds the ledger on the configured backend.
func (e *env) open(ctx context.Context) error {
	store, err := backend.OpenLedger(ctx, e.cfg, e.logger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	e.store = store
	e.ctrl = app.New(store)
	return nil
}

func (e *env) close() {
	if e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close ledger", log.FieldError, err)
	}
	e.store, e.ctrl = nil, nil
}

// userError shows the user-facing description of a ledger error while
// keeping the cause for errors.Is.
type userError struct{ err error }

func (e userError) Error() string { return app.Describe(e.err) }
func (e userError) Unwrap() error { return e.err }

// report prints the notice of a successful mutation. A storage warning is
// printed too but does not fail the command.
func report(w io.Writer, res app.Result, err error) error {
	if err != nil {
		return userError{err}
	}
	fmt.Fprintln(w, FormatNotice(res.Notice))
	return nil
}
