package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"saldo/internal/config"
)

var version = "dev"

// NewRootCmd builds the saldo command tree. Each call has its own viper
// instance, so commands can be executed repeatedly in one process.
func NewRootCmd() *cobra.Command {
	e := newEnv()

	root := &cobra.Command{
		Use:   "saldo",
		Short: "Personal income, expense and budget tracker",
		Long: `saldo records income and expenses, tracks budgets per expense category
and summarises where the money goes.

Data is kept in DATA_DIR as JSON files by default, or in SQLite or memory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// One-shot commands keep stderr quiet unless asked otherwise.
			if cmd.Name() != "serve" {
				e.v.SetDefault(config.KeyLogLevel, "warn")
			}
			return e.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&e.cfgFile, "config", "", "config file (default: ./saldo.yaml)")
	flags.StringVar(&e.envFile, "env-file", "", "dotenv file to load (default: ./.env)")
	flags.String("backend", "", "storage backend: file, sqlite or memory")
	flags.String("data-dir", "", "directory of the JSON data files")
	flags.String("db", "", "SQLite database path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	for key, name := range map[string]string{
		config.KeyDataBackend:  "backend",
		config.KeyDataDir:      "data-dir",
		config.KeySQLiteDBPath: "db",
		config.KeyLogLevel:     "log-level",
		config.KeyLogFormat:    "log-format",
	} {
		_ = e.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		addCmd(e),
		editCmd(e),
		rmCmd(e),
		showCmd(e),
		listCmd(e),
		budgetCmd(e),
		summaryCmd(e),
		chartCmd(e),
		serveCmd(e),
	)
	return root
}

// withLedger opens the ledger for the duration of fn.
func withLedger(e *env, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := e.open(cmd.Context()); err != nil {
			return err
		}
		defer e.close()
		return fn(cmd, args)
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(ErrorIcon+" "+err.Error()))
		return 1
	}
	return 0
}
