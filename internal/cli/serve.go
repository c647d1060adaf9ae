package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"saldo/internal/config"
	apphttp "saldo/internal/http"
	"saldo/internal/log"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger as a JSON API until interrupted",
		Args:  cobra.NoArgs,
		RunE: withLedger(e, func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		}),
	}
	cmd.Flags().String("port", "", "listen port (default: 8081)")
	_ = e.v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, e *env) error {
	srv := apphttp.NewServer(apphttp.Config{
		Addr:               net.JoinHostPort("", e.cfg.Port),
		RateLimitPerMinute: e.cfg.RateLimitPerMinute,
		CurrencySymbol:     e.cfg.CurrencySymbol,
		Logger:             e.logger,
	}, e.ctrl)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.logger.InfoContext(gctx, "Starting saldo server",
			"port", e.cfg.Port, "backend", e.cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		e.logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		e.logger.Error("Server error", log.FieldError, err)
		return err
	}
	e.logger.Info("Server stopped gracefully")
	return nil
}
