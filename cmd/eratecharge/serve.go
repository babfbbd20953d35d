package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bher20/eratecharge/internal/api"
	"github.com/bher20/eratecharge/internal/auth"
	"github.com/bher20/eratecharge/internal/billing"
	"github.com/bher20/eratecharge/internal/config"
	"github.com/bher20/eratecharge/internal/cron"
	"github.com/bher20/eratecharge/internal/logging"
	"github.com/bher20/eratecharge/internal/migrate"
	"github.com/bher20/eratecharge/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// app is the wired service: ledger, billing, auth, prune scheduler and HTTP
// server. close releases them in reverse order.
type app struct {
	server  *http.Server
	billing *billing.Service
	sched   *cron.Scheduler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log := logging.Named("serve")
	a := &app{}

	if cfg.DB.AutoMigrate && (cfg.DB.Driver == config.DriverSQLite || cfg.DB.Driver == config.DriverPostgres) {
		if err := migrate.Up(ctx, cfg.DB.Driver, cfg.DB.DSN); err != nil {
			log.Warn("auto-migration failed", zap.Error(err))
		}
	}

	st, err := storage.Open(ctx, storage.Config{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN})
	if err != nil {
		return nil, fmt.Errorf("open ledger (driver=%s): %w", cfg.DB.Driver, err)
	}
	if st != nil {
		a.closers = append(a.closers, func() { _ = st.Close() })
	}

	bcfg := billing.Config{Strict: cfg.Strict, Driver: cfg.DB.Driver}
	if st != nil {
		a.billing = billing.NewServiceWithStorage(bcfg, st)
	} else {
		a.billing = billing.NewService(bcfg)
	}

	authSvc, err := auth.NewService(cfg.Auth.Tokens)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("auth: %w", err)
	}
	if !authSvc.Enabled() {
		log.Warn("no API tokens configured; charge endpoints are unauthenticated")
	}

	if retention := cfg.RetentionDuration(); retention > 0 && a.billing.LedgerEnabled() {
		sched, err := cron.Start(ctx, a.billing, cfg.Ledger.PruneSchedule, retention)
		if err != nil {
			a.close()
			return nil, err
		}
		a.sched = sched
		a.closers = append(a.closers, func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(stopCtx)
		})
	}

	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewMux(api.Deps{Billing: a.billing, Auth: authSvc}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logging.Named("serve")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	srv := a.server

	errCh := make(chan error, 1)
	go func() {
		log.Info("eratecharge listening",
			zap.String("addr", srv.Addr),
			zap.String("ledger", cfg.DB.Driver),
			zap.Bool("strict", cfg.Strict),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
