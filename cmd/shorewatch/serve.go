package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/viperioribus/shorewatch/internal/adapter/http"
	"github.com/viperioribus/shorewatch/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the kiosk HTTP facade for station terminals",
		Long: "Serve a local JSON API over the session, selection, and report\n" +
			"submission components, plus /healthz, /readyz, and /metrics.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.cascade.Restore(ctx)

			ready := httpadapter.ReadinessFunc(func(ctx context.Context) error {
				return store.Ping(ctx, a.store)
			})
			srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.client, a.directory,
				a.session, a.cascade, a.pipeline, ready, a.logger)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("kiosk server shutdown error", "error", err)
				return err
			}
			a.logger.Info("shutdown complete")
			return nil
		},
	}
}
