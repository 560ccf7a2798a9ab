package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/fee-reminder/internal/handler"
	"github.com/Dan9191/fee-reminder/internal/scheduler"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled daily audit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.WithError(err).Error("Shutdown incomplete")
				}
			}()

			sched, err := scheduler.NewScheduler(a.svc, cfg.AuditSchedule, cfg.Location(), logger)
			if err != nil {
				return err
			}
			sched.Start()

			// Setup router
			r := mux.NewRouter()
			handler.NewHandler(a.svc, cfg.Location(), logger).Routes(r)

			// Start server
			addr := fmt.Sprintf(":%s", cfg.Port)
			server := &http.Server{
				Addr:         addr,
				Handler:      r,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 60 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Infof("Starting server on %s", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					sched.Stop(context.Background())
					return fmt.Errorf("server failed: %w", err)
				}
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(shutdownCtx)
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			return nil
		},
	}
}
