package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/config"
	"github.com/Dan9191/fee-reminder/internal/database"
	"github.com/Dan9191/fee-reminder/internal/integrations/registry"
	"github.com/Dan9191/fee-reminder/internal/notify"
	"github.com/Dan9191/fee-reminder/internal/repository"
	"github.com/Dan9191/fee-reminder/internal/runguard"
	"github.com/Dan9191/fee-reminder/internal/service"
	"github.com/sirupsen/logrus"
)

// app is the wired reminder service plus everything that must be released on exit
type app struct {
	svc     *service.Service
	async   *notify.Async
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var db *sql.DB
	if cfg.UsesPostgres() {
		if db, err = database.Open(ctx, cfg.DBConn); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err = database.MigrateUp(db, logger); err != nil {
			return nil, err
		}
	}

	var accounts service.AccountSource
	switch cfg.AccountSource {
	case "registry":
		accounts = registry.NewClient(cfg.RegistryURL, logger)
	default:
		accounts = repository.NewRepository(db)
	}

	var store runguard.Store
	switch cfg.RunStateBackend {
	case "sqlite":
		sqliteStore, err := repository.NewSQLiteRunStateStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqliteStore.Close)
		store = sqliteStore
	default:
		store = repository.NewRepository(db)
	}

	mode, err := runguard.ParseMode(cfg.RunGuardMode)
	if err != nil {
		return nil, err
	}
	guard := runguard.NewGuard(store, mode, logger)

	var dispatcher notify.Dispatcher
	switch cfg.NotifyBackend {
	case "email":
		dispatcher = notify.NewEmailDispatcher(cfg, logger)
	case "nats":
		natsDispatcher, err := notify.NewNATSDispatcher(cfg.NATSURL, cfg.NATSSubjectPrefix, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, natsDispatcher.Close)
		dispatcher = natsDispatcher
	default:
		dispatcher = notify.NewLogDispatcher(logger)
	}
	a.async = notify.NewAsync(dispatcher, cfg.NotifyTimeout, logger)

	a.svc = service.NewService(accounts, guard, billing.NewAuditor(logger, cfg.AuditWorkers), a.async, logger)

	logger.WithFields(logrus.Fields{
		"accounts":  cfg.AccountSource,
		"run_state": cfg.RunStateBackend,
		"notify":    cfg.NotifyBackend,
		"run_guard": mode,
		"workers":   cfg.AuditWorkers,
	}).Info("Reminder service initialized")
	return a, nil
}

// Close waits for pending deliveries, then releases connections in reverse order
func (a *app) Close() error {
	if a.async != nil {
		a.async.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to close resources: %w", err)
	}
	return nil
}
