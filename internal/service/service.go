package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/Dan9191/fee-reminder/internal/notify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrStore marks failures of the account or run state store. They abort the audit
// before any run state is written.
var ErrStore = errors.New("store failure")

// AccountSource provides read access to the full account population
type AccountSource interface {
	ListAccounts(ctx context.Context) ([]*models.Account, error)
}

// Guard decides whether today's audit may run and records completed runs
type Guard interface {
	ShouldRun(ctx context.Context, today billing.Date) (bool, error)
	RecordRun(ctx context.Context, today billing.Date, count int) error
	State(ctx context.Context) (*models.RunState, error)
}

// Report describes one audit invocation
type Report struct {
	RunID     string                    `json:"run_id"`
	Today     billing.Date              `json:"today"`
	Skipped   bool                      `json:"skipped"`
	DryRun    bool                      `json:"dry_run"`
	Due       []billing.DueRecord       `json:"due"`
	Evaluated int                       `json:"evaluated"`
	Excluded  map[billing.Exclusion]int `json:"excluded"`
	Duration  time.Duration             `json:"duration_ns"`
}

// Service handles business logic
type Service struct {
	accounts   AccountSource
	guard      Guard
	auditor    *billing.Auditor
	dispatcher notify.Dispatcher
	log        *logrus.Logger
}

// NewService initializes a new service. dispatcher should not block; wrap slow
// transports in notify.Async.
func NewService(accounts AccountSource, guard Guard, auditor *billing.Auditor, dispatcher notify.Dispatcher, log *logrus.Logger) *Service {
	return &Service{
		accounts:   accounts,
		guard:      guard,
		auditor:    auditor,
		dispatcher: dispatcher,
		log:        log,
	}
}

// RunDailyAudit finds the accounts due today, sends their reminders and a summary,
// and records the run. Only store failures and cancellation are returned as errors;
// in both cases nothing is recorded, so a retry is not mistaken for a finished run.
func (s *Service) RunDailyAudit(ctx context.Context, today billing.Date) (*Report, error) {
	report := &Report{RunID: uuid.New().String(), Today: today}
	entry := s.log.WithFields(logrus.Fields{
		"run_id": report.RunID,
		"today":  today.String(),
	})

	ok, err := s.guard.ShouldRun(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	if !ok {
		report.Skipped = true
		return report, nil
	}

	if err := s.audit(ctx, today, report); err != nil {
		entry.WithError(err).Error("Reminder audit aborted")
		return nil, err
	}

	s.dispatch(ctx, entry, today, report.Due)

	if err := s.guard.RecordRun(ctx, today, len(report.Due)); err != nil {
		entry.WithError(err).Error("Failed to record reminder audit")
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	entry.WithFields(logrus.Fields{
		"due":       len(report.Due),
		"evaluated": report.Evaluated,
		"duration":  report.Duration.String(),
	}).Info("Reminder audit completed")
	return report, nil
}

// PreviewDue runs the audit without sending anything or touching the run state
func (s *Service) PreviewDue(ctx context.Context, today billing.Date) (*Report, error) {
	report := &Report{RunID: uuid.New().String(), Today: today, DryRun: true}
	if err := s.audit(ctx, today, report); err != nil {
		return nil, err
	}
	return report, nil
}

// RunState returns the last recorded run, nil if none
func (s *Service) RunState(ctx context.Context) (*models.RunState, error) {
	state, err := s.guard.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return state, nil
}

func (s *Service) audit(ctx context.Context, today billing.Date, report *Report) error {
	start := time.Now()

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to load accounts: %w", ErrStore, err)
	}

	result := s.auditor.Audit(accounts, today)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("audit cancelled: %w", err)
	}

	report.Due = result.Due
	report.Evaluated = result.Evaluated
	report.Excluded = result.Excluded
	report.Duration = time.Since(start)
	return nil
}

func (s *Service) dispatch(ctx context.Context, entry *logrus.Entry, today billing.Date, due []billing.DueRecord) {
	if len(due) == 0 {
		return
	}

	reminders := make([]models.Reminder, 0, len(due))
	for _, rec := range due {
		reminder := rec.Reminder()
		reminders = append(reminders, reminder)
		if err := s.dispatcher.SendReminder(ctx, reminder); err != nil {
			entry.WithError(err).WithField("account_id", rec.AccountID).Warn("Failed to dispatch reminder")
		}
	}

	summary := notify.NewSummary(today.String(), reminders)
	if err := s.dispatcher.SendSummary(ctx, summary); err != nil {
		entry.WithError(err).Warn("Failed to dispatch reminder summary")
	}
}
