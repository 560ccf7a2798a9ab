package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Auditor runs one daily audit
type Auditor interface {
	RunDailyAudit(ctx context.Context, today billing.Date) (*service.Report, error)
}

// Scheduler triggers the daily audit on a cron schedule evaluated in loc
type Scheduler struct {
	cron *cron.Cron
	svc  Auditor
	loc  *time.Location
	log  *logrus.Logger
	now  func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(svc Auditor, schedule string, loc *time.Location, log *logrus.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		svc:    svc,
		loc:    loc,
		log:    log,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cron.VerbosePrintfLogger(log)),
		cron.WithChain(cron.Recover(cron.PrintfLogger(log)), cron.SkipIfStillRunning(cron.PrintfLogger(log))),
	)
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid audit schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("next", s.Next()).Info("Reminder scheduler started")
}

// Stop cancels an in-flight audit and waits for it to return or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Reminder scheduler did not stop in time")
	}
}

// Next returns the next scheduled run, zero if not started
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) tick() {
	today := billing.DateOf(s.now().In(s.loc))
	entry := s.log.WithField("today", today.String())

	report, err := s.svc.RunDailyAudit(s.ctx, today)
	if err != nil {
		entry.WithError(err).Error("Scheduled reminder audit failed")
		return
	}
	if report.Skipped {
		entry.Info("Reminder audit already ran today")
	}
}
