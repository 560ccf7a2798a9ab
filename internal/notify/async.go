package notify

import (
	"context"
	"sync"
	"time"

	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/sirupsen/logrus"
)

// Async hands every message to the wrapped dispatcher on its own goroutine and
// returns immediately. Delivery errors and panics are logged, never returned.
type Async struct {
	next    Dispatcher
	log     *logrus.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsync wraps next. timeout bounds each delivery; zero means no limit.
func NewAsync(next Dispatcher, timeout time.Duration, log *logrus.Logger) *Async {
	return &Async{next: next, log: log, timeout: timeout}
}

func (a *Async) SendReminder(ctx context.Context, r models.Reminder) error {
	a.dispatch(ctx, logrus.Fields{"kind": messageTypeReminder, "account_id": r.AccountID},
		func(ctx context.Context) error { return a.next.SendReminder(ctx, r) })
	return nil
}

func (a *Async) SendSummary(ctx context.Context, s models.Summary) error {
	a.dispatch(ctx, logrus.Fields{"kind": messageTypeSummary, "count": s.Count},
		func(ctx context.Context) error { return a.next.SendSummary(ctx, s) })
	return nil
}

// Wait blocks until all deliveries started so far have finished
func (a *Async) Wait() {
	a.wg.Wait()
}

func (a *Async) dispatch(ctx context.Context, fields logrus.Fields, send func(context.Context) error) {
	// deliveries outlive the request or cron tick that started them
	ctx = context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.log.WithFields(fields).WithField("panic", r).Error("Notification dispatcher panicked")
			}
		}()

		if a.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}
		if err := send(ctx); err != nil {
			a.log.WithFields(fields).WithError(err).Error("Failed to deliver notification")
		}
	}()
}
