package notify

import (
	"context"

	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/sirupsen/logrus"
)

// LogDispatcher only writes reminders to the log. Used in development.
type LogDispatcher struct {
	log *logrus.Logger
}

func NewLogDispatcher(log *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) SendReminder(ctx context.Context, r models.Reminder) error {
	d.log.WithFields(logrus.Fields{
		"account_id":  r.AccountID,
		"balance":     r.Balance.StringFixed(2),
		"due_date":    r.DueDate,
		"anchor_kind": r.AnchorKind,
		"anchor_date": r.AnchorDate,
	}).Info("Fee reminder")
	return nil
}

func (d *LogDispatcher) SendSummary(ctx context.Context, s models.Summary) error {
	d.log.WithFields(logrus.Fields{
		"date":  s.Date,
		"count": s.Count,
	}).Infof("Fee reminder summary\n%s", s.FormattedList)
	return nil
}
