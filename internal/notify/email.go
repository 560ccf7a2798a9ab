package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/Dan9191/fee-reminder/internal/config"
	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// EmailDispatcher sends reminders to the office mailbox via SMTP
type EmailDispatcher struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewEmailDispatcher creates a new email dispatcher
func NewEmailDispatcher(cfg *config.Config, logger *logrus.Logger) *EmailDispatcher {
	d := &EmailDispatcher{
		cfg:    cfg,
		logger: logger,
	}
	d.send = d.sendSMTP
	return d
}

// SendReminder sends the reminder for a single due account
func (d *EmailDispatcher) SendReminder(ctx context.Context, r models.Reminder) error {
	e := email.NewEmail()
	e.From = d.cfg.SenderEmail
	e.To = d.cfg.AdminEmails
	e.Subject = fmt.Sprintf("Fee Due Today: %s (%s)", r.FullName, r.AccountID)

	body := reminderText(r)
	if r.Mobile != "" {
		body += fmt.Sprintf("Mobile: %s\n", r.Mobile)
	}
	if r.Course != "" {
		body += fmt.Sprintf("Course: %s\n", r.Course)
	}
	body += "\nFee Reminder Service"
	e.Text = []byte(body)

	return d.deliver(ctx, e)
}

// SendSummary sends the list of every account due today
func (d *EmailDispatcher) SendSummary(ctx context.Context, s models.Summary) error {
	e := email.NewEmail()
	e.From = d.cfg.SenderEmail
	e.To = d.cfg.AdminEmails
	e.Subject = fmt.Sprintf("Fee Reminders for %s: %d due", s.Date, s.Count)

	body := fmt.Sprintf("%d accounts have a monthly installment due today.\n\n", s.Count)
	body += s.FormattedList
	body += "\nFee Reminder Service"
	e.Text = []byte(body)

	return d.deliver(ctx, e)
}

func (d *EmailDispatcher) deliver(ctx context.Context, e *email.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.send(e); err != nil {
		d.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	d.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}

func (d *EmailDispatcher) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", d.cfg.SMTPHost, d.cfg.SMTPPort)
	auth := smtp.PlainAuth("", d.cfg.SMTPUsername, d.cfg.SMTPPassword, d.cfg.SMTPHost)
	return e.Send(addr, auth)
}
