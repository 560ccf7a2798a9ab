package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/Dan9191/fee-reminder/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmailDispatcher(sendErr error) (*EmailDispatcher, *[]*email.Email) {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		SenderEmail: "reminders@institute.test",
		AdminEmails: []string{"office@institute.test", "owner@institute.test"},
	}
	d := NewEmailDispatcher(cfg, logger)
	sent := []*email.Email{}
	d.send = func(e *email.Email) error {
		sent = append(sent, e)
		return sendErr
	}
	return d, &sent
}

func TestEmailDispatcher_SendReminder(t *testing.T) {
	d, sent := newTestEmailDispatcher(nil)
	r := sampleReminders()[0]
	r.Mobile = "9800000000"

	require.NoError(t, d.SendReminder(context.Background(), r))

	require.Len(t, *sent, 1)
	e := (*sent)[0]
	assert.Equal(t, "reminders@institute.test", e.From)
	assert.Equal(t, []string{"office@institute.test", "owner@institute.test"}, e.To)
	assert.Equal(t, "Fee Due Today: Asha Verma (R1)", e.Subject)
	assert.Contains(t, string(e.Text), "due on 15/2/2024")
	assert.Contains(t, string(e.Text), "Mobile: 9800000000")
}

func TestEmailDispatcher_SendSummary(t *testing.T) {
	d, sent := newTestEmailDispatcher(nil)

	require.NoError(t, d.SendSummary(context.Background(), NewSummary("2024-02-15", sampleReminders())))

	require.Len(t, *sent, 1)
	assert.Equal(t, "Fee Reminders for 2024-02-15: 2 due", (*sent)[0].Subject)
	assert.Contains(t, string((*sent)[0].Text), "1. Asha Verma (R1)")
}

func TestEmailDispatcher_Failures(t *testing.T) {
	boom := errors.New("smtp: 421 service not available")
	d, _ := newTestEmailDispatcher(boom)

	err := d.SendReminder(context.Background(), sampleReminders()[0])
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, sent := newTestEmailDispatcher(nil)
	assert.ErrorIs(t, d.SendSummary(ctx, NewSummary("2024-02-15", sampleReminders())), context.Canceled)
	assert.Empty(t, *sent)
}
