package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/models"
)

// Dispatcher delivers reminder messages. Implementations may block; callers that
// must not wait wrap them in Async.
type Dispatcher interface {
	SendReminder(ctx context.Context, reminder models.Reminder) error
	SendSummary(ctx context.Context, summary models.Summary) error
}

// NewSummary builds the bulk message for a non-empty list of reminders
func NewSummary(date string, reminders []models.Reminder) models.Summary {
	return models.Summary{
		Date:          date,
		Count:         len(reminders),
		FormattedList: FormatList(reminders),
	}
}

// FormatList renders reminders as a numbered list, one per line
func FormatList(reminders []models.Reminder) string {
	var b strings.Builder
	for i, r := range reminders {
		fmt.Fprintf(&b, "%d. %s (%s) - Balance: %s - Due: %s\n",
			i+1, r.FullName, r.AccountID, r.Balance.StringFixed(2), r.DueDate)
	}
	return b.String()
}

func reminderText(r models.Reminder) string {
	since := "admission"
	if r.AnchorKind == string(billing.AnchorLastPayment) {
		since = "last payment"
	}
	return fmt.Sprintf(
		"Fee reminder for %s (%s).\n"+
			"A monthly installment is due on %s.\n"+
			"Outstanding balance: %s\n"+
			"Cycle counted from %s on %s.\n",
		r.FullName, r.AccountID, r.DueDate, r.Balance.StringFixed(2), since, r.AnchorDate,
	)
}
