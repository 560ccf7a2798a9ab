package billing

import (
	"fmt"

	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Exclusion is the reason an account did not make the due list
type Exclusion string

const (
	ExcludedNotBillable Exclusion = "not_billable"
	ExcludedNoAnchor    Exclusion = "no_anchor"
	ExcludedNotDue      Exclusion = "not_due"
	ExcludedPaidToday   Exclusion = "paid_today"
	ExcludedMalformed   Exclusion = "malformed"
)

// DueRecord is one account whose monthly reminder fires today
type DueRecord struct {
	AccountID  string          `json:"account_id"`
	FullName   string          `json:"full_name"`
	Mobile     string          `json:"mobile,omitempty"`
	Course     string          `json:"course,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	AnchorKind AnchorKind      `json:"anchor_kind"`
	AnchorDate Date            `json:"anchor_date"`
	DueDate    Date            `json:"due_date"`
}

// Reminder converts the record into the individual notification message
func (r DueRecord) Reminder() models.Reminder {
	return models.Reminder{
		AccountID:  r.AccountID,
		FullName:   r.FullName,
		Mobile:     r.Mobile,
		Course:     r.Course,
		Balance:    r.Balance,
		DueDate:    r.DueDate.DayFirst(),
		AnchorKind: string(r.AnchorKind),
		AnchorDate: r.AnchorDate.DayFirst(),
	}
}

// Result is the outcome of one audit pass
type Result struct {
	Due       []DueRecord       `json:"due"`
	Evaluated int               `json:"evaluated"`
	Excluded  map[Exclusion]int `json:"excluded"`
}

type outcome struct {
	record DueRecord
	reason Exclusion
}

// Auditor walks the whole account population and collects the accounts due today
type Auditor struct {
	log     *logrus.Logger
	workers int
}

// NewAuditor creates an auditor. With workers > 1 accounts are evaluated concurrently;
// the due list keeps population order either way.
func NewAuditor(log *logrus.Logger, workers int) *Auditor {
	if workers < 1 {
		workers = 1
	}
	return &Auditor{log: log, workers: workers}
}

// Audit evaluates every account against today. It has no side effects besides logging
// and never fails: a malformed account is logged and left out.
func (a *Auditor) Audit(accounts []*models.Account, today Date) *Result {
	outcomes := make([]outcome, len(accounts))

	if a.workers == 1 {
		for i, account := range accounts {
			outcomes[i] = a.safeEvaluate(account, today)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.workers)
		for i, account := range accounts {
			g.Go(func() error {
				outcomes[i] = a.safeEvaluate(account, today)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := &Result{
		Due:       make([]DueRecord, 0),
		Evaluated: len(accounts),
		Excluded:  make(map[Exclusion]int),
	}
	for _, o := range outcomes {
		if o.reason != "" {
			result.Excluded[o.reason]++
			continue
		}
		result.Due = append(result.Due, o.record)
	}
	return result
}

// safeEvaluate isolates a single account so that nothing it contains can stop the pass
func (a *Auditor) safeEvaluate(account *models.Account, today Date) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			a.logMalformed(account, fmt.Errorf("panic while evaluating: %v", r))
			o = outcome{reason: ExcludedMalformed}
		}
	}()

	if account == nil {
		a.logMalformed(nil, fmt.Errorf("nil account record"))
		return outcome{reason: ExcludedMalformed}
	}
	if err := account.Validate(); err != nil {
		a.logMalformed(account, err)
		return outcome{reason: ExcludedMalformed}
	}

	record, reason := Evaluate(account, today)
	return outcome{record: record, reason: reason}
}

func (a *Auditor) logMalformed(account *models.Account, err error) {
	id := ""
	if account != nil {
		id = account.ID
	}
	a.log.WithFields(logrus.Fields{
		"account_id": id,
		"error":      err,
	}).Warn("Skipping malformed account")
}

// Evaluate decides a single, already validated account. An empty Exclusion means
// the account is due and the record is filled in.
func Evaluate(account *models.Account, today Date) (DueRecord, Exclusion) {
	if !account.Billable() {
		return DueRecord{}, ExcludedNotBillable
	}

	anchor, ok := ResolveAnchor(account)
	if !ok {
		return DueRecord{}, ExcludedNoAnchor
	}

	if !CheckDue(anchor.Date, today).Due {
		return DueRecord{}, ExcludedNotDue
	}

	// Somebody who already paid today is not reminded about the cycle that just opened.
	if PaidOn(account, today) {
		return DueRecord{}, ExcludedPaidToday
	}

	return DueRecord{
		AccountID:  account.ID,
		FullName:   account.FullName,
		Mobile:     account.Mobile,
		Course:     account.Course,
		Balance:    account.Balance(),
		AnchorKind: anchor.Kind,
		AnchorDate: anchor.Date,
		DueDate:    today,
	}, ""
}

// PaidOn reports whether any installment of the account is dated exactly day
func PaidOn(account *models.Account, day Date) bool {
	for _, inst := range account.Installments {
		if d, ok := ParseDate(inst.Date); ok && d == day {
			return true
		}
	}
	return false
}
