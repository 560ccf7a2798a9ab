package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountStatus is the enrolment state of a fee account
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusPassed AccountStatus = "passed" // course finished, never billed again
)

// Installment is a single recorded fee payment
type Installment struct {
	Date   string          `json:"date"` // raw, YYYY-MM-DD or DD/MM/YYYY
	Amount decimal.Decimal `json:"amount"`
}

// Account represents a fee account as kept by the registry
type Account struct {
	ID            string          `json:"id"` // registration number
	FullName      string          `json:"full_name"`
	Mobile        string          `json:"mobile"`
	Course        string          `json:"course"`
	Status        AccountStatus   `json:"status"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	PaidFees      decimal.Decimal `json:"paid_fees"`
	OldPaidFees   decimal.Decimal `json:"old_paid_fees"`
	AdmissionDate string          `json:"admission_date"` // raw, may be empty or "N/A"
	Installments  []Installment   `json:"installments"`
}

// Balance returns the outstanding fees: total minus everything paid so far
func (a *Account) Balance() decimal.Decimal {
	return a.TotalFees.Sub(a.PaidFees.Add(a.OldPaidFees))
}

// Billable reports whether the account still owes money and is not passed out
func (a *Account) Billable() bool {
	return a.Status != AccountStatusPassed && a.Balance().IsPositive()
}

// Validate checks the account shape before it is evaluated
func (a *Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("account id is empty")
	}
	switch a.Status {
	case AccountStatusActive, AccountStatusPassed:
	default:
		return fmt.Errorf("account %s: unknown status %q", a.ID, a.Status)
	}
	if a.TotalFees.IsNegative() || a.PaidFees.IsNegative() || a.OldPaidFees.IsNegative() {
		return fmt.Errorf("account %s: negative fee amount", a.ID)
	}
	return nil
}
