package models

import "github.com/shopspring/decimal"

// Reminder is the individual message sent for one due account
type Reminder struct {
	AccountID  string          `json:"account_id"`
	FullName   string          `json:"full_name"`
	Mobile     string          `json:"mobile,omitempty"`
	Course     string          `json:"course,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	DueDate    string          `json:"due_date"`
	AnchorKind string          `json:"anchor_kind"`
	AnchorDate string          `json:"anchor_date"`
}

// Summary is the bulk message sent once per audit with a non-empty due list
type Summary struct {
	Date          string `json:"date"`
	Count         int    `json:"count"`
	FormattedList string `json:"formatted_list"`
}
