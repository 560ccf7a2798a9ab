package models

import "time"

// RunState records the last completed reminder audit. There is only ever one row.
type RunState struct {
	LastRunDate  time.Time `json:"last_run_date"` // date only, midnight UTC
	LastRunCount int       `json:"last_run_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}
