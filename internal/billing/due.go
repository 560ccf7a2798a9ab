package billing

// DueCheck is the outcome of comparing an anchor against today
type DueCheck struct {
	Due        bool
	TargetDay  int // anniversary day clamped to the length of today's month
	MonthDelta int
}

// MonthDelta counts calendar month boundaries between the anchor and today.
// Elapsed days are irrelevant: Jan 31 to Feb 1 is one month.
func MonthDelta(anchor, today Date) int {
	return (today.Year-anchor.Year)*12 + int(today.Month) - int(anchor.Month)
}

// CheckDue reports whether today is the monthly anniversary of anchor. An anchor
// on the 29th-31st falls due on the last day of shorter months. The account is due
// on that exact day only; a day missed is not caught up later in the month.
func CheckDue(anchor, today Date) DueCheck {
	delta := MonthDelta(anchor, today)
	target := min(anchor.Day, DaysInMonth(today.Year, today.Month))
	return DueCheck{
		Due:        delta >= 1 && today.Day == target,
		TargetDay:  target,
		MonthDelta: delta,
	}
}
