package backtest

import (
	"time"

	"defi-portfolio-lab/internal/domain"
)

// dueOn decides whether a DCA contribution lands on the given date.
//
//   - daily: every day after day 0
//   - weekly: every 7th timeline day
//   - monthly: the start date's day-of-month, clamped to the last day of
//     shorter months (a Jan 31 start contributes on Feb 28/29)
//   - yearly: the start date's month and day each year, clamped the same way
func dueOn(p domain.DCAPeriodicity, start, date time.Time, dayIdx int) bool {
	switch p {
	case domain.DCADaily:
		return true
	case domain.DCAWeekly:
		return dayIdx%7 == 0
	case domain.DCAMonthly:
		return date.Day() == clampDay(start.Day(), date.Year(), date.Month())
	case domain.DCAYearly:
		return date.Month() == start.Month() &&
			date.Day() == clampDay(start.Day(), date.Year(), date.Month())
	default:
		return false
	}
}

// clampDay limits a day-of-month to the length of the given month.
func clampDay(day int, year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
