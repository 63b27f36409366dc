package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"defi-portfolio-lab/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDueOn_Daily(t *testing.T) {
	start := date(2024, 1, 1)
	for i := 1; i <= 5; i++ {
		assert.True(t, dueOn(domain.DCADaily, start, start.AddDate(0, 0, i), i))
	}
}

func TestDueOn_Weekly(t *testing.T) {
	start := date(2024, 1, 1)

	tests := []struct {
		dayIdx int
		want   bool
	}{
		{1, false},
		{6, false},
		{7, true},
		{8, false},
		{14, true},
		{21, true},
	}
	for _, tt := range tests {
		got := dueOn(domain.DCAWeekly, start, start.AddDate(0, 0, tt.dayIdx), tt.dayIdx)
		assert.Equal(t, tt.want, got, "day %d", tt.dayIdx)
	}
}

func TestDueOn_Monthly(t *testing.T) {
	start := date(2024, 1, 15)

	assert.False(t, dueOn(domain.DCAMonthly, start, date(2024, 2, 14), 30))
	assert.True(t, dueOn(domain.DCAMonthly, start, date(2024, 2, 15), 31))
	assert.True(t, dueOn(domain.DCAMonthly, start, date(2024, 3, 15), 60))
	assert.False(t, dueOn(domain.DCAMonthly, start, date(2024, 3, 16), 61))
}

func TestDueOn_MonthlyClampsToMonthEnd(t *testing.T) {
	// A Jan 31 start contributes on the last day of shorter months.
	start := date(2023, 1, 31)

	assert.True(t, dueOn(domain.DCAMonthly, start, date(2023, 2, 28), 28))
	assert.False(t, dueOn(domain.DCAMonthly, start, date(2023, 2, 27), 27))
	assert.True(t, dueOn(domain.DCAMonthly, start, date(2023, 4, 30), 89))
	assert.True(t, dueOn(domain.DCAMonthly, start, date(2023, 3, 31), 59))

	// Leap February clamps to the 29th
	leapStart := date(2024, 1, 31)
	assert.True(t, dueOn(domain.DCAMonthly, leapStart, date(2024, 2, 29), 29))
	assert.False(t, dueOn(domain.DCAMonthly, leapStart, date(2024, 2, 28), 28))
}

func TestDueOn_Yearly(t *testing.T) {
	start := date(2020, 2, 29)

	assert.True(t, dueOn(domain.DCAYearly, start, date(2024, 2, 29), 1461))
	// Non-leap years clamp Feb 29 to Feb 28
	assert.True(t, dueOn(domain.DCAYearly, start, date(2021, 2, 28), 365))
	assert.False(t, dueOn(domain.DCAYearly, start, date(2021, 3, 1), 366))
	assert.False(t, dueOn(domain.DCAYearly, start, date(2021, 8, 28), 546))
}

func TestDueOn_UnknownPeriodicity(t *testing.T) {
	start := date(2024, 1, 1)
	assert.False(t, dueOn(domain.DCAPeriodicity("fortnightly"), start, start.AddDate(0, 0, 3), 3))
}

func TestClampDay(t *testing.T) {
	assert.Equal(t, 31, clampDay(31, 2024, time.January))
	assert.Equal(t, 29, clampDay(31, 2024, time.February))
	assert.Equal(t, 28, clampDay(31, 2023, time.February))
	assert.Equal(t, 30, clampDay(31, 2024, time.April))
	assert.Equal(t, 15, clampDay(15, 2024, time.February))
}

func TestClampDay_December(t *testing.T) {
	// month+1 overflow must roll into January of the next year correctly
	assert.Equal(t, 31, clampDay(31, 2024, time.December))
}
