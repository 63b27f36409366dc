package alignment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defi-portfolio-lab/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func pt(d int, price float64) domain.PricePoint {
	return domain.PricePoint{Date: domain.NewISODate(day(d)), Price: price}
}

func TestAlign_CompleteSeries(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 100), pt(2, 110), pt(3, 105)},
	}

	timeline, report, err := Align(series, []string{"bitcoin"}, day(1), day(3))
	require.NoError(t, err)

	assert.Equal(t, []string{"bitcoin"}, timeline.Assets)
	assert.Equal(t, []float64{100, 110, 105}, timeline.Prices["bitcoin"])
	assert.Equal(t, 3, timeline.Days())

	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Issues)
	assert.NotNil(t, report.Issues, "issues must be an empty slice, not nil")
}

func TestAlign_ForwardFillsGaps(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 100), pt(4, 120)},
	}

	timeline, report, err := Align(series, []string{"bitcoin"}, day(1), day(4))
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 100, 100, 120}, timeline.Prices["bitcoin"])
	assert.Equal(t, 90, report.Score)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "forward-filled")
}

func TestAlign_TenDayGapHeldConstant(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 100), pt(12, 130)},
	}

	timeline, report, err := Align(series, []string{"bitcoin"}, day(1), day(12))
	require.NoError(t, err)

	prices := timeline.Prices["bitcoin"]
	require.Len(t, prices, 12)
	for i := 0; i < 11; i++ {
		assert.Equal(t, 100.0, prices[i], "day %d holds the last known price", i)
	}
	assert.Equal(t, 130.0, prices[11])

	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "missing data on 10 day(s)")
}

func TestAlign_SeedsFromPreWindowPrice(t *testing.T) {
	// A point before the window supplies day 0 when the window itself
	// starts in a gap.
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 90), pt(3, 110)},
	}

	timeline, report, err := Align(series, []string{"bitcoin"}, day(2), day(3))
	require.NoError(t, err)

	assert.Equal(t, []float64{90, 110}, timeline.Prices["bitcoin"])
	assert.Equal(t, 90, report.Score) // day 2 was forward-filled
}

func TestAlign_LateStart(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"newcoin": {pt(3, 50), pt(4, 55)},
	}

	timeline, report, err := Align(series, []string{"newcoin"}, day(1), day(4))
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 50, 55}, timeline.Prices["newcoin"])
	assert.Equal(t, 90, report.Score)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "starts 2 day(s) into the range")
}

func TestAlign_BadPricesIgnored(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 100), pt(2, 0), pt(3, -5), pt(4, 120)},
	}

	timeline, report, err := Align(series, []string{"bitcoin"}, day(1), day(4))
	require.NoError(t, err)

	// The bad days become gaps and are forward-filled
	assert.Equal(t, []float64{100, 100, 100, 120}, timeline.Prices["bitcoin"])
	assert.Equal(t, 80, report.Score) // bad_price 10 + missing_data 10
}

func TestAlign_DuplicateDatesLastWins(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 100), pt(2, 111), pt(2, 110), pt(3, 105)},
	}

	timeline, report, err := Align(series, []string{"bitcoin"}, day(1), day(3))
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 110, 105}, timeline.Prices["bitcoin"])
	assert.Equal(t, 95, report.Score)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "duplicate date(s)")
}

func TestAlign_OutOfOrderSorted(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(3, 105), pt(1, 100), pt(2, 110)},
	}

	timeline, report, err := Align(series, []string{"bitcoin"}, day(1), day(3))
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 110, 105}, timeline.Prices["bitcoin"])
	assert.Equal(t, 95, report.Score)
}

func TestAlign_ExcludedAsset(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 100), pt(2, 110)},
		"ghost":   {},
	}

	timeline, report, err := Align(series, []string{"bitcoin", "ghost"}, day(1), day(2))
	require.NoError(t, err)

	assert.Equal(t, []string{"bitcoin"}, timeline.Assets)
	assert.NotContains(t, timeline.Prices, "ghost")
	assert.Equal(t, 75, report.Score)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "excluded")
}

func TestAlign_AssetWithOnlyBadPricesExcluded(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 100), pt(2, 110)},
		"junk":    {pt(1, 0), pt(2, -1)},
	}

	timeline, report, err := Align(series, []string{"bitcoin", "junk"}, day(1), day(2))
	require.NoError(t, err)

	assert.Equal(t, []string{"bitcoin"}, timeline.Assets)
	// bad_price 10 + excluded_asset 25
	assert.Equal(t, 65, report.Score)
}

func TestAlign_PenaltiesApplyOncePerCategory(t *testing.T) {
	// Two assets with gaps still cost a single missing_data penalty.
	series := map[string]domain.PriceSeries{
		"a": {pt(1, 100), pt(3, 110)},
		"b": {pt(1, 10), pt(3, 12)},
	}

	_, report, err := Align(series, []string{"a", "b"}, day(1), day(3))
	require.NoError(t, err)

	assert.Equal(t, 90, report.Score)
	assert.Len(t, report.Issues, 2)
}

func TestReportBuilder_DeductsOncePerCategory(t *testing.T) {
	b := newReportBuilder()
	for cat := range categoryPenalties {
		b.add(cat, "x")
		b.add(cat, "x again") // repeats must not deduct twice
	}

	report := b.report()
	assert.Equal(t, 35, report.Score) // 100 minus all six penalties
	assert.Len(t, report.Issues, 12)
}

func TestReportBuilder_ScoreMonotonic(t *testing.T) {
	// Adding categories can only lower the score.
	b := newReportBuilder()
	prev := b.report().Score
	for _, cat := range []IssueCategory{
		CategoryDuplicateDates, CategoryOutOfOrder, CategoryMissingData,
		CategoryLateStart, CategoryBadPrice, CategoryExcludedAsset,
	} {
		b.add(cat, "issue")
		score := b.report().Score
		assert.Less(t, score, prev)
		prev = score
	}
}

func TestAlign_Deterministic(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"a": {pt(3, 105), pt(1, 100), pt(2, 0), pt(2, 110)},
		"b": {pt(2, 10)},
	}
	assets := []string{"a", "b"}

	t1, r1, err := Align(series, assets, day(1), day(3))
	require.NoError(t, err)
	t2, r2, err := Align(series, assets, day(1), day(3))
	require.NoError(t, err)

	assert.Equal(t, t1, t2)
	assert.Equal(t, r1, r2)
}

func TestAlign_InvalidInput(t *testing.T) {
	_, _, err := Align(nil, nil, day(1), day(2))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, _, err = Align(nil, []string{"a"}, day(2), day(1))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestAlign_SingleDayWindow(t *testing.T) {
	series := map[string]domain.PriceSeries{
		"bitcoin": {pt(1, 100)},
	}

	timeline, report, err := Align(series, []string{"bitcoin"}, day(1), day(1))
	require.NoError(t, err)
	assert.Equal(t, 1, timeline.Days())
	assert.Equal(t, 100, report.Score)
}
