package alignment

import (
	"fmt"
	"sort"
	"time"

	"defi-portfolio-lab/internal/domain"
)

// Align builds the common daily grid for a backtest from raw per-asset
// price series. The timeline spans every calendar day from start to end
// inclusive; gaps are forward-filled from the most recent valid price and
// days before an asset's first price are marked with a zero price.
//
// Data-quality problems never fail the call: they are recorded in the
// integrity report and the best-effort timeline is returned. Assets with
// no usable price in the window are dropped from the timeline entirely;
// the caller redistributes their target weight across the survivors.
//
// Align errors only on structurally invalid input: an empty asset list or
// start after end.
func Align(series map[string]domain.PriceSeries, assets []string, start, end time.Time) (*domain.AlignedTimeline, *domain.IntegrityReport, error) {
	if len(assets) == 0 {
		return nil, nil, fmt.Errorf("%w: asset list is empty", domain.ErrInvalidRequest)
	}
	start = domain.DayOf(start)
	end = domain.DayOf(end)
	if start.After(end) {
		return nil, nil, fmt.Errorf("%w: start %s is after end %s",
			domain.ErrInvalidRequest, start.Format(domain.ISODateLayout), end.Format(domain.ISODateLayout))
	}

	days := int(end.Sub(start).Hours()/24) + 1
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	report := newReportBuilder()
	timeline := &domain.AlignedTimeline{
		Dates:  dates,
		Prices: make(map[string][]float64, len(assets)),
	}

	for _, assetID := range assets {
		cleaned := cleanSeries(assetID, series[assetID], report)
		prices, usable := fillSeries(assetID, cleaned, dates, report)
		if !usable {
			report.add(CategoryExcludedAsset, fmt.Sprintf(
				"asset %s: no price data in requested range; excluded, target weight redistributed across remaining assets", assetID))
			continue
		}
		timeline.Assets = append(timeline.Assets, assetID)
		timeline.Prices[assetID] = prices
	}

	return timeline, report.report(), nil
}

// cleanSeries sorts, deduplicates and filters one raw series, flagging
// every anomaly it repairs. Duplicate dates keep the last value in input
// order; zero or negative prices are excluded from the fill source.
func cleanSeries(assetID string, raw domain.PriceSeries, report *reportBuilder) domain.PriceSeries {
	if len(raw) == 0 {
		return nil
	}

	valid := make(domain.PriceSeries, 0, len(raw))
	badPrices := 0
	for _, p := range raw {
		if p.Price <= 0 {
			badPrices++
			continue
		}
		valid = append(valid, domain.PricePoint{
			Date:  domain.NewISODate(p.Date.Time),
			Price: p.Price,
		})
	}
	if badPrices > 0 {
		report.add(CategoryBadPrice, fmt.Sprintf(
			"asset %s: %d zero or negative price point(s) ignored", assetID, badPrices))
	}

	if !sort.SliceIsSorted(valid, func(i, j int) bool {
		return valid[i].Date.Time.Before(valid[j].Date.Time)
	}) {
		report.add(CategoryOutOfOrder, fmt.Sprintf(
			"asset %s: price points out of date order; sorted before alignment", assetID))
	}
	// Stable sort keeps input order among equal dates so last-wins
	// duplicate resolution stays deterministic.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Date.Time.Before(valid[j].Date.Time)
	})

	deduped := make(domain.PriceSeries, 0, len(valid))
	duplicates := 0
	for _, p := range valid {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Time.Equal(p.Date.Time) {
			deduped[n-1] = p
			duplicates++
			continue
		}
		deduped = append(deduped, p)
	}
	if duplicates > 0 {
		report.add(CategoryDuplicateDates, fmt.Sprintf(
			"asset %s: %d duplicate date(s); last value kept", assetID, duplicates))
	}

	return deduped
}

// fillSeries projects a cleaned series onto the timeline. Returns usable
// false when the asset contributes no price to any timeline day.
func fillSeries(assetID string, cleaned domain.PriceSeries, dates []time.Time, report *reportBuilder) ([]float64, bool) {
	prices := make([]float64, len(dates))

	// Seed the carry with the most recent price before the window so a
	// series that starts earlier than the range still fills day 0.
	carry := 0.0
	idx := 0
	for idx < len(cleaned) && cleaned[idx].Date.Time.Before(dates[0]) {
		carry = cleaned[idx].Price
		idx++
	}

	listed := carry > 0
	filledGaps := 0
	lateDays := 0
	for i, day := range dates {
		if idx < len(cleaned) && cleaned[idx].Date.Time.Equal(day) {
			carry = cleaned[idx].Price
			listed = true
			idx++
		} else if listed {
			filledGaps++
		} else {
			lateDays++
			continue
		}
		prices[i] = carry
	}

	if !listed {
		return nil, false
	}
	if filledGaps > 0 {
		report.add(CategoryMissingData, fmt.Sprintf(
			"asset %s: missing data on %d day(s); forward-filled from last known price", assetID, filledGaps))
	}
	if lateDays > 0 {
		report.add(CategoryLateStart, fmt.Sprintf(
			"asset %s: price history starts %d day(s) into the range; weight contribution is zero until listing", assetID, lateDays))
	}

	return prices, true
}
