package reporting

import (
	"sort"
	"time"

	"defi-portfolio-lab/internal/domain"
)

// Generator produces reports from backtest results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate flattens a request and its result into a render-ready report.
func (g *Generator) Generate(title string, req *domain.BacktestRequest, result *domain.BacktestResult) *Report {
	r := &Report{
		GeneratedAt:         g.now(),
		Title:               title,
		FinalValue:          result.Metrics.FinalValue,
		TotalInvested:       result.Metrics.TotalInvested,
		DCAContributions:    result.Metrics.DCAContributions,
		CumulativeReturnPct: result.Metrics.CumulativeReturnPct,
		CAGRPct:             result.Metrics.CAGRPct,
		VolatilityPct:       result.Risk.VolatilityPct,
		MaxDrawdownPct:      result.Risk.MaxDrawdownPct,
		Sharpe:              result.Risk.Sharpe,
		RiskReward:          result.Risk.RiskReward,
		IntegrityScore:      result.Integrity.Score,
		IntegrityIssues:     result.Integrity.Issues,
	}

	dates := result.Series.Dates
	r.Days = len(dates)
	if len(dates) > 0 {
		r.StartDate = dates[0].Time
		r.EndDate = dates[len(dates)-1].Time
	}
	for _, d := range dates {
		r.Dates = append(r.Dates, d.Time)
	}
	r.Values = result.Series.PortfolioValue

	for _, d := range result.Series.RebalanceDates {
		r.RebalanceDates = append(r.RebalanceDates, d.Time)
	}

	r.Assets = assetRows(req, result)

	return r
}

// assetRows joins target weights, final realized weights, and per-asset
// volatility into one sorted table.
func assetRows(req *domain.BacktestRequest, result *domain.BacktestResult) []AssetRow {
	targets := make(map[string]float64, len(req.Assets))
	for _, a := range req.Assets {
		targets[a.AssetID] = a.TargetWeight
	}

	ids := make([]string, 0, len(result.Series.AssetWeights))
	for id := range result.Series.AssetWeights {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]AssetRow, 0, len(ids))
	for _, id := range ids {
		row := AssetRow{
			AssetID:         id,
			TargetWeightPct: targets[id] * 100,
			VolatilityPct:   result.Risk.AssetVolatilityPct[id],
		}
		if weights := result.Series.AssetWeights[id]; len(weights) > 0 {
			row.FinalWeightPct = weights[len(weights)-1] * 100
		}
		rows = append(rows, row)
	}
	return rows
}
