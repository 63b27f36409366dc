// Package reporting renders finished backtest results as Markdown, CSV,
// and PNG charts for offline review.
package reporting

import "time"

// Report is the flattened, render-ready view of one backtest result.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Title       string

	// Window
	StartDate time.Time
	EndDate   time.Time
	Days      int

	// Headline metrics
	FinalValue          float64
	TotalInvested       float64
	DCAContributions    float64
	CumulativeReturnPct float64
	CAGRPct             *float64

	// Risk
	VolatilityPct  float64
	MaxDrawdownPct float64
	Sharpe         *float64
	RiskReward     *float64

	// Per-asset rows (sorted by asset id)
	Assets []AssetRow

	// Rebalance activity
	RebalanceDates []time.Time

	// Data quality
	IntegrityScore  int
	IntegrityIssues []string

	// Daily portfolio values, parallel to Dates
	Dates  []time.Time
	Values []float64
}

// AssetRow is one per-asset line in the report.
type AssetRow struct {
	AssetID         string
	TargetWeightPct float64
	FinalWeightPct  float64
	VolatilityPct   float64
}
