package domain

// BacktestSeries holds the day-by-day output of a simulation.
// All slices share the timeline length; per-asset maps are keyed by asset
// id and hold one value per day.
type BacktestSeries struct {
	Dates          []ISODate            `json:"dates"`
	PortfolioValue []float64            `json:"portfolioValue"`
	AssetPrices    map[string][]float64 `json:"perAssetPrice"`
	AssetWeights   map[string][]float64 `json:"perAssetWeight"`
	RebalanceDates []ISODate            `json:"rebalanceDates,omitempty"`
}

// Metrics summarizes portfolio performance over the simulated range.
// Pointer fields are nil when the figure is not computable (for example
// CAGR over less than one elapsed day); nil is never substituted with 0.
type Metrics struct {
	FinalValue          float64  `json:"finalValue"`
	CumulativeReturnPct float64  `json:"cumulativeReturnPct"`
	CAGRPct             *float64 `json:"cagrPct"`

	// Capital accounting. With DCA disabled TotalInvested equals the
	// initial capital and DCAContributions is 0.
	TotalInvested    float64 `json:"totalInvested"`
	DCAContributions float64 `json:"dcaContributions"`
	CapitalGrowth    float64 `json:"capitalGrowth"`
	CapitalGrowthPct float64 `json:"capitalGrowthPct"`
}

// RiskMetrics summarizes volatility and drawdown figures.
type RiskMetrics struct {
	VolatilityPct      float64            `json:"volatilityPct"`
	MaxDrawdownPct     float64            `json:"maxDrawdownPct"`
	Sharpe             *float64           `json:"sharpe"`
	RiskReward         *float64           `json:"riskReward"`
	AssetVolatilityPct map[string]float64 `json:"perAssetVolatilityPct"`
}

// IntegrityReport is the data-quality assessment produced during price
// alignment. Score starts at 100 and loses a fixed penalty per distinct
// issue category, floored at 0.
type IntegrityReport struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}

// BacktestResult is the complete, immutable output of one backtest run.
type BacktestResult struct {
	Series    BacktestSeries  `json:"series"`
	Metrics   Metrics         `json:"metrics"`
	Risk      RiskMetrics     `json:"risk"`
	Integrity IntegrityReport `json:"integrity"`
}
