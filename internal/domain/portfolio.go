package domain

import "time"

// SavedPortfolio is a persisted backtest configuration.
type SavedPortfolio struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Request   BacktestRequest `json:"request"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// BacktestRun is a persisted record of one executed backtest.
type BacktestRun struct {
	RunID               string    `json:"runId"`
	PortfolioID         string    `json:"portfolioId"`
	FinalValue          float64   `json:"finalValue"`
	CumulativeReturnPct float64   `json:"cumulativeReturnPct"`
	IntegrityScore      int       `json:"integrityScore"`
	Result              []byte    `json:"-"` // full BacktestResult as JSON
	CreatedAt           time.Time `json:"createdAt"`
}
