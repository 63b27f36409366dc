package backtest

import (
	"context"
	"fmt"

	"defi-portfolio-lab/internal/alignment"
	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/metrics"
	"defi-portfolio-lab/internal/pricesource"
)

// Runner is the single entry point for executing a backtest request:
// validate, resolve prices, align, simulate, compute metrics. Each call
// owns its own timeline and state, so independent runs may execute in
// parallel with no coordination.
type Runner struct {
	prices pricesource.Source
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// PriceSource resolves series for assets without inline prices in the
	// request. Optional; without it, assets missing inline prices are
	// treated as having no data.
	PriceSource pricesource.Source
}

// NewRunner creates a backtest runner.
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{prices: opts.PriceSource}
}

// Run executes one backtest. Structural violations return an error
// wrapping domain.ErrInvalidRequest before any simulation; data-quality
// problems are reported in the result's integrity section instead.
func (r *Runner) Run(ctx context.Context, req *domain.BacktestRequest) (*domain.BacktestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	series, err := r.resolveSeries(ctx, req)
	if err != nil {
		return nil, err
	}

	timeline, integrity, err := alignment.Align(series, req.AssetIDs(), req.StartDate.Time, req.EndDate.Time)
	if err != nil {
		return nil, err
	}

	engine := NewEngine(timeline, req.Assets, req.EffectiveInitialCapital(), req.Rebalance, req.DCA)
	out, err := engine.Run()
	if err != nil {
		return nil, err
	}

	m, risk := metrics.Compute(metrics.Input{
		Dates:           out.Dates,
		Values:          out.Values,
		GrowthReturns:   out.GrowthReturns,
		AssetPrices:     out.Prices,
		InitialCapital:  req.EffectiveInitialCapital(),
		Injected:        out.Injected,
		RiskFreeRatePct: req.RiskFreeRatePct,
	})

	return assembleResult(out, m, risk, integrity), nil
}

// resolveSeries gathers raw prices per asset: inline request prices win,
// the injected source covers the rest. A missing or empty series is left
// for alignment to report; a failing source is an infrastructure error
// and propagates.
func (r *Runner) resolveSeries(ctx context.Context, req *domain.BacktestRequest) (map[string]domain.PriceSeries, error) {
	series := make(map[string]domain.PriceSeries, len(req.Assets))
	for _, a := range req.Assets {
		if inline, ok := req.Prices[a.AssetID]; ok && len(inline) > 0 {
			series[a.AssetID] = inline
			continue
		}
		if r.prices == nil {
			continue
		}
		fetched, err := r.prices.Get(ctx, a.AssetID, req.StartDate.Time, req.EndDate.Time)
		if err != nil {
			return nil, fmt.Errorf("price source: %w", err)
		}
		series[a.AssetID] = fetched
	}
	return series, nil
}

// assembleResult converts the simulation output into the immutable
// public result shape.
func assembleResult(out *Output, m domain.Metrics, risk domain.RiskMetrics, integrity *domain.IntegrityReport) *domain.BacktestResult {
	dates := make([]domain.ISODate, len(out.Dates))
	for i, d := range out.Dates {
		dates[i] = domain.NewISODate(d)
	}

	var rebalanceDates []domain.ISODate
	for _, day := range out.RebalanceDays {
		rebalanceDates = append(rebalanceDates, domain.NewISODate(out.Dates[day]))
	}

	return &domain.BacktestResult{
		Series: domain.BacktestSeries{
			Dates:          dates,
			PortfolioValue: out.Values,
			AssetPrices:    out.Prices,
			AssetWeights:   out.Weights,
			RebalanceDates: rebalanceDates,
		},
		Metrics:   m,
		Risk:      risk,
		Integrity: *integrity,
	}
}
