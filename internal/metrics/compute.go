// Package metrics computes performance and risk figures from a finished
// backtest series. Non-computable figures (CAGR under one elapsed day,
// Sharpe on zero volatility) are nil pointers, never zeroes.
package metrics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"defi-portfolio-lab/internal/domain"
)

// Annualization constants. Crypto markets trade every calendar day, so
// volatility annualizes over 365 days; CAGR uses the 365.25-day year.
const (
	daysPerYear     = 365.0
	cagrDaysPerYear = 365.25
)

// Input carries everything the metric computations need from a run.
type Input struct {
	Dates  []time.Time
	Values []float64

	// GrowthReturns are daily log returns with DCA injections factored
	// out (see backtest.Output).
	GrowthReturns []float64

	// AssetPrices are the aligned per-asset price vectors; zero prices
	// mark pre-listing days and are skipped.
	AssetPrices map[string][]float64

	InitialCapital  float64
	Injected        float64
	RiskFreeRatePct float64
}

// Compute derives the full metrics and risk bundles from a series.
func Compute(in Input) (domain.Metrics, domain.RiskMetrics) {
	final := in.Values[len(in.Values)-1]
	totalInvested := in.InitialCapital + in.Injected

	m := domain.Metrics{
		FinalValue:       final,
		TotalInvested:    totalInvested,
		DCAContributions: in.Injected,
		CapitalGrowth:    final - totalInvested,
	}
	if totalInvested > 0 {
		m.CumulativeReturnPct = (final/totalInvested - 1) * 100
		m.CapitalGrowthPct = m.CumulativeReturnPct
	}
	m.CAGRPct = cagr(in.Dates, final, totalInvested)

	vol := annualizedVolatility(in.GrowthReturns)
	r := domain.RiskMetrics{
		VolatilityPct:      vol,
		MaxDrawdownPct:     maxDrawdown(in.Values),
		Sharpe:             sharpe(in.GrowthReturns, vol, in.RiskFreeRatePct),
		AssetVolatilityPct: assetVolatilities(in.AssetPrices),
	}
	r.RiskReward = riskReward(m.CAGRPct, r.MaxDrawdownPct)

	return m, r
}

// cagr annualizes total return over the actual elapsed calendar days.
// Nil when fewer than one day elapsed or the ratio is not positive.
func cagr(dates []time.Time, final, invested float64) *float64 {
	if len(dates) < 2 || invested <= 0 || final <= 0 {
		return nil
	}
	elapsedDays := dates[len(dates)-1].Sub(dates[0]).Hours() / 24
	if elapsedDays < 1 {
		return nil
	}
	v := (math.Pow(final/invested, cagrDaysPerYear/elapsedDays) - 1) * 100
	return &v
}

// annualizedVolatility is the sample standard deviation of daily log
// returns scaled to a year, in percent.
func annualizedVolatility(logReturns []float64) float64 {
	if len(logReturns) < 2 {
		return 0
	}
	return stat.StdDev(logReturns, nil) * math.Sqrt(daysPerYear) * 100
}

// maxDrawdown is the worst peak-to-trough decline, as a percentage <= 0.
func maxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (v/peak - 1) * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// sharpe is mean annualized return minus the risk-free rate, per unit of
// volatility. Nil when volatility is zero.
func sharpe(logReturns []float64, volatilityPct, riskFreeRatePct float64) *float64 {
	if volatilityPct == 0 || len(logReturns) == 0 {
		return nil
	}
	meanAnnualizedPct := stat.Mean(logReturns, nil) * daysPerYear * 100
	v := (meanAnnualizedPct - riskFreeRatePct) / volatilityPct
	return &v
}

// riskReward is CAGR per unit of drawdown. Nil when either input is not
// available or the drawdown is zero.
func riskReward(cagrPct *float64, maxDrawdownPct float64) *float64 {
	if cagrPct == nil || maxDrawdownPct == 0 {
		return nil
	}
	v := *cagrPct / math.Abs(maxDrawdownPct)
	return &v
}

// assetVolatilities applies the portfolio volatility method to each
// asset's own aligned price vector, skipping pre-listing zero prices.
func assetVolatilities(prices map[string][]float64) map[string]float64 {
	out := make(map[string]float64, len(prices))
	for id, series := range prices {
		var returns []float64
		for i := 1; i < len(series); i++ {
			if series[i-1] > 0 && series[i] > 0 {
				returns = append(returns, math.Log(series[i]/series[i-1]))
			}
		}
		out[id] = annualizedVolatility(returns)
	}
	return out
}
