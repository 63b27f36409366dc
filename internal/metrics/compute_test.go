package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defi-portfolio-lab/internal/domain"
)

func datesFrom(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestCompute_CumulativeReturn(t *testing.T) {
	in := Input{
		Dates:          datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2),
		Values:         []float64{100, 150},
		InitialCapital: 100,
	}

	m, _ := Compute(in)

	assert.Equal(t, 150.0, m.FinalValue)
	assert.Equal(t, 100.0, m.TotalInvested)
	assert.InDelta(t, 50, m.CumulativeReturnPct, 1e-9)
	assert.InDelta(t, 50, m.CapitalGrowth, 1e-9)
}

func TestCompute_ReturnMeasuredAgainstTotalInvested(t *testing.T) {
	// DCA contributions raise the invested base, not the return.
	in := Input{
		Dates:          datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 5),
		Values:         []float64{100, 110, 120, 130, 140},
		InitialCapital: 100,
		Injected:       40,
	}

	m, _ := Compute(in)

	assert.Equal(t, 140.0, m.TotalInvested)
	assert.Equal(t, 40.0, m.DCAContributions)
	assert.InDelta(t, 0, m.CumulativeReturnPct, 1e-9)

	// finalValue - totalInvested == capitalGrowth, exactly
	assert.Equal(t, m.FinalValue-m.TotalInvested, m.CapitalGrowth)
}

func TestCAGR_OneYearDouble(t *testing.T) {
	// 366 dates spanning 365 elapsed days, value doubled.
	// (2)^(365.25/365) - 1 = 100.095%.
	dates := datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 366)
	values := make([]float64, 366)
	for i := range values {
		values[i] = 100 + 100*float64(i)/365
	}
	values[365] = 200

	m, _ := Compute(Input{Dates: dates, Values: values, InitialCapital: 100})

	require.NotNil(t, m.CAGRPct)
	assert.InDelta(t, 100.095, *m.CAGRPct, 0.5)
}

func TestCAGR_NilUnderOneDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m, _ := Compute(Input{
		Dates:          []time.Time{start, start.Add(6 * time.Hour)},
		Values:         []float64{100, 110},
		InitialCapital: 100,
	})
	assert.Nil(t, m.CAGRPct)

	m, _ = Compute(Input{
		Dates:          []time.Time{start},
		Values:         []float64{100},
		InitialCapital: 100,
	})
	assert.Nil(t, m.CAGRPct)
}

func TestVolatility_FlatSeries(t *testing.T) {
	_, r := Compute(Input{
		Dates:          datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10),
		Values:         []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100},
		GrowthReturns:  make([]float64, 9),
		InitialCapital: 100,
	})

	assert.Zero(t, r.VolatilityPct)
	assert.Zero(t, r.MaxDrawdownPct)
	assert.Nil(t, r.Sharpe, "sharpe is not computable without volatility")
	assert.Nil(t, r.RiskReward, "risk/reward is not computable without drawdown")
}

func TestVolatility_HandComputed(t *testing.T) {
	// Sample stddev of {ln 1.1, -ln 1.1} is ln(1.1)*sqrt(2);
	// annualized: * sqrt(365) * 100.
	returns := []float64{math.Log(1.1), -math.Log(1.1)}
	want := math.Log(1.1) * math.Sqrt2 * math.Sqrt(365) * 100

	_, r := Compute(Input{
		Dates:          datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3),
		Values:         []float64{100, 110, 100},
		GrowthReturns:  returns,
		InitialCapital: 100,
	})

	assert.InDelta(t, want, r.VolatilityPct, 1e-9)
	assert.NotNil(t, r.Sharpe)
}

func TestMaxDrawdown(t *testing.T) {
	_, r := Compute(Input{
		Dates:          datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 5),
		Values:         []float64{100, 120, 90, 100, 110},
		InitialCapital: 100,
	})

	// Peak 120 to trough 90
	assert.InDelta(t, -25, r.MaxDrawdownPct, 1e-9)
	assert.LessOrEqual(t, r.MaxDrawdownPct, 0.0)
}

func TestRiskReward(t *testing.T) {
	dates := datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 366)
	values := make([]float64, 366)
	for i := range values {
		values[i] = 100
	}
	values[100] = 150 // peak, then back to 100: 33.33% drawdown
	values[365] = 200

	m, r := Compute(Input{Dates: dates, Values: values, InitialCapital: 100})

	require.NotNil(t, m.CAGRPct)
	require.NotNil(t, r.RiskReward)
	assert.InDelta(t, *m.CAGRPct/math.Abs(r.MaxDrawdownPct), *r.RiskReward, 1e-9)
}

func TestSharpe_RiskFreeRate(t *testing.T) {
	returns := []float64{math.Log(1.1), -math.Log(1.1), math.Log(1.05)}

	_, base := Compute(Input{
		Dates:          datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 4),
		Values:         []float64{100, 110, 100, 105},
		GrowthReturns:  returns,
		InitialCapital: 100,
	})
	_, withRf := Compute(Input{
		Dates:           datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 4),
		Values:          []float64{100, 110, 100, 105},
		GrowthReturns:   returns,
		InitialCapital:  100,
		RiskFreeRatePct: 5,
	})

	require.NotNil(t, base.Sharpe)
	require.NotNil(t, withRf.Sharpe)
	assert.Greater(t, *base.Sharpe, *withRf.Sharpe)
}

func TestAssetVolatilities_SkipPreListingZeros(t *testing.T) {
	_, r := Compute(Input{
		Dates:  datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 4),
		Values: []float64{100, 100, 100, 100},
		AssetPrices: map[string][]float64{
			"late":   {0, 0, 100, 110},
			"steady": {50, 50, 50, 50},
		},
		InitialCapital: 100,
	})

	// Only one valid return for "late", so its volatility is zero, not NaN
	assert.Zero(t, r.AssetVolatilityPct["late"])
	assert.Zero(t, r.AssetVolatilityPct["steady"])
	assert.Len(t, r.AssetVolatilityPct, 2)
}

func TestAssetVolatilities_Computed(t *testing.T) {
	_, r := Compute(Input{
		Dates:  datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3),
		Values: []float64{100, 100, 100},
		AssetPrices: map[string][]float64{
			"a": {100, 110, 100},
		},
		InitialCapital: 100,
	})

	want := math.Log(1.1) * math.Sqrt2 * math.Sqrt(365) * 100
	assert.InDelta(t, want, r.AssetVolatilityPct["a"], 1e-9)
}

func TestMetricsShape(t *testing.T) {
	m, r := Compute(Input{
		Dates:          datesFrom(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2),
		Values:         []float64{100, 90},
		GrowthReturns:  []float64{math.Log(0.9)},
		InitialCapital: 100,
	})

	var _ domain.Metrics = m
	var _ domain.RiskMetrics = r
	assert.InDelta(t, -10, m.CumulativeReturnPct, 1e-9)
	assert.InDelta(t, -10, r.MaxDrawdownPct, 1e-9)
}
