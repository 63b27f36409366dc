package domain

import (
	"errors"
	"fmt"
	"math"
)

// Request defaults and tolerances.
const (
	DefaultInitialCapital = 100.0
	WeightSumTolerance    = 1e-3
)

// ErrInvalidRequest marks structurally invalid backtest requests.
// Data-quality problems never produce this error; they are reported in the
// integrity section of the result instead.
var ErrInvalidRequest = errors.New("invalid request")

// BacktestRequest is the external boundary of the backtesting core.
// Prices may carry pre-fetched series per asset; assets without inline
// prices are resolved through the injected price source.
type BacktestRequest struct {
	Assets          []AssetAllocation      `json:"assets"`
	StartDate       ISODate                `json:"startDate"`
	EndDate         ISODate                `json:"endDate"`
	Rebalance       RebalancePolicy        `json:"rebalance"`
	InitialCapital  float64                `json:"initialCapital,omitempty"`
	RiskFreeRatePct float64                `json:"riskFreeRatePct,omitempty"`
	DCA             *DCASchedule           `json:"dca,omitempty"`
	Prices          map[string]PriceSeries `json:"prices,omitempty"`
}

// EffectiveInitialCapital returns the configured capital, or the default
// when unset.
func (r *BacktestRequest) EffectiveInitialCapital() float64 {
	if r.InitialCapital == 0 {
		return DefaultInitialCapital
	}
	return r.InitialCapital
}

// DCAEnabled reports whether a positive DCA schedule is active.
func (r *BacktestRequest) DCAEnabled() bool {
	return r.DCA != nil && r.DCA.Enabled && r.DCA.Amount > 0
}

// Validate checks structural invariants and returns ErrInvalidRequest on
// the first violation. It does not inspect price data.
func (r *BacktestRequest) Validate() error {
	if len(r.Assets) == 0 {
		return fmt.Errorf("%w: asset list is empty", ErrInvalidRequest)
	}

	seen := make(map[string]struct{}, len(r.Assets))
	weightSum := 0.0
	for _, a := range r.Assets {
		if a.AssetID == "" {
			return fmt.Errorf("%w: asset with empty id", ErrInvalidRequest)
		}
		if _, dup := seen[a.AssetID]; dup {
			return fmt.Errorf("%w: duplicate asset %q", ErrInvalidRequest, a.AssetID)
		}
		seen[a.AssetID] = struct{}{}
		if a.TargetWeight < 0 || a.TargetWeight > 1 {
			return fmt.Errorf("%w: allocation for %q must be in [0,1], got %v",
				ErrInvalidRequest, a.AssetID, a.TargetWeight)
		}
		weightSum += a.TargetWeight
	}
	if math.Abs(weightSum-1) > WeightSumTolerance {
		return fmt.Errorf("%w: allocations sum to %v, expected 1", ErrInvalidRequest, weightSum)
	}

	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidRequest)
	}
	if r.StartDate.Time.After(r.EndDate.Time) {
		return fmt.Errorf("%w: startDate %s is after endDate %s",
			ErrInvalidRequest, r.StartDate.Format(ISODateLayout), r.EndDate.Format(ISODateLayout))
	}

	if r.InitialCapital < 0 {
		return fmt.Errorf("%w: initialCapital must be positive", ErrInvalidRequest)
	}

	switch r.Rebalance.Mode {
	case RebalanceNone, "":
	case RebalancePeriodic:
		if r.Rebalance.IntervalDays <= 0 {
			return fmt.Errorf("%w: periodic rebalance requires periodDays > 0", ErrInvalidRequest)
		}
	case RebalanceThreshold:
		if r.Rebalance.DeviationPct <= 0 {
			return fmt.Errorf("%w: threshold rebalance requires thresholdPct > 0", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown rebalance mode %q", ErrInvalidRequest, r.Rebalance.Mode)
	}

	if r.DCA != nil && r.DCA.Enabled {
		if r.DCA.Amount < 0 {
			return fmt.Errorf("%w: dca amount must be >= 0", ErrInvalidRequest)
		}
		switch r.DCA.Periodicity {
		case DCADaily, DCAWeekly, DCAMonthly, DCAYearly:
		default:
			return fmt.Errorf("%w: unknown dca periodicity %q", ErrInvalidRequest, r.DCA.Periodicity)
		}
	}

	return nil
}

// AssetIDs returns the asset identifiers in request order.
func (r *BacktestRequest) AssetIDs() []string {
	ids := make([]string, len(r.Assets))
	for i, a := range r.Assets {
		ids[i] = a.AssetID
	}
	return ids
}
