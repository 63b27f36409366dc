package backtest

import (
	"fmt"
	"math"
	"time"

	"defi-portfolio-lab/internal/domain"
)

// Engine simulates portfolio evolution over an aligned timeline under a
// target allocation, a rebalancing policy, and an optional DCA schedule.
// The simulation is an ordered fold over days: each day's decisions depend
// on the previous day's holdings, so it is never parallelized internally.
type Engine struct {
	timeline *domain.AlignedTimeline
	targets  map[string]float64
	policy   domain.RebalancePolicy
	dca      *domain.DCASchedule
	capital  float64
}

// Output is the raw day-by-day simulation result, before metrics.
type Output struct {
	Dates   []time.Time
	Values  []float64
	Prices  map[string][]float64
	Weights map[string][]float64

	// RebalanceDays holds timeline indexes of full resets to target.
	RebalanceDays []int

	// GrowthReturns are day-over-day log returns of the existing holdings,
	// computed before any DCA injection so contributions never masquerade
	// as market performance. Length is Days-1.
	GrowthReturns []float64

	// Injected is the total DCA capital added during the run.
	Injected float64
}

// NewEngine creates an engine for one run. Target weights are renormalized
// over the assets that survived alignment, which implements the
// proportional redistribution of excluded assets' weight.
func NewEngine(timeline *domain.AlignedTimeline, allocations []domain.AssetAllocation, capital float64, policy domain.RebalancePolicy, dca *domain.DCASchedule) *Engine {
	targets := make(map[string]float64, len(timeline.Assets))
	sum := 0.0
	for _, a := range allocations {
		if _, ok := timeline.Prices[a.AssetID]; ok {
			targets[a.AssetID] = a.TargetWeight
			sum += a.TargetWeight
		}
	}
	if sum > 0 {
		for id := range targets {
			targets[id] /= sum
		}
	}

	return &Engine{
		timeline: timeline,
		targets:  targets,
		policy:   policy,
		dca:      dca,
		capital:  capital,
	}
}

// Run executes the simulation in a single forward pass.
func (e *Engine) Run() (*Output, error) {
	days := e.timeline.Days()
	if days < 2 {
		return nil, fmt.Errorf("%w: aligned timeline has %d day(s), need at least 2",
			domain.ErrInvalidRequest, days)
	}
	if e.capital <= 0 {
		return nil, fmt.Errorf("%w: initial capital must be positive", domain.ErrInvalidRequest)
	}
	if len(e.timeline.Assets) == 0 {
		return nil, fmt.Errorf("%w: no asset has usable price data in the requested range",
			domain.ErrInvalidRequest)
	}

	out := &Output{
		Dates:   e.timeline.Dates,
		Values:  make([]float64, days),
		Prices:  make(map[string][]float64, len(e.timeline.Assets)),
		Weights: make(map[string][]float64, len(e.timeline.Assets)),
	}
	for _, id := range e.timeline.Assets {
		out.Prices[id] = e.timeline.Prices[id]
		out.Weights[id] = make([]float64, days)
	}

	units := make(map[string]float64, len(e.timeline.Assets))

	// Day 0: split the initial capital into unit holdings at day-0 prices.
	// Capital targeted at assets not yet listed stays as cash until the
	// first listing forces a full rebalance.
	cash := e.buyAtTargets(units, e.capital, 0)
	out.Values[0] = e.valueAt(units, cash, 0)
	e.recordWeights(out, units, cash, 0)

	for i := 1; i < days; i++ {
		// Growth-only return: existing holdings revalued at today's
		// prices, before any contribution lands.
		growthValue := e.valueAt(units, cash, i)
		prev := out.Values[i-1]
		if prev > 0 && growthValue > 0 {
			out.GrowthReturns = append(out.GrowthReturns, math.Log(growthValue/prev))
		} else {
			out.GrowthReturns = append(out.GrowthReturns, 0)
		}

		if e.dcaDue(i) {
			cash += e.buyAtTargets(units, e.dca.Amount, i)
			out.Injected += e.dca.Amount
		}

		value := e.valueAt(units, cash, i)

		if e.shouldRebalance(units, value, i) {
			cash = e.rebalance(units, value, i)
			out.RebalanceDays = append(out.RebalanceDays, i)
		}

		out.Values[i] = value
		e.recordWeights(out, units, cash, i)
	}

	return out, nil
}

// buyAtTargets spends amount across assets priced on day i, proportionally
// to their target weights. Returns the unspendable remainder (only when no
// asset is priced yet).
func (e *Engine) buyAtTargets(units map[string]float64, amount float64, day int) float64 {
	sum := 0.0
	for id, w := range e.targets {
		if e.timeline.Prices[id][day] > 0 {
			sum += w
		}
	}
	if sum <= 0 {
		return amount
	}

	for id, w := range e.targets {
		price := e.timeline.Prices[id][day]
		if price > 0 {
			units[id] += amount * (w / sum) / price
		}
	}
	return 0
}

// valueAt computes total portfolio value on day i.
func (e *Engine) valueAt(units map[string]float64, cash float64, day int) float64 {
	value := cash
	for id, u := range units {
		value += u * e.timeline.Prices[id][day]
	}
	return value
}

// shouldRebalance evaluates the policy plus the forced rebalance that
// reintroduces a late-listing asset on its first priced day.
func (e *Engine) shouldRebalance(units map[string]float64, value float64, day int) bool {
	// An asset listing today has no holdings yet: buy it in via a full
	// reset regardless of policy.
	for _, id := range e.timeline.Assets {
		if e.targets[id] > 0 && units[id] == 0 &&
			e.timeline.Prices[id][day] > 0 && e.timeline.Prices[id][day-1] == 0 {
			return true
		}
	}

	switch e.policy.Mode {
	case domain.RebalancePeriodic:
		return day%e.policy.IntervalDays == 0
	case domain.RebalanceThreshold:
		if value <= 0 {
			return false
		}
		sum := 0.0
		for id, w := range e.targets {
			if e.timeline.Prices[id][day] > 0 {
				sum += w
			}
		}
		if sum <= 0 {
			return false
		}
		for id, w := range e.targets {
			price := e.timeline.Prices[id][day]
			if price <= 0 {
				continue
			}
			current := units[id] * price / value
			if math.Abs(current-w/sum)*100 > e.policy.DeviationPct {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// rebalance resets every priced asset's holdings so its weight equals the
// target exactly at current prices. Returns the new cash remainder.
func (e *Engine) rebalance(units map[string]float64, value float64, day int) float64 {
	sum := 0.0
	for id, w := range e.targets {
		if e.timeline.Prices[id][day] > 0 {
			sum += w
		}
	}
	if sum <= 0 {
		return value
	}

	for id, w := range e.targets {
		price := e.timeline.Prices[id][day]
		if price > 0 {
			units[id] = value * (w / sum) / price
		} else {
			units[id] = 0
		}
	}
	return 0
}

// recordWeights stores each asset's share of the day's portfolio value.
func (e *Engine) recordWeights(out *Output, units map[string]float64, cash float64, day int) {
	value := e.valueAt(units, cash, day)
	for _, id := range e.timeline.Assets {
		if value > 0 {
			out.Weights[id][day] = units[id] * e.timeline.Prices[id][day] / value
		}
	}
}

// dcaDue reports whether a contribution lands on timeline day i. Day 0
// never injects; the initial capital covers it.
func (e *Engine) dcaDue(day int) bool {
	if e.dca == nil || !e.dca.Enabled || e.dca.Amount <= 0 || day == 0 {
		return false
	}
	return dueOn(e.dca.Periodicity, e.timeline.Dates[0], e.timeline.Dates[day], day)
}
