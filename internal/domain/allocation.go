package domain

// AssetAllocation pairs an opaque asset identifier with its target weight.
// Weights are fractions in [0,1] and must sum to ~1 across the request.
type AssetAllocation struct {
	AssetID      string  `json:"id"`
	TargetWeight float64 `json:"allocation"`
}

// RebalanceMode selects the rebalancing trigger.
type RebalanceMode string

// Rebalance modes.
const (
	RebalanceNone      RebalanceMode = "none"
	RebalancePeriodic  RebalanceMode = "periodic"
	RebalanceThreshold RebalanceMode = "threshold"
)

// RebalancePolicy configures when the portfolio is reset to target weights.
// IntervalDays applies to periodic mode; DeviationPct (absolute percentage
// points of weight drift) applies to threshold mode.
type RebalancePolicy struct {
	Mode         RebalanceMode `json:"mode"`
	IntervalDays int           `json:"periodDays,omitempty"`
	DeviationPct float64       `json:"thresholdPct,omitempty"`
}

// DCAPeriodicity selects how often a DCA contribution is injected.
type DCAPeriodicity string

// DCA periodicities.
const (
	DCADaily   DCAPeriodicity = "daily"
	DCAWeekly  DCAPeriodicity = "weekly"
	DCAMonthly DCAPeriodicity = "monthly"
	DCAYearly  DCAPeriodicity = "yearly"
)

// DCASchedule configures periodic capital injections. Contributions are
// bought at target weights, not at the drifted weights of the day.
type DCASchedule struct {
	Enabled     bool           `json:"enabled"`
	Amount      float64        `json:"amount"`
	Periodicity DCAPeriodicity `json:"periodicity"`
}
