package domain

import "time"

// PricePoint is a single daily closing price for one asset.
type PricePoint struct {
	Date  ISODate `json:"date"`
	Price float64 `json:"price"`
}

// PriceSeries is a sequence of price points for one asset.
// Raw input may contain duplicates, gaps, or out-of-order dates; those are
// data-quality issues resolved during alignment, not hard errors.
type PriceSeries []PricePoint

// AlignedTimeline is a common daily grid over which a backtest runs.
// Dates covers every calendar day of the requested range; Prices holds one
// value per day per asset after forward-filling. A zero price marks days
// before the asset's history begins. Never mutated after construction.
type AlignedTimeline struct {
	Dates  []time.Time
	Assets []string
	Prices map[string][]float64
}

// Days returns the number of days in the timeline.
func (t *AlignedTimeline) Days() int {
	return len(t.Dates)
}

// StoredPricePoint is a daily price as persisted in the price point store.
type StoredPricePoint struct {
	AssetID string
	Date    time.Time // midnight UTC
	Price   float64
}
