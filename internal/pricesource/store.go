package pricesource

import (
	"context"
	"fmt"
	"time"

	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/storage"
)

// StoreSource serves prices from a PricePointStore (memory, ClickHouse).
type StoreSource struct {
	store storage.PricePointStore
}

// NewStoreSource creates a store-backed price source.
func NewStoreSource(store storage.PricePointStore) *StoreSource {
	return &StoreSource{store: store}
}

// Get loads the asset's points within [start, end] from the store.
func (s *StoreSource) Get(ctx context.Context, assetID string, start, end time.Time) (domain.PriceSeries, error) {
	points, err := s.store.GetByDateRange(ctx, assetID, domain.DayOf(start), domain.DayOf(end))
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", assetID, err)
	}

	series := make(domain.PriceSeries, len(points))
	for i, p := range points {
		series[i] = domain.PricePoint{
			Date:  domain.NewISODate(p.Date),
			Price: p.Price,
		}
	}
	return series, nil
}

var _ Source = (*StoreSource)(nil)
