package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StoredPricePoint // keyed by (asset_id, date)
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{data: make(map[string]*domain.StoredPricePoint)}
}

// priceKey generates a unique key for a price point.
func priceKey(assetID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", assetID, date.Format(domain.ISODateLayout))
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (asset_id, date).
func (s *PricePointStore) InsertBulk(_ context.Context, points []*domain.StoredPricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.AssetID == "" {
			return storage.ErrInvalidInput
		}
		key := priceKey(p.AssetID, p.Date)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		cp := *p
		cp.Date = domain.DayOf(cp.Date)
		s.data[priceKey(p.AssetID, p.Date)] = &cp
	}

	return nil
}

// GetByAssetID retrieves all points for an asset, ordered by date ASC.
func (s *PricePointStore) GetByAssetID(_ context.Context, assetID string) ([]*domain.StoredPricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StoredPricePoint
	for _, p := range s.data {
		if p.AssetID == assetID {
			cp := *p
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// GetByDateRange retrieves points for an asset within [start, end] (inclusive).
func (s *PricePointStore) GetByDateRange(_ context.Context, assetID string, start, end time.Time) ([]*domain.StoredPricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start = domain.DayOf(start)
	end = domain.DayOf(end)

	var result []*domain.StoredPricePoint
	for _, p := range s.data {
		if p.AssetID == assetID && !p.Date.Before(start) && !p.Date.After(end) {
			cp := *p
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.PricePointStore = (*PricePointStore)(nil)
