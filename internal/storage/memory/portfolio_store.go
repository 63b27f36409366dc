package memory

import (
	"context"
	"sort"
	"sync"

	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/storage"
)

// PortfolioStore is an in-memory implementation of storage.PortfolioStore.
type PortfolioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SavedPortfolio
}

// NewPortfolioStore creates a new in-memory portfolio store.
func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{data: make(map[string]*domain.SavedPortfolio)}
}

// Insert adds a new portfolio. Returns ErrDuplicateKey if the id exists.
func (s *PortfolioStore) Insert(_ context.Context, p *domain.SavedPortfolio) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}
	cp := *p
	s.data[p.ID] = &cp
	return nil
}

// GetByID retrieves a portfolio. Returns ErrNotFound if not exists.
func (s *PortfolioStore) GetByID(_ context.Context, id string) (*domain.SavedPortfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// List retrieves all portfolios ordered by created_at ASC, id ASC.
func (s *PortfolioStore) List(_ context.Context) ([]*domain.SavedPortfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SavedPortfolio, 0, len(s.data))
	for _, p := range s.data {
		cp := *p
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Update replaces an existing portfolio. Returns ErrNotFound if not exists.
func (s *PortfolioStore) Update(_ context.Context, p *domain.SavedPortfolio) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; !exists {
		return storage.ErrNotFound
	}
	cp := *p
	s.data[p.ID] = &cp
	return nil
}

// Delete removes a portfolio. Returns ErrNotFound if not exists.
func (s *PortfolioStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

var _ storage.PortfolioStore = (*PortfolioStore)(nil)
