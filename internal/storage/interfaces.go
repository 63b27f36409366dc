package storage

import (
	"context"
	"time"

	"defi-portfolio-lab/internal/domain"
)

// PortfolioStore persists saved backtest configurations.
type PortfolioStore interface {
	// Insert adds a new portfolio. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, p *domain.SavedPortfolio) error

	// GetByID retrieves a portfolio. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.SavedPortfolio, error)

	// List retrieves all portfolios ordered by created_at ASC, id ASC.
	List(ctx context.Context) ([]*domain.SavedPortfolio, error)

	// Update replaces an existing portfolio. Returns ErrNotFound if not exists.
	Update(ctx context.Context, p *domain.SavedPortfolio) error

	// Delete removes a portfolio. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id string) error
}

// BacktestRunStore persists executed backtest run records.
type BacktestRunStore interface {
	// Insert adds a new run record. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.BacktestRun) error

	// GetByID retrieves a run by its id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error)

	// GetByPortfolioID retrieves all runs for a portfolio, ordered by created_at ASC.
	GetByPortfolioID(ctx context.Context, portfolioID string) ([]*domain.BacktestRun, error)
}

// PricePointStore persists daily price points per asset.
type PricePointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (asset_id, date).
	InsertBulk(ctx context.Context, points []*domain.StoredPricePoint) error

	// GetByAssetID retrieves all points for an asset, ordered by date ASC.
	GetByAssetID(ctx context.Context, assetID string) ([]*domain.StoredPricePoint, error)

	// GetByDateRange retrieves points for an asset within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, assetID string, start, end time.Time) ([]*domain.StoredPricePoint, error)
}
