package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/storage"
)

// PortfolioStore implements storage.PortfolioStore using PostgreSQL.
// The backtest request is persisted as JSONB so saved portfolios replay
// byte-for-byte the configuration they were created with.
type PortfolioStore struct {
	pool *Pool
}

// NewPortfolioStore creates a new PortfolioStore.
func NewPortfolioStore(pool *Pool) *PortfolioStore {
	return &PortfolioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

// Insert adds a new portfolio. Returns ErrDuplicateKey if the id exists.
func (s *PortfolioStore) Insert(ctx context.Context, p *domain.SavedPortfolio) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	reqJSON, err := json.Marshal(p.Request)
	if err != nil {
		return fmt.Errorf("marshal portfolio request: %w", err)
	}

	query := `
		INSERT INTO portfolios (id, name, request, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query, p.ID, p.Name, reqJSON, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert portfolio: %w", err)
	}
	return nil
}

// GetByID retrieves a portfolio by its id. Returns ErrNotFound if not exists.
func (s *PortfolioStore) GetByID(ctx context.Context, id string) (*domain.SavedPortfolio, error) {
	query := `
		SELECT id, name, request, created_at, updated_at
		FROM portfolios
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	p, err := scanPortfolio(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get portfolio by id: %w", err)
	}
	return p, nil
}

// List retrieves all portfolios ordered by creation time.
func (s *PortfolioStore) List(ctx context.Context) ([]*domain.SavedPortfolio, error) {
	query := `
		SELECT id, name, request, created_at, updated_at
		FROM portfolios
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*domain.SavedPortfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio row: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolio rows: %w", err)
	}

	return portfolios, nil
}

// Update replaces the name and request of an existing portfolio.
// Returns ErrNotFound if not exists.
func (s *PortfolioStore) Update(ctx context.Context, p *domain.SavedPortfolio) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	reqJSON, err := json.Marshal(p.Request)
	if err != nil {
		return fmt.Errorf("marshal portfolio request: %w", err)
	}

	query := `
		UPDATE portfolios
		SET name = $2, request = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, p.ID, p.Name, reqJSON, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a portfolio. Returns ErrNotFound if not exists.
func (s *PortfolioStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanPortfolio scans a single row into a SavedPortfolio.
func scanPortfolio(row pgx.Row) (*domain.SavedPortfolio, error) {
	var p domain.SavedPortfolio
	var reqJSON []byte

	err := row.Scan(&p.ID, &p.Name, &reqJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(reqJSON, &p.Request); err != nil {
		return nil, fmt.Errorf("unmarshal portfolio request: %w", err)
	}
	return &p, nil
}
