package clickhouse

import (
	"context"
	"fmt"
	"time"

	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/storage"
)

// PricePointStore implements storage.PricePointStore using ClickHouse.
// Daily closes are append-mostly and read in date-range scans, which fits
// the MergeTree layout ordered by (asset_id, date).
type PricePointStore struct {
	conn *Conn
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(conn *Conn) *PricePointStore {
	return &PricePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (asset_id, date).
func (s *PricePointStore) InsertBulk(ctx context.Context, points []*domain.StoredPricePoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		assetID string
		date    time.Time
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.AssetID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.AssetID, domain.DayOf(p.Date)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, p.AssetID, domain.DayOf(p.Date))
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_points (asset_id, date, price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.AssetID, domain.DayOf(p.Date), p.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAssetID retrieves all points for an asset, ordered by date ASC.
func (s *PricePointStore) GetByAssetID(ctx context.Context, assetID string) ([]*domain.StoredPricePoint, error) {
	query := `
		SELECT asset_id, date, price
		FROM price_points
		WHERE asset_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("query by asset id: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// GetByDateRange retrieves points for an asset within [start, end] (inclusive).
func (s *PricePointStore) GetByDateRange(ctx context.Context, assetID string, start, end time.Time) ([]*domain.StoredPricePoint, error) {
	query := `
		SELECT asset_id, date, price
		FROM price_points
		WHERE asset_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, assetID, domain.DayOf(start), domain.DayOf(end))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// exists checks if a point with the given key exists.
func (s *PricePointStore) exists(ctx context.Context, assetID string, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM price_points
		WHERE asset_id = ? AND date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, assetID, date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanPricePoints scans multiple rows into a slice.
func scanPricePoints(rows chRows) ([]*domain.StoredPricePoint, error) {
	var points []*domain.StoredPricePoint

	for rows.Next() {
		var p domain.StoredPricePoint

		if err := rows.Scan(&p.AssetID, &p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price point row: %w", err)
		}

		p.Date = domain.DayOf(p.Date)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price point rows: %w", err)
	}

	return points, nil
}
