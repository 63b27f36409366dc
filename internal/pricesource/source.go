// Package pricesource abstracts where historical daily prices come from.
// The backtesting core never fetches prices itself; a Source is injected
// and may be backed by a file, a store, or the surrounding application.
package pricesource

import (
	"context"
	"time"

	"defi-portfolio-lab/internal/domain"
)

// Source supplies the raw daily price series for one asset over a date
// range (inclusive). A partial or empty series is a valid response; the
// alignment step turns holes into integrity issues rather than errors.
type Source interface {
	Get(ctx context.Context, assetID string, start, end time.Time) (domain.PriceSeries, error)
}
