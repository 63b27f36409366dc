package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"defi-portfolio-lab/internal/domain"
)

// FileSource serves prices from a JSON file mapping asset ids to arrays
// of {date, price} points. The whole file is parsed once at construction.
type FileSource struct {
	series map[string]domain.PriceSeries
}

// NewFileSource loads a price file from disk.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price file: %w", err)
	}
	return ParseFileSource(data)
}

// ParseFileSource builds a FileSource from raw JSON bytes.
func ParseFileSource(data []byte) (*FileSource, error) {
	var series map[string]domain.PriceSeries
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("parse price file: %w", err)
	}
	return &FileSource{series: series}, nil
}

// Get returns the points within [start, end] for the asset. Unknown
// assets yield an empty series, not an error.
func (s *FileSource) Get(_ context.Context, assetID string, start, end time.Time) (domain.PriceSeries, error) {
	start = domain.DayOf(start)
	end = domain.DayOf(end)

	var out domain.PriceSeries
	for _, p := range s.series[assetID] {
		d := p.Date.Time
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Assets lists the asset ids present in the file.
func (s *FileSource) Assets() []string {
	ids := make([]string, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	return ids
}

// Series returns the full loaded series for one asset.
func (s *FileSource) Series(assetID string) domain.PriceSeries {
	return s.series[assetID]
}

var _ Source = (*FileSource)(nil)
