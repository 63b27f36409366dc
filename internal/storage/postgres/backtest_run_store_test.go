package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/storage"
)

func testRun(runID, portfolioID string, createdAt time.Time) *domain.BacktestRun {
	return &domain.BacktestRun{
		RunID:               runID,
		PortfolioID:         portfolioID,
		FinalValue:          123.45,
		CumulativeReturnPct: 23.45,
		IntegrityScore:      90,
		Result:              []byte(`{"metrics":{"finalValue":123.45}}`),
		CreatedAt:           createdAt,
	}
}

func TestBacktestRunStore_InsertAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	portfolios := NewPortfolioStore(pool)
	store := NewBacktestRunStore(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, portfolios.Insert(ctx, testPortfolio("pf-1", now)))

	r := testRun("run-1", "pf-1", now)
	require.NoError(t, store.Insert(ctx, r))

	got, err := store.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, r.RunID, got.RunID)
	assert.Equal(t, r.PortfolioID, got.PortfolioID)
	assert.Equal(t, r.FinalValue, got.FinalValue)
	assert.Equal(t, r.IntegrityScore, got.IntegrityScore)
	assert.JSONEq(t, string(r.Result), string(got.Result))
}

func TestBacktestRunStore_InsertDuplicate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	portfolios := NewPortfolioStore(pool)
	store := NewBacktestRunStore(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, portfolios.Insert(ctx, testPortfolio("pf-1", now)))

	r := testRun("run-dup", "pf-1", now)
	require.NoError(t, store.Insert(ctx, r))
	assert.ErrorIs(t, store.Insert(ctx, r), storage.ErrDuplicateKey)
}

func TestBacktestRunStore_GetByPortfolioID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	portfolios := NewPortfolioStore(pool)
	store := NewBacktestRunStore(pool)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, portfolios.Insert(ctx, testPortfolio("pf-1", base)))
	require.NoError(t, portfolios.Insert(ctx, testPortfolio("pf-2", base)))

	require.NoError(t, store.Insert(ctx, testRun("run-2", "pf-1", base.Add(time.Minute))))
	require.NoError(t, store.Insert(ctx, testRun("run-1", "pf-1", base)))
	require.NoError(t, store.Insert(ctx, testRun("run-3", "pf-2", base)))

	got, err := store.GetByPortfolioID(ctx, "pf-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, "run-2", got[1].RunID)

	empty, err := store.GetByPortfolioID(ctx, "pf-none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBacktestRunStore_CascadeDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	portfolios := NewPortfolioStore(pool)
	store := NewBacktestRunStore(pool)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, portfolios.Insert(ctx, testPortfolio("pf-1", now)))
	require.NoError(t, store.Insert(ctx, testRun("run-1", "pf-1", now)))

	require.NoError(t, portfolios.Delete(ctx, "pf-1"))

	_, err := store.GetByID(ctx, "run-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
