package storage_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/poolsim/internal/adapters/storage"
	"github.com/alejandrodnm/poolsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReport(runID string, createdAt time.Time) domain.Report {
	ref := domain.ScenarioSpec{ID: "reference", PoolSize: 1350, BlocksPerValidatorPerYear: 2.5}
	pool := domain.ScenarioSpec{ID: "pool_10", PoolSize: 10, BlocksPerValidatorPerYear: 2.5}
	return domain.Report{
		RunID:      runID,
		CreatedAt:  createdAt,
		Seed:       math.MaxUint64, // no entra en int64
		TrialCount: 1000,
		Mode:       domain.ModeIndexPaired,
		Sample:     domain.SampleStats{Size: 4, Mean: 0.025},
		Scenarios: map[string]domain.ScenarioSummary{
			ref.ID:  {Spec: ref, BlockCount: 3375, Summary: domain.Summary{Trials: 1000, Min: 0.02, Max: 0.03, Mean: 0.025}},
			pool.ID: {Spec: pool, BlockCount: 25, Summary: domain.Summary{Trials: 1000, Min: 0.01, Max: 0.04, Mean: 0.025}},
		},
		Comparisons: []domain.ComparisonResult{
			{Comparison: domain.Comparison{ID: "no_fee/10", Family: domain.FamilyNoFee, PoolSize: 10, CandidateID: pool.ID, ReferenceID: ref.ID}, Probability: 0.48},
			{Comparison: domain.Comparison{ID: "no_fee/0", Family: domain.FamilyNoFee, PoolSize: 0, CandidateID: "pool_0", ReferenceID: ref.ID}, Skipped: true, Reason: "block count rounds to zero"},
		},
		Failures:      map[string]string{"pool_0": "block count rounds to zero"},
		Probabilities: domain.ProbabilityResult{"no_fee/10": 0.48},
		Duration:      1500 * time.Millisecond,
	}
}

func TestSQLiteStorage_SaveAndGetRuns(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, db.SaveRun(ctx, makeReport("run-old", now.Add(-time.Hour))))
	require.NoError(t, db.SaveRun(ctx, makeReport("run-new", now)))

	runs, err := db.GetRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// más reciente primero
	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "run-old", runs[1].RunID)

	r := runs[0]
	assert.Equal(t, uint64(math.MaxUint64), r.Seed)
	assert.Equal(t, 1000, r.TrialCount)
	assert.Equal(t, domain.ModeIndexPaired, r.Mode)
	assert.Equal(t, 4, r.SampleSize)
	assert.Equal(t, 2, r.Comparisons)
	assert.Equal(t, 1, r.Failures)
	assert.WithinDuration(t, now, r.CreatedAt, time.Second)
}

func TestSQLiteStorage_GetRunsLimit(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	for _, id := range []string{"a", "b", "c"} {
		now = now.Add(time.Second)
		require.NoError(t, db.SaveRun(ctx, makeReport(id, now)))
	}

	runs, err := db.GetRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
}

func TestSQLiteStorage_GetProbabilitiesSkipsSkipped(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveRun(ctx, makeReport("run-1", time.Now())))

	probs, err := db.GetProbabilities(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProbabilityResult{"no_fee/10": 0.48}, probs)
}

func TestSQLiteStorage_DuplicateRunFails(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveRun(ctx, makeReport("dup", time.Now())))
	assert.Error(t, db.SaveRun(ctx, makeReport("dup", time.Now())))

	// el rollback no deja filas a medias
	runs, err := db.GetRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteStorage_Empty(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.GetRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
