package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/alejandrodnm/poolsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	sample domain.RewardSample
	err    error
}

func (f fakeSource) LoadSample(context.Context) (domain.RewardSample, error) {
	return f.sample, f.err
}

type captureReporter struct {
	reports []domain.Report
	err     error
}

func (c *captureReporter) Report(_ context.Context, r domain.Report) error {
	c.reports = append(c.reports, r)
	return c.err
}

type captureStorage struct {
	saved []domain.Report
}

func (c *captureStorage) SaveRun(_ context.Context, r domain.Report) error {
	c.saved = append(c.saved, r)
	return nil
}

func (c *captureStorage) GetRuns(context.Context, int) ([]domain.RunRecord, error) { return nil, nil }
func (c *captureStorage) Close() error                                             { return nil }

func testRunConfig(poolSizes ...int) RunConfig {
	seed := uint64(42)
	return RunConfig{
		Plan: StandardPlan(PlanParams{
			ReferencePoolSize:         100,
			FeeMultiplier:             0.93,
			BlocksPerValidatorPerYear: 2.5,
			PoolSizes:                 poolSizes,
		}),
		TrialCount: 300,
		Engine:     EngineConfig{Seed: &seed},
	}
}

func TestRunner_Run(t *testing.T) {
	sample := mustSample(t, 0.01, 0.02, 0.03, 0.04, 1.2)
	rep := &captureReporter{}
	store := &captureStorage{}

	r, err := NewRunner(testRunConfig(1, 10), fakeSource{sample: sample}, rep, store)
	require.NoError(t, err)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.reports, 1)
	require.Len(t, store.saved, 1)
	assert.Equal(t, report.RunID, store.saved[0].RunID)
	assert.NotEmpty(t, report.RunID)

	assert.Equal(t, uint64(42), report.Seed)
	assert.Equal(t, 300, report.TrialCount)
	assert.Equal(t, domain.ModeIndexPaired, report.Mode)
	assert.Equal(t, 5, report.Sample.Size)
	assert.Len(t, report.Scenarios, 6)
	assert.Len(t, report.Comparisons, 6)
	assert.Len(t, report.Probabilities, 6)
	assert.Empty(t, report.Failures)

	for id, p := range report.Probabilities {
		assert.GreaterOrEqual(t, p, 0.0, id)
		assert.LessOrEqual(t, p, 1.0, id)
	}

	ref := report.Scenarios[ReferenceID]
	assert.Equal(t, 250, ref.BlockCount)
	assert.Equal(t, 300, ref.Summary.Trials)
}

func TestRunner_SameSeedSameProbabilities(t *testing.T) {
	sample := mustSample(t, 0.01, 0.02, 0.03, 0.04, 1.2)

	r1, err := NewRunner(testRunConfig(1, 10), fakeSource{sample: sample}, nil, nil)
	require.NoError(t, err)
	r2, err := NewRunner(testRunConfig(1, 10), fakeSource{sample: sample}, nil, nil)
	require.NoError(t, err)

	a, err := r1.Run(context.Background())
	require.NoError(t, err)
	b, err := r2.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Probabilities, b.Probabilities)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunner_DegenerateScenarioIsReportedNotOmitted(t *testing.T) {
	sample := mustSample(t, 0.01, 0.02)

	r, err := NewRunner(testRunConfig(0, 10), fakeSource{sample: sample}, nil, nil)
	require.NoError(t, err)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Contains(t, report.Failures, PoolID(0))
	assert.Contains(t, report.Failures[PoolID(0)], "rounds to zero")

	// combined_0 = 0 + 100 validadores: se simula igual
	assert.Contains(t, report.Scenarios, CombinedID(0))

	skipped := 0
	for _, c := range report.Comparisons {
		if c.PoolSize == 0 {
			assert.True(t, c.Skipped, c.ID)
			assert.NotEmpty(t, c.Reason)
			assert.NotContains(t, report.Probabilities, c.ID)
			skipped++
		} else {
			assert.False(t, c.Skipped, c.ID)
		}
	}
	assert.Equal(t, 3, skipped)
}

func TestRunner_EmptySampleIsFatal(t *testing.T) {
	r, err := NewRunner(testRunConfig(1), fakeSource{sample: mustSample(t)}, nil, nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptySample)
}

func TestRunner_SourceError(t *testing.T) {
	boom := errors.New("boom")
	r, err := NewRunner(testRunConfig(1), fakeSource{err: boom}, nil, nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunner_ReporterErrorDoesNotFailRun(t *testing.T) {
	rep := &captureReporter{err: errors.New("stdout closed")}
	r, err := NewRunner(testRunConfig(1), fakeSource{sample: mustSample(t, 0.1, 0.2)}, rep, nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.NoError(t, err)
	assert.Len(t, rep.reports, 1)
}

func TestNewRunner_UnknownMode(t *testing.T) {
	cfg := testRunConfig(1)
	cfg.Mode = "weird"
	_, err := NewRunner(cfg, fakeSource{}, nil, nil)
	assert.Error(t, err)
}

func TestComparisonBlocked_MissingScenario(t *testing.T) {
	reason, blocked := comparisonBlocked(
		domain.Comparison{CandidateID: "x", ReferenceID: "y"},
		BatchResult{Distributions: map[string]domain.Distribution{"y": {1}}},
	)
	assert.True(t, blocked)
	assert.Contains(t, reason, `"x" not in plan`)
}
