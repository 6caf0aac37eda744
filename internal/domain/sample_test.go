package domain

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRewardSample_CopiesInput(t *testing.T) {
	in := []float64{0.01, 0.02}
	s, err := NewRewardSample(in)
	require.NoError(t, err)

	in[0] = 99
	assert.Equal(t, 0.01, s.ValueAt(0))
	assert.Equal(t, 2, s.Size())
}

func TestNewRewardSample_RejectsNegativeAndNaN(t *testing.T) {
	_, err := NewRewardSample([]float64{0.1, -0.2})
	assert.Error(t, err)

	_, err = NewRewardSample([]float64{math.NaN()})
	assert.Error(t, err)

	_, err = NewRewardSample([]float64{math.Inf(1)})
	assert.Error(t, err)
}

func TestDrawWithReplacement_ClosureAndLength(t *testing.T) {
	values := []float64{0.01, 0.02, 0.03, 0.04}
	s, err := NewRewardSample(values)
	require.NoError(t, err)

	allowed := map[float64]bool{}
	for _, v := range values {
		allowed[v] = true
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for _, k := range []int{1, 3, 4, 17, 500} {
		draw, err := s.DrawWithReplacement(rng, k)
		require.NoError(t, err)
		require.Len(t, draw, k)
		for _, v := range draw {
			assert.True(t, allowed[v], "value %v not in sample", v)
		}
	}
}

func TestDrawWithReplacement_RepeatsValues(t *testing.T) {
	// con reemplazo: 50 extracciones de 2 valores tienen que repetir
	s, err := NewRewardSample([]float64{1, 2})
	require.NoError(t, err)

	draw, err := s.DrawWithReplacement(rand.New(rand.NewPCG(7, 7)), 50)
	require.NoError(t, err)

	counts := map[float64]int{}
	for _, v := range draw {
		counts[v]++
	}
	assert.Greater(t, counts[1]+counts[2], 2)
	assert.Greater(t, counts[1], 1)
	assert.Greater(t, counts[2], 1)
}

func TestDrawWithReplacement_EmptySample(t *testing.T) {
	s, err := NewRewardSample(nil)
	require.NoError(t, err)

	_, err = s.DrawWithReplacement(rand.New(rand.NewPCG(1, 1)), 3)
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestDrawWithReplacement_ZeroK(t *testing.T) {
	s, err := NewRewardSample([]float64{1})
	require.NoError(t, err)

	_, err = s.DrawWithReplacement(rand.New(rand.NewPCG(1, 1)), 0)
	assert.ErrorIs(t, err, ErrDegenerateBlockCount)
}

func TestRewardSample_MeanMedian(t *testing.T) {
	s, err := NewRewardSample([]float64{0.04, 0.01, 0.03, 0.02})
	require.NoError(t, err)

	assert.InDelta(t, 0.025, s.Mean(), 1e-12)
	assert.InDelta(t, 0.025, s.Median(), 1e-12)

	empty, _ := NewRewardSample(nil)
	assert.Equal(t, 0.0, empty.Mean())
	assert.Equal(t, 0.0, empty.Median())
}

func TestComputeBucketShares(t *testing.T) {
	s, err := NewRewardSample([]float64{2.0, 0.5, 0.5, 0.05, 0.95})
	require.NoError(t, err)

	b := ComputeBucketShares(s)
	assert.InDelta(t, 2.0, b.High, 1e-12)
	assert.InDelta(t, 1.95, b.Medium, 1e-12)
	assert.InDelta(t, 0.05, b.Low, 1e-12)
	assert.InDelta(t, 1.0, b.ShareHigh+b.ShareMedium+b.ShareLow, 1e-12)
	assert.InDelta(t, 0.5, b.ShareHigh, 1e-12)
}

func TestComputeBucketShares_AllZero(t *testing.T) {
	s, err := NewRewardSample([]float64{0, 0})
	require.NoError(t, err)

	b := ComputeBucketShares(s)
	assert.Equal(t, BucketShares{}, b)
}
