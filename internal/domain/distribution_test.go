package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	d := Distribution{5, 1, 4, 2, 3}
	s := d.Summarize()

	assert.Equal(t, 5, s.Trials)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, 3.0, s.Median, 1e-12)
	// rango 0.1 × 4 = 0.4 → 1 + 0.4 × (2-1)
	assert.InDelta(t, 1.4, s.P10, 1e-12)
	assert.InDelta(t, 4.6, s.P90, 1e-12)
	assert.InDelta(t, 1.41421356, s.StdDev, 1e-6)

	// no reordena la distribución original
	assert.Equal(t, Distribution{5, 1, 4, 2, 3}, d)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Distribution(nil).Summarize())
}

func TestSummarize_Single(t *testing.T) {
	s := Distribution{0.7}.Summarize()
	assert.Equal(t, 0.7, s.Min)
	assert.Equal(t, 0.7, s.Max)
	assert.Equal(t, 0.7, s.P90)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestSummarize_EvenLength(t *testing.T) {
	s := Distribution{4, 1, 3, 2}.Summarize()

	// mediana par = promedio de los dos centrales
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, 1.3, s.P10, 1e-12)
	assert.InDelta(t, 3.7, s.P90, 1e-12)
	assert.InDelta(t, 1.118034, s.StdDev, 1e-6)
}

func TestScaled(t *testing.T) {
	d := Distribution{1, 2}
	out := d.Scaled(0.5)
	assert.Equal(t, Distribution{0.5, 1}, out)
	assert.Equal(t, Distribution{1, 2}, d)
}

func TestReport_ByFamily(t *testing.T) {
	r := Report{Comparisons: []ComparisonResult{
		{Comparison: Comparison{ID: "a", Family: FamilyFee}},
		{Comparison: Comparison{ID: "b", Family: FamilyNoFee}},
		{Comparison: Comparison{ID: "c", Family: FamilyFee}},
	}}

	fee := r.ByFamily(FamilyFee)
	if assert.Len(t, fee, 2) {
		assert.Equal(t, "a", fee[0].ID)
		assert.Equal(t, "c", fee[1].ID)
	}
	assert.Empty(t, r.ByFamily(FamilyCombined))
}
