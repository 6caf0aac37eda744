package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// RewardSample es la población empírica de rewards por bloque (ETH).
// Inmutable una vez creada: se comparte entre workers sin locks.
type RewardSample struct {
	values []float64
}

// NewRewardSample copia los valores y valida que sean reales no negativos.
func NewRewardSample(values []float64) (RewardSample, error) {
	cp := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return RewardSample{}, fmt.Errorf("domain.NewRewardSample: value %d (%v) is not a non-negative real", i, v)
		}
		cp[i] = v
	}
	return RewardSample{values: cp}, nil
}

// Size devuelve el número de observaciones.
func (s RewardSample) Size() int {
	return len(s.values)
}

// ValueAt devuelve la observación i (0-indexed). Panic si i está fuera de rango,
// igual que un slice.
func (s RewardSample) ValueAt(i int) float64 {
	return s.values[i]
}

// Values devuelve una copia de las observaciones.
func (s RewardSample) Values() []float64 {
	cp := make([]float64, len(s.values))
	copy(cp, s.values)
	return cp
}

// DrawWithReplacement devuelve k valores elegidos con índices i.i.d. uniformes
// en [0, Size()). Bootstrap clásico: cada extracción usa el rango completo.
func (s RewardSample) DrawWithReplacement(rng *rand.Rand, k int) ([]float64, error) {
	if k < 0 {
		return nil, fmt.Errorf("domain.DrawWithReplacement: k=%d: %w", k, ErrDegenerateBlockCount)
	}
	out := make([]float64, k)
	if err := s.DrawInto(rng, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DrawInto llena dst con len(dst) extracciones con reemplazo.
// Evita una alocación por trial en el loop caliente del engine.
func (s RewardSample) DrawInto(rng *rand.Rand, dst []float64) error {
	n := len(s.values)
	if n == 0 {
		return ErrEmptySample
	}
	if len(dst) == 0 {
		return fmt.Errorf("domain.DrawInto: %w", ErrDegenerateBlockCount)
	}
	for i := range dst {
		dst[i] = s.values[rng.IntN(n)]
	}
	return nil
}

// Mean devuelve la media aritmética de la muestra (0 si está vacía).
func (s RewardSample) Mean() float64 {
	return mean(s.values)
}

// Median devuelve la mediana de la muestra (0 si está vacía).
func (s RewardSample) Median() float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := s.Values()
	sort.Float64s(sorted)
	return percentileSorted(sorted, 0.5)
}
