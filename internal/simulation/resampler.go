package simulation

// resampler.go: extraer k rewards con reemplazo y reducirlos a un escalar.
// Todo escenario se compone de llamadas a esto.

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// Reducer reduce una extracción a un escalar. Puede reordenar xs.
type Reducer func(xs []float64) float64

// Mean es la media aritmética: reward medio por bloque del pool.
// Media incremental: con todos los valores iguales a v devuelve v exacto.
func Mean(xs []float64) float64 {
	var m float64
	for i, x := range xs {
		m += (x - m) / float64(i+1)
	}
	return m
}

// Median ordena xs in place y devuelve la mediana.
func Median(xs []float64) float64 {
	sort.Float64s(xs)
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

// ReducerByName devuelve el reducer configurado ("mean" por defecto).
func ReducerByName(name string) (Reducer, error) {
	switch name {
	case "", "mean":
		return Mean, nil
	case "median":
		return Median, nil
	default:
		return nil, fmt.Errorf("simulation.ReducerByName: unknown reducer %q", name)
	}
}

// MeanOfDraw extrae k valores de la muestra y devuelve su media.
// k <= 0 no tiene media definida.
func MeanOfDraw(rng *rand.Rand, sample domain.RewardSample, k int) (float64, error) {
	if k <= 0 {
		return 0, fmt.Errorf("simulation.MeanOfDraw: k=%d: %w", k, domain.ErrDegenerateBlockCount)
	}
	if k > domain.MaxBlockCount {
		return 0, fmt.Errorf("simulation.MeanOfDraw: k=%d above %d: %w", k, domain.MaxBlockCount, domain.ErrInvalidScenario)
	}
	draw, err := sample.DrawWithReplacement(rng, k)
	if err != nil {
		return 0, fmt.Errorf("simulation.MeanOfDraw: %w", err)
	}
	return Mean(draw), nil
}

// Resampler es la versión con buffer reutilizable de MeanOfDraw.
// No es safe para uso concurrente: un Resampler por worker.
type Resampler struct {
	reduce Reducer
	buf    []float64
}

// NewResampler crea un Resampler. reduce nil = Mean.
func NewResampler(reduce Reducer) *Resampler {
	if reduce == nil {
		reduce = Mean
	}
	return &Resampler{reduce: reduce}
}

// Resample extrae k valores y los reduce.
func (r *Resampler) Resample(rng *rand.Rand, sample domain.RewardSample, k int) (float64, error) {
	if k <= 0 {
		return 0, fmt.Errorf("simulation.Resample: k=%d: %w", k, domain.ErrDegenerateBlockCount)
	}
	if k > domain.MaxBlockCount {
		return 0, fmt.Errorf("simulation.Resample: k=%d above %d: %w", k, domain.MaxBlockCount, domain.ErrInvalidScenario)
	}
	if cap(r.buf) < k {
		r.buf = make([]float64, k)
	}
	draw := r.buf[:k]
	if err := sample.DrawInto(rng, draw); err != nil {
		return 0, fmt.Errorf("simulation.Resample: %w", err)
	}
	return r.reduce(draw), nil
}
