package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution es una estimación de reward medio por bloque por trial.
// Siempre tiene exactamente TrialCount elementos.
type Distribution []float64

// Summary son las estadísticas de una distribución que van al reporte.
type Summary struct {
	Trials int     `json:"trials"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`
	StdDev float64 `json:"stddev"`
}

// Summarize calcula el Summary. Una distribución vacía devuelve Summary{}.
func (d Distribution) Summarize() Summary {
	n := len(d)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, d)
	sort.Float64s(sorted)

	m, sd := stat.PopMeanStdDev(d, nil)
	return Summary{
		Trials: n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   m,
		Median: percentileSorted(sorted, 0.5),
		P10:    percentileSorted(sorted, 0.10),
		P90:    percentileSorted(sorted, 0.90),
		StdDev: sd,
	}
}

// Scaled devuelve una copia escalada por f.
func (d Distribution) Scaled(f float64) Distribution {
	out := make(Distribution, len(d))
	for i, v := range d {
		out[i] = v * f
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// percentileSorted interpola linealmente entre rangos: posición p×(n-1), la
// convención por defecto de numpy.percentile. stat.Quantile solo ofrece
// Empirical y LinInterp (p×n), que dan otros valores para muestras chicas.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
