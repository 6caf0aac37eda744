package domain

import (
	"fmt"
	"math"
)

// DefaultBlocksPerValidatorPerYear es el número esperado de bloques propuestos
// por un validador en un año.
const DefaultBlocksPerValidatorPerYear = 2.5

// MaxBlockCount acota los bloques por resample. Cada worker guarda k valores
// en memoria; 1<<24 equivale a ~6.7M validadores a 2.5 bloques/año.
const MaxBlockCount = 1 << 24

// ScenarioSpec describe un pool a simular.
//
//   - PoolSize: validadores del pool (>= 0; 0 solo tiene sentido combinado).
//   - CombineWith: si > 0, validadores de otro pool que se suman antes de simular
//     (ej. un smoothing pool que absorbe los validadores de un pool pequeño).
//   - FeeMultiplier: si > 0, se escala cada valor de la distribución por él.
//     Lo paga el pool que lo lleva, no la comparación.
type ScenarioSpec struct {
	ID                        string  `json:"id"`
	PoolSize                  int     `json:"pool_size"`
	BlocksPerValidatorPerYear float64 `json:"blocks_per_validator_per_year"`
	FeeMultiplier             float64 `json:"fee_multiplier,omitempty"`
	CombineWith               int     `json:"combine_with,omitempty"`
}

// Validate chequea rangos. No valida el block count: eso es ErrDegenerateBlockCount.
func (s ScenarioSpec) Validate() error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidScenario)
	case s.PoolSize < 0:
		return fmt.Errorf("%w: pool size %d is negative", ErrInvalidScenario, s.PoolSize)
	case s.CombineWith < 0:
		return fmt.Errorf("%w: combine_with %d is negative", ErrInvalidScenario, s.CombineWith)
	case !(s.BlocksPerValidatorPerYear > 0) || math.IsInf(s.BlocksPerValidatorPerYear, 0):
		return fmt.Errorf("%w: blocks per validator per year %v must be positive", ErrInvalidScenario, s.BlocksPerValidatorPerYear)
	case s.FeeMultiplier < 0 || s.FeeMultiplier > 1 || math.IsNaN(s.FeeMultiplier):
		return fmt.Errorf("%w: fee multiplier %v outside (0,1]", ErrInvalidScenario, s.FeeMultiplier)
	}
	return nil
}

// EffectiveCount devuelve los validadores simulados (pool + combinado).
func (s ScenarioSpec) EffectiveCount() int {
	return s.PoolSize + s.CombineWith
}

// BlockCount devuelve round(effective × blocks/año): bloques propuestos en el año,
// y por lo tanto el tamaño de cada resample. Más de MaxBlockCount es ErrInvalidScenario.
func (s ScenarioSpec) BlockCount() (int, error) {
	// en float: PoolSize + CombineWith puede desbordar int
	effective := float64(s.PoolSize) + float64(s.CombineWith)
	kf := math.Round(effective * s.BlocksPerValidatorPerYear)
	if kf > MaxBlockCount || math.IsNaN(kf) {
		return 0, fmt.Errorf("%w: %.0f validators × %v blocks/year exceeds %d blocks",
			ErrInvalidScenario, effective, s.BlocksPerValidatorPerYear, MaxBlockCount)
	}
	k := int(kf)
	if k <= 0 {
		return 0, fmt.Errorf("%d validators × %v blocks/year: %w",
			s.EffectiveCount(), s.BlocksPerValidatorPerYear, ErrDegenerateBlockCount)
	}
	return k, nil
}

// HasFee indica si el escenario aplica fee.
func (s ScenarioSpec) HasFee() bool {
	return s.FeeMultiplier > 0
}

// ApplyFee escala la distribución in place si el escenario tiene fee.
func (s ScenarioSpec) ApplyFee(d Distribution) {
	if !s.HasFee() {
		return
	}
	for i := range d {
		d[i] *= s.FeeMultiplier
	}
}
