package simulation

import (
	"fmt"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// Plan es el conjunto de escenarios a simular y las comparaciones entre ellos.
type Plan struct {
	Scenarios   []domain.ScenarioSpec
	Comparisons []domain.Comparison
}

// PlanParams parametriza el plan estándar.
type PlanParams struct {
	ReferencePoolSize         int
	FeeMultiplier             float64
	BlocksPerValidatorPerYear float64
	PoolSizes                 []int
}

// IDs de los escenarios del plan estándar.
const (
	ReferenceID    = "reference"
	ReferenceFeeID = "reference_fee"
)

// PoolID es el id del escenario de un pool candidato.
func PoolID(size int) string { return fmt.Sprintf("pool_%d", size) }

// CombinedID es el id del escenario referencia + pool con fee.
func CombinedID(size int) string { return fmt.Sprintf("combined_%d", size) }

// StandardPlan arma las tres familias del reporte para cada pool p:
//
//   - no_fee:   pool p  vs  referencia
//   - fee:      pool p  vs  referencia × fee
//   - combined: pool p  vs  (referencia + p) × fee
//
// Tamaños repetidos se ignoran.
func StandardPlan(p PlanParams) Plan {
	ref := domain.ScenarioSpec{
		ID:                        ReferenceID,
		PoolSize:                  p.ReferencePoolSize,
		BlocksPerValidatorPerYear: p.BlocksPerValidatorPerYear,
	}
	refFee := ref
	refFee.ID = ReferenceFeeID
	refFee.FeeMultiplier = p.FeeMultiplier

	plan := Plan{Scenarios: []domain.ScenarioSpec{ref, refFee}}

	seen := make(map[int]bool, len(p.PoolSizes))
	for _, size := range p.PoolSizes {
		if seen[size] {
			continue
		}
		seen[size] = true

		pool := domain.ScenarioSpec{
			ID:                        PoolID(size),
			PoolSize:                  size,
			BlocksPerValidatorPerYear: p.BlocksPerValidatorPerYear,
		}
		combined := domain.ScenarioSpec{
			ID:                        CombinedID(size),
			PoolSize:                  size,
			CombineWith:               p.ReferencePoolSize,
			BlocksPerValidatorPerYear: p.BlocksPerValidatorPerYear,
			FeeMultiplier:             p.FeeMultiplier,
		}
		plan.Scenarios = append(plan.Scenarios, pool, combined)

		plan.Comparisons = append(plan.Comparisons,
			domain.Comparison{
				ID:          fmt.Sprintf("%s/%d", domain.FamilyNoFee, size),
				Family:      domain.FamilyNoFee,
				PoolSize:    size,
				CandidateID: pool.ID,
				ReferenceID: ReferenceID,
			},
			domain.Comparison{
				ID:          fmt.Sprintf("%s/%d", domain.FamilyFee, size),
				Family:      domain.FamilyFee,
				PoolSize:    size,
				CandidateID: pool.ID,
				ReferenceID: ReferenceFeeID,
			},
			domain.Comparison{
				ID:          fmt.Sprintf("%s/%d", domain.FamilyCombined, size),
				Family:      domain.FamilyCombined,
				PoolSize:    size,
				CandidateID: pool.ID,
				ReferenceID: combined.ID,
			},
		)
	}
	return plan
}
