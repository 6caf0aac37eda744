package domain

import "time"

// ComparisonMode elige el estimador de P(A > B).
type ComparisonMode string

const (
	// ModeIndexPaired compara a[i] con b[i]. O(n), sesgado pero consistente.
	ModeIndexPaired ComparisonMode = "index_paired"
	// ModeAllPairs compara todos los pares (i, j). Exacto para las dos muestras.
	ModeAllPairs ComparisonMode = "all_pairs"
)

// Familias de comparación del reporte estándar.
const (
	FamilyNoFee    = "no_fee"
	FamilyFee      = "fee"
	FamilyCombined = "combined"
)

// Comparison pide P(candidato > referencia) entre dos escenarios ya simulados.
type Comparison struct {
	ID          string `json:"id"`
	Family      string `json:"family"`
	PoolSize    int    `json:"pool_size"` // tamaño del pool candidato, para mostrar
	CandidateID string `json:"candidate_id"`
	ReferenceID string `json:"reference_id"`
}

// ComparisonResult es el resultado de una comparación.
// Skipped = true si alguno de los dos escenarios falló; Reason dice por qué.
type ComparisonResult struct {
	Comparison
	Probability float64 `json:"probability"`
	Skipped     bool    `json:"skipped,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// ProbabilityResult: id de comparación → probabilidad en [0,1].
type ProbabilityResult map[string]float64

// ScenarioSummary son las estadísticas de un escenario simulado.
type ScenarioSummary struct {
	Spec       ScenarioSpec `json:"spec"`
	BlockCount int          `json:"block_count"`
	Summary    Summary      `json:"summary"`
}

// Report es la salida completa de una corrida.
type Report struct {
	RunID         string                     `json:"run_id"`
	CreatedAt     time.Time                  `json:"created_at"`
	Seed          uint64                     `json:"seed"`
	TrialCount    int                        `json:"trial_count"`
	Mode          ComparisonMode             `json:"mode"`
	Sample        SampleStats                `json:"sample"`
	Scenarios     map[string]ScenarioSummary `json:"scenarios"`
	Comparisons   []ComparisonResult         `json:"comparisons"`
	Failures      map[string]string          `json:"failures,omitempty"`
	Probabilities ProbabilityResult          `json:"probabilities"`
	Duration      time.Duration              `json:"duration_ns"`
}

// ByFamily devuelve las comparaciones de una familia, en orden de inserción.
func (r Report) ByFamily(family string) []ComparisonResult {
	var out []ComparisonResult
	for _, c := range r.Comparisons {
		if c.Family == family {
			out = append(out, c)
		}
	}
	return out
}

// SampleStats describe la muestra usada.
type SampleStats struct {
	Size    int          `json:"size"`
	Mean    float64      `json:"mean"`
	Median  float64      `json:"median"`
	Buckets BucketShares `json:"buckets"`
}

// RunRecord es el resumen de una corrida guardada.
type RunRecord struct {
	RunID       string
	CreatedAt   time.Time
	Seed        uint64
	TrialCount  int
	Mode        ComparisonMode
	SampleSize  int
	Comparisons int
	Failures    int
}
