package simulation

import (
	"fmt"
	"sort"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// Comparator estima P(A > B) entre dos distribuciones simuladas.
type Comparator struct {
	mode domain.ComparisonMode
}

// NewComparator valida el modo. "" = index_paired.
func NewComparator(mode domain.ComparisonMode) (*Comparator, error) {
	switch mode {
	case "":
		mode = domain.ModeIndexPaired
	case domain.ModeIndexPaired, domain.ModeAllPairs:
	default:
		return nil, fmt.Errorf("simulation.NewComparator: unknown mode %q", mode)
	}
	return &Comparator{mode: mode}, nil
}

// Mode devuelve el estimador en uso.
func (c *Comparator) Mode() domain.ComparisonMode {
	return c.mode
}

// Compare aplica el estimador configurado.
func (c *Comparator) Compare(a, b domain.Distribution) (float64, error) {
	if c.mode == domain.ModeAllPairs {
		return ProbabilityExceedsAllPairs(a, b)
	}
	return ProbabilityExceeds(a, b)
}

// ProbabilityExceeds es la fracción de trials i con a[i] > b[i] (estricto;
// los empates no cuentan).
//
// Emparejar por índice es un proxy O(n) de P(A > B): como A y B se simulan de
// forma independiente, cada par es una observación independiente de (A, B) y el
// estimador converge a la probabilidad real cuando n → ∞, pero usa solo n de los
// n² pares disponibles. Para pocos trials conviene ProbabilityExceedsAllPairs.
func ProbabilityExceeds(a, b domain.Distribution) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, fmt.Errorf("simulation.ProbabilityExceeds: %w", err)
	}
	wins := 0
	for i := range a {
		if a[i] > b[i] {
			wins++
		}
	}
	return float64(wins) / float64(len(a)), nil
}

// ProbabilityExceedsAllPairs es la fracción de todos los pares (i, j) con
// a[i] > b[j]. Cuenta los n² pares ordenando b, en O(n log n).
func ProbabilityExceedsAllPairs(a, b domain.Distribution) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, fmt.Errorf("simulation.ProbabilityExceedsAllPairs: %w", err)
	}
	sorted := make([]float64, len(b))
	copy(sorted, b)
	sort.Float64s(sorted)

	var wins int64
	for _, x := range a {
		// índice del primer b >= x: cuántos b son estrictamente menores
		wins += int64(sort.SearchFloat64s(sorted, x))
	}
	n := float64(len(a))
	return float64(wins) / (n * float64(len(b))), nil
}

func checkLengths(a, b domain.Distribution) error {
	if len(a) != len(b) {
		return fmt.Errorf("%d vs %d: %w", len(a), len(b), domain.ErrMismatchedLength)
	}
	if len(a) == 0 {
		return fmt.Errorf("empty distributions: %w", domain.ErrInvalidTrialCount)
	}
	return nil
}
