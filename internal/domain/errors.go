package domain

import (
	"errors"
	"fmt"
)

// Errores del motor de simulación. Se comparan con errors.Is.
var (
	// ErrEmptySample: la muestra no tiene observaciones. Fatal para toda la corrida.
	ErrEmptySample = errors.New("reward sample is empty")

	// ErrInvalidTrialCount: trial_count <= 0. Error de configuración del caller.
	ErrInvalidTrialCount = errors.New("trial count must be positive")

	// ErrDegenerateBlockCount: el número de bloques del escenario redondea a cero.
	// Nunca se fuerza a 1: eso falsearía el período simulado.
	ErrDegenerateBlockCount = errors.New("block count rounds to zero")

	// ErrMismatchedLength: el comparador recibió distribuciones de distinto largo.
	ErrMismatchedLength = errors.New("distributions have different lengths")

	// ErrInvalidScenario: parámetros del escenario fuera de rango.
	ErrInvalidScenario = errors.New("invalid scenario")
)

// ScenarioError asocia un error con el escenario que lo produjo.
type ScenarioError struct {
	ScenarioID string
	Err        error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("scenario %q: %v", e.ScenarioID, e.Err)
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}
