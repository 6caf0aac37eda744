package ports

import (
	"context"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// SampleSource carga la muestra histórica de rewards por bloque.
type SampleSource interface {
	// LoadSample devuelve la muestra completa. Se llama una vez por corrida,
	// antes de simular.
	LoadSample(ctx context.Context) (domain.RewardSample, error)
}
