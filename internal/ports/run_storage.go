package ports

import (
	"context"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// RunStorage persiste el historial de corridas.
type RunStorage interface {
	// SaveRun guarda metadata, resúmenes por escenario y probabilidades.
	SaveRun(ctx context.Context, report domain.Report) error

	// GetRuns devuelve las últimas corridas, más recientes primero.
	GetRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
