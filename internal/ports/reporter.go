package ports

import (
	"context"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// Reporter presenta el resultado de una corrida (consola, JSON, ...).
type Reporter interface {
	Report(ctx context.Context, report domain.Report) error
}
