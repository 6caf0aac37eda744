package ports

import (
	"context"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// BlockProvider obtiene el pago al proposer de un bloque de ejecución.
type BlockProvider interface {
	FetchBlock(ctx context.Context, number int64) (domain.BlockRecord, error)
}
