package payload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/poolsim/internal/domain"
	"github.com/alejandrodnm/poolsim/internal/ports"
)

// rawBlockInfo es la respuesta de /block_info. Los campos ausentes valen 0.
type rawBlockInfo struct {
	Payment json.Number `json:"payment"`
	Slot    json.Number `json:"slot"`
	Block   json.Number `json:"block"`
	TxCount json.Number `json:"tx_count"`
	GasUsed json.Number `json:"gas_used"`
}

// FetchBlock obtiene el pago al proposer de un bloque.
func (c *Client) FetchBlock(ctx context.Context, number int64) (domain.BlockRecord, error) {
	url := fmt.Sprintf("%s/block_info?block=%d", c.baseURL, number)

	var raw rawBlockInfo
	if err := c.get(ctx, url, &raw); err != nil {
		return domain.BlockRecord{}, fmt.Errorf("payload.FetchBlock %d: %w", number, err)
	}
	return mapBlockInfo(raw)
}

func mapBlockInfo(raw rawBlockInfo) (domain.BlockRecord, error) {
	payment, err := numberFloat(raw.Payment)
	if err != nil {
		return domain.BlockRecord{}, fmt.Errorf("payload: payment %q: %w", raw.Payment, err)
	}
	return domain.BlockRecord{
		Payment: payment,
		Slot:    numberInt(raw.Slot),
		Block:   numberInt(raw.Block),
		TxCount: numberInt(raw.TxCount),
		GasUsed: numberInt(raw.GasUsed),
	}, nil
}

func numberFloat(n json.Number) (float64, error) {
	if n == "" {
		return 0, nil
	}
	return n.Float64()
}

// numberInt tolera enteros serializados como float ("12.0").
func numberInt(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, _ := n.Float64()
	return int64(f)
}

// FetchResult resume una pasada de FetchRange.
type FetchResult struct {
	Fetched int
	Failed  int
	Last    int64 // último bloque pedido
}

// BlockSink recibe cada bloque obtenido (ej. csvsample.Appender).
type BlockSink interface {
	Append(b domain.BlockRecord) error
}

// FetchRange recorre count bloques hacia atrás desde start. Un bloque que falla
// se loguea y se salta; un error del sink o del contexto corta la pasada.
func FetchRange(ctx context.Context, provider ports.BlockProvider, sink BlockSink, start int64, count int) (FetchResult, error) {
	var res FetchResult
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		number := start - int64(i)
		res.Last = number

		b, err := provider.FetchBlock(ctx, number)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			slog.Warn("fetch block failed", "block", number, "err", err)
			res.Failed++
			continue
		}
		if err := sink.Append(b); err != nil {
			return res, fmt.Errorf("payload.FetchRange: block %d: %w", number, err)
		}
		res.Fetched++
		slog.Debug("block saved", "block", number, "payment", b.Payment)
	}
	return res, nil
}
