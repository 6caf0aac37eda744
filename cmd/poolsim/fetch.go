package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/poolsim/config"
	"github.com/alejandrodnm/poolsim/internal/adapters/csvsample"
	"github.com/alejandrodnm/poolsim/internal/adapters/payload"
	"github.com/alejandrodnm/poolsim/internal/domain"
	"github.com/alejandrodnm/poolsim/internal/ports"
	"github.com/schollz/progressbar/v3"
)

// runFetch agrega bloques al CSV de la muestra. Si el archivo ya tiene filas,
// sigue desde el bloque anterior al último guardado.
func runFetch(ctx context.Context, cfg config.FetchConfig, path string) error {
	start := cfg.StartBlock
	last, ok, err := csvsample.LastBlock(path)
	if err != nil {
		return fmt.Errorf("read last block: %w", err)
	}
	if ok {
		start = last - 1
	}

	app, err := csvsample.OpenAppender(path)
	if err != nil {
		return err
	}
	defer app.Close()

	slog.Info("fetching blocks",
		"from", start,
		"count", cfg.NumCalls,
		"resume", ok,
		"out", path,
	)

	bar := progressbar.NewOptions(
		cfg.NumCalls,
		progressbar.OptionFullWidth(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("blocks"),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
	client := payload.NewClient(cfg.BaseURL, cfg.RatePerSec)
	res, err := payload.FetchRange(ctx, progressProvider{next: client, bar: bar}, app, start, cfg.NumCalls)
	slog.Info("fetch done",
		"fetched", res.Fetched,
		"failed", res.Failed,
		"last_block", res.Last,
	)
	return err
}

// progressProvider avanza la barra por cada bloque pedido, haya fallado o no.
type progressProvider struct {
	next ports.BlockProvider
	bar  *progressbar.ProgressBar
}

func (p progressProvider) FetchBlock(ctx context.Context, number int64) (domain.BlockRecord, error) {
	b, err := p.next.FetchBlock(ctx, number)
	_ = p.bar.Add(1)
	return b, err
}
