package csvsample

// loader.go: lee la columna de rewards de block_data.csv.
//
// El archivo lo genera el comando fetch (o cualquier script externo); el core
// solo ve una secuencia ordenada de reales.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// DefaultColumn es la columna con el pago al proposer, en ETH.
const DefaultColumn = "payment"

// Loader implementa ports.SampleSource sobre un CSV con header.
type Loader struct {
	path   string
	column string
}

// NewLoader crea un Loader. column vacío = "payment".
func NewLoader(path, column string) *Loader {
	if column == "" {
		column = DefaultColumn
	}
	return &Loader{path: path, column: column}
}

// LoadSample abre el archivo y parsea la columna configurada.
func (l *Loader) LoadSample(ctx context.Context) (domain.RewardSample, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return domain.RewardSample{}, fmt.Errorf("csvsample.LoadSample: open %q: %w", l.path, err)
	}
	defer f.Close()

	values, err := ReadColumn(ctx, f, l.column)
	if err != nil {
		return domain.RewardSample{}, fmt.Errorf("csvsample.LoadSample: %q: %w", l.path, err)
	}
	if len(values) == 0 {
		return domain.RewardSample{}, fmt.Errorf("csvsample.LoadSample: %q: %w", l.path, domain.ErrEmptySample)
	}
	return domain.NewRewardSample(values)
}

// ReadColumn parsea la columna dada de un CSV con header.
// Filas con la celda vacía se saltan; una celda no numérica es un error.
func ReadColumn(ctx context.Context, r io.Reader, column string) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in header %v", column, header)
	}

	var values []float64
	for line := 2; ; line++ {
		if line%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if idx >= len(rec) || strings.TrimSpace(rec[idx]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse %q: %w", line, rec[idx], err)
		}
		values = append(values, v)
	}
	return values, nil
}
