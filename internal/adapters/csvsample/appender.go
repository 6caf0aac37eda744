package csvsample

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// Header de block_data.csv.
var Header = []string{"payment", "slot", "block", "tx_count", "gas_used"}

const blockColumn = 2

// Appender agrega filas a block_data.csv, escribiendo el header si el archivo es nuevo.
type Appender struct {
	f *os.File
	w *csv.Writer
}

// OpenAppender abre (o crea) el archivo en modo append.
func OpenAppender(path string) (*Appender, error) {
	info, statErr := os.Stat(path)
	isNew := errors.Is(statErr, os.ErrNotExist) || (statErr == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("csvsample.OpenAppender: open %q: %w", path, err)
	}

	a := &Appender{f: f, w: csv.NewWriter(f)}
	if isNew {
		if err := a.w.Write(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvsample.OpenAppender: write header: %w", err)
		}
	}
	return a, nil
}

// Append escribe un bloque. Se hace flush por fila: si el fetch se corta a la
// mitad, lo ya escrito queda en disco y se puede retomar.
func (a *Appender) Append(b domain.BlockRecord) error {
	row := []string{
		strconv.FormatFloat(b.Payment, 'f', -1, 64),
		strconv.FormatInt(b.Slot, 10),
		strconv.FormatInt(b.Block, 10),
		strconv.FormatInt(b.TxCount, 10),
		strconv.FormatInt(b.GasUsed, 10),
	}
	if err := a.w.Write(row); err != nil {
		return fmt.Errorf("csvsample.Append: %w", err)
	}
	a.w.Flush()
	return a.w.Error()
}

// Close hace flush y cierra el archivo.
func (a *Appender) Close() error {
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		a.f.Close()
		return err
	}
	return a.f.Close()
}

// LastBlock devuelve el número de bloque de la última fila del archivo.
// ok = false si el archivo no existe o solo tiene header.
func LastBlock(path string) (block int64, ok bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("csvsample.LastBlock: open %q: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	var last []string
	for rows := 0; ; rows++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, false, fmt.Errorf("csvsample.LastBlock: %w", err)
		}
		if rows > 0 {
			last = rec
		}
	}
	if last == nil || len(last) <= blockColumn {
		return 0, false, nil
	}

	block, err = strconv.ParseInt(last[blockColumn], 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("csvsample.LastBlock: parse block %q: %w", last[blockColumn], err)
	}
	return block, true, nil
}
