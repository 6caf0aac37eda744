package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/poolsim/internal/domain"
)

// JSON implementa ports.Reporter escribiendo el reporte completo indentado.
type JSON struct {
	out io.Writer
}

// NewJSON crea un reporter JSON a stdout.
func NewJSON() *JSON {
	return &JSON{out: os.Stdout}
}

// NewJSONWriter crea un reporter JSON sobre w.
func NewJSONWriter(w io.Writer) *JSON {
	return &JSON{out: w}
}

func (j *JSON) Report(_ context.Context, r domain.Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("notify.JSON: encode report: %w", err)
	}
	return nil
}
