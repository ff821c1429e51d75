package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/facet/internal/finding"
)

// JSONRenderer outputs the full report as JSON.
type JSONRenderer struct{}

func (j *JSONRenderer) Format() string { return "json" }

func (j *JSONRenderer) Render(w io.Writer, report *finding.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
