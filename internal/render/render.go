package render

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/facet/internal/finding"
)

// Renderer turns an aggregated report into one textual artifact format.
type Renderer interface {
	// Format is the declared output format tag.
	Format() string
	Render(w io.Writer, report *finding.Report) error
}

// New returns a renderer for the specified format.
func New(format string) (Renderer, error) {
	switch format {
	case "checklist", "markdown":
		return &ChecklistRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "text":
		return &TextRenderer{}, nil
	case "sarif":
		return &SARIFRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Artifact is one configured output target. An empty Path means stdout.
type Artifact struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path,omitempty"`
}

// WriteAll renders every configured artifact. A single artifact failing to
// render or persist is logged and skipped; the remaining artifacts still
// get written. Returns the number written.
func WriteAll(report *finding.Report, artifacts []Artifact, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	written := 0
	for _, a := range artifacts {
		if err := writeOne(report, a); err != nil {
			log.Warn("skipping output artifact",
				zap.String("format", a.Format),
				zap.String("path", a.Path),
				zap.Error(err))
			continue
		}
		written++
	}
	return written
}

func writeOne(report *finding.Report, a Artifact) error {
	r, err := New(a.Format)
	if err != nil {
		return err
	}

	if a.Path == "" {
		return r.Render(os.Stdout, report)
	}

	f, err := os.Create(a.Path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return r.Render(f, report)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
