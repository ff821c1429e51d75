package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/facet/internal/finding"
)

// jsonFinding is the wire shape for one recovered finding.
type jsonFinding struct {
	ID         int    `json:"id"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	File       string `json:"file"`
	Line       int    `json:"line,omitempty"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion,omitempty"`
	Code       string `json:"code,omitempty"`
}

type jsonDocument struct {
	Total    int           `json:"total"`
	Findings []jsonFinding `json:"findings"`
}

// JSON serializes recovered findings with 1-based sequential ids.
func JSON(findings []finding.Finding) ([]byte, error) {
	doc := jsonDocument{
		Total:    len(findings),
		Findings: make([]jsonFinding, 0, len(findings)),
	}
	for i, f := range findings {
		doc.Findings = append(doc.Findings, jsonFinding{
			ID:         i + 1,
			Severity:   string(f.Severity),
			Category:   f.Category,
			File:       f.File,
			Line:       f.Line,
			Issue:      f.Message,
			Suggestion: f.Suggestion,
			Code:       f.Code,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Markdown renders recovered findings as a flat enumerated list in their
// original order, with no grouping.
func Markdown(findings []finding.Finding) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Selected Findings (%d)\n\n", len(findings))
	if len(findings) == 0 {
		b.WriteString("No findings selected.\n")
		return b.String()
	}

	for i, f := range findings {
		fmt.Fprintf(&b, "%d. **[%s]** %s\n", i+1, strings.ToUpper(string(f.Severity)), f.Category)
		if f.Line > 0 {
			fmt.Fprintf(&b, "   - File: `%s`:%d\n", f.File, f.Line)
		} else {
			fmt.Fprintf(&b, "   - File: `%s`\n", f.File)
		}
		fmt.Fprintf(&b, "   - Issue: %s\n", f.Message)
		if f.Suggestion != "" {
			fmt.Fprintf(&b, "   - Suggestion: %s\n", f.Suggestion)
		}
		if f.Code != "" {
			b.WriteString("   - Code:\n\n     ```\n")
			for _, line := range strings.Split(f.Code, "\n") {
				fmt.Fprintf(&b, "     %s\n", line)
			}
			b.WriteString("     ```\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}
