package stages

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/facet/internal/finding"
)

// rawFinding is the JSON structure the LLM returns.
type rawFinding struct {
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
	Code       string `json:"code"`
}

// parseFindings decodes a provider response into findings. Markdown code
// fences around the array are tolerated. Entries missing a file or issue
// are dropped silently rather than failing the stage.
func parseFindings(content string) ([]finding.Finding, error) {
	content = stripFences(strings.TrimSpace(content))

	var raw []rawFinding
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	findings := make([]finding.Finding, 0, len(raw))
	for _, r := range raw {
		sev := normalizeSeverity(r.Severity)
		f := finding.Finding{
			Kind:       kindFor(sev),
			Severity:   sev,
			Category:   r.Category,
			Message:    r.Issue,
			File:       r.File,
			Line:       r.Line,
			Suggestion: r.Suggestion,
			Code:       r.Code,
		}
		if !f.Valid() {
			continue
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func stripFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}

func normalizeSeverity(s string) finding.Severity {
	switch sev := finding.Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case finding.SeverityCritical, finding.SeverityHigh, finding.SeverityMedium, finding.SeverityLow:
		return sev
	default:
		return finding.SeverityMedium
	}
}

func kindFor(s finding.Severity) finding.Kind {
	switch s {
	case finding.SeverityCritical, finding.SeverityHigh:
		return finding.KindError
	case finding.SeverityMedium:
		return finding.KindWarning
	default:
		return finding.KindInfo
	}
}
