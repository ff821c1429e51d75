package render

import (
	"io"
	"strings"
	"time"

	"github.com/dshills/facet/internal/finding"
)

// TextRenderer outputs a human-readable terminal report.
type TextRenderer struct{}

func (t *TextRenderer) Format() string { return "text" }

func (t *TextRenderer) Render(w io.Writer, report *finding.Report) error {
	ew := &errWriter{w: w}

	ew.printf("Facet Code Review")
	if report.Mode != "" {
		ew.printf(" — %s mode", report.Mode)
	}
	ew.println("")
	if report.Ref != "" {
		ew.printf("Ref: %s\n", report.Ref)
	}
	if report.DiffSummary != "" {
		ew.printf("Diff: %s\n", report.DiffSummary)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Findings: %d total", report.TotalFindings)
	if report.TotalFindings > 0 {
		ew.printf(" (%d critical, %d high, %d medium, %d low)",
			report.SeverityCounts.Critical,
			report.SeverityCounts.High,
			report.SeverityCounts.Medium,
			report.SeverityCounts.Low,
		)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if report.TotalFindings == 0 {
		ew.println("\nNo issues found. Looks good!")
		return ew.err
	}

	grouped := groupBySeverity(report.Findings())
	for _, sev := range []finding.Severity{
		finding.SeverityCritical,
		finding.SeverityHigh,
		finding.SeverityMedium,
		finding.SeverityLow,
	} {
		fs := grouped[sev]
		if len(fs) == 0 {
			continue
		}

		ew.printf("\n%s %s\n", severityIcon(sev), strings.ToUpper(string(sev)))
		ew.println(strings.Repeat("─", 40))

		for _, f := range fs {
			if f.Line > 0 {
				ew.printf("\n  %s:%d  [%s] %s\n", f.File, f.Line, f.Kind, f.Category)
			} else {
				ew.printf("\n  %s  [%s] %s\n", f.File, f.Kind, f.Category)
			}
			for _, line := range wrapText(f.Message, 70) {
				ew.printf("    %s\n", line)
			}
			if f.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, line := range wrapText(f.Suggestion, 70) {
					ew.printf("    %s\n", line)
				}
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %s across %d stages\n",
		report.TotalElapsed.Round(time.Millisecond), len(report.StageResults))
	for _, sr := range report.StageResults {
		ew.printf("  %-16s %3d findings  %s\n",
			sr.StageName, len(sr.Findings), sr.Elapsed.Round(time.Millisecond))
	}

	return ew.err
}

func groupBySeverity(findings []finding.Finding) map[finding.Severity][]finding.Finding {
	m := make(map[finding.Severity][]finding.Finding)
	for _, f := range findings {
		m[f.Severity] = append(m[f.Severity], f)
	}
	return m
}

func severityIcon(s finding.Severity) string {
	switch s {
	case finding.SeverityCritical:
		return "[!!!]"
	case finding.SeverityHigh:
		return "[!!]"
	case finding.SeverityMedium:
		return "[!]"
	case finding.SeverityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
