package render

import (
	"io"
	"strings"
	"time"

	"github.com/dshills/facet/internal/finding"
)

// ChecklistRenderer emits the checkbox markdown dialect consumed by the
// extract package: each finding is an unchecked item the operator can tick
// and feed back through `facet extract`.
type ChecklistRenderer struct{}

func (c *ChecklistRenderer) Format() string { return "checklist" }

func (c *ChecklistRenderer) Render(w io.Writer, report *finding.Report) error {
	ew := &errWriter{w: w}

	ew.println("# Code Review Report")
	ew.println("")
	ew.printf("**Run**: %s", report.RunID)
	if report.Mode != "" {
		ew.printf(" | **Mode**: %s", report.Mode)
	}
	if report.Ref != "" {
		ew.printf(" | **Ref**: %s", report.Ref)
	}
	ew.println("")
	if report.DiffSummary != "" {
		ew.printf("**Diff**: %s\n", report.DiffSummary)
	}
	ew.println("")

	ew.println("## Summary")
	ew.println("")
	ew.println("| Severity | Count |")
	ew.println("|----------|-------|")
	ew.printf("| Critical | %d |\n", report.SeverityCounts.Critical)
	ew.printf("| High     | %d |\n", report.SeverityCounts.High)
	ew.printf("| Medium   | %d |\n", report.SeverityCounts.Medium)
	ew.printf("| Low      | %d |\n", report.SeverityCounts.Low)
	ew.printf("| **Total** | **%d** |\n", report.TotalFindings)
	ew.println("")

	findings := report.Findings()
	if len(findings) == 0 {
		ew.println("No issues found.")
		return ew.err
	}

	ew.println("## Findings")
	ew.println("")
	ew.println("Check the items you want addressed, then run `facet extract` on this file.")
	ew.println("")

	for _, f := range findings {
		ew.printf("- [ ] **[%s]** %s\n", strings.ToUpper(string(f.Severity)), f.Category)
		if f.Line > 0 {
			ew.printf("  - **File**: `%s`:%d\n", f.File, f.Line)
		} else {
			ew.printf("  - **File**: `%s`\n", f.File)
		}
		ew.printf("  - **Issue**: %s\n", f.Message)
		if f.Suggestion != "" {
			ew.printf("  - **Suggestion**: %s\n", f.Suggestion)
		}
		if f.Code != "" {
			ew.println("  - **Code**:")
			lang := inferLang(f.File)
			ew.printf("    ```%s\n", lang)
			for _, line := range strings.Split(f.Code, "\n") {
				ew.printf("    %s\n", line)
			}
			ew.println("    ```")
		}
		ew.println("")
	}

	ew.println("## Stages")
	ew.println("")
	ew.println("| Stage | Findings | Elapsed |")
	ew.println("|-------|----------|---------|")
	for _, sr := range report.StageResults {
		ew.printf("| %s | %d | %s |\n", sr.StageName, len(sr.Findings), sr.Elapsed.Round(10*time.Millisecond))
	}
	ew.println("")

	ew.printf("*Generated %s in %s*", report.GeneratedAt.Format("2006-01-02 15:04:05"), report.TotalElapsed.Round(10*time.Millisecond))
	if report.TokenUsage != nil {
		ew.printf(" *(%d tokens)*", report.TokenUsage.Total)
	}
	ew.println("")

	return ew.err
}

func inferLang(path string) string {
	langMap := map[string]string{
		".go":   "go",
		".py":   "python",
		".js":   "javascript",
		".ts":   "typescript",
		".tsx":  "tsx",
		".jsx":  "jsx",
		".rs":   "rust",
		".java": "java",
		".rb":   "ruby",
		".php":  "php",
		".sql":  "sql",
		".sh":   "bash",
		".yaml": "yaml",
		".yml":  "yaml",
	}
	for ext, lang := range langMap {
		if strings.HasSuffix(path, ext) {
			return lang
		}
	}
	return ""
}
