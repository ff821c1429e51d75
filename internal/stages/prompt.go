package stages

import (
	"fmt"
	"strings"

	"github.com/dshills/facet/internal/diffparse"
	"github.com/dshills/facet/internal/finding"
)

const systemPrompt = `You are a strict, expert code reviewer performing one focused analysis pass over a code diff. Produce structured findings in JSON format.

Rules:
1. Only review the changes shown in the diff. Do not comment on unchanged code.
2. Stay within the analysis focus you are given. Other concerns belong to other passes.
3. Be concise and actionable. Every finding must include a concrete suggestion.
4. Use the new-file line numbers shown in the diff.
5. Rate severity as "critical", "high", "medium", or "low".

You MUST respond with ONLY a JSON array of findings. No markdown, no explanation, no preamble. Just the JSON array.

Each finding must have this exact structure:
{
  "severity": "critical|high|medium|low",
  "category": "Short category label",
  "file": "relative/file/path",
  "line": 1,
  "issue": "What is wrong and why it matters",
  "suggestion": "How to fix it",
  "code": "optional corrected code snippet"
}

If there are no issues, respond with an empty array: []`

// buildPrompt assembles the user prompt for one stage pass: focus
// instructions, language hints, earlier stages' findings, then the diff.
func buildPrompt(focus, diff string, paths []string, previous []finding.Finding, maxFindings int) string {
	var b strings.Builder

	b.WriteString("Analysis focus: ")
	b.WriteString(focus)
	b.WriteString("\n\n")

	if maxFindings > 0 {
		fmt.Fprintf(&b, "Return at most %d findings.\n", maxFindings)
	}

	if langs := detectLanguages(paths); len(langs) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(langs, ", "))
	}

	if len(previous) > 0 {
		b.WriteString("\nEarlier analysis passes already reported the following. Do not repeat them; you may build on them:\n")
		for _, f := range previous {
			fmt.Fprintf(&b, "- %s:%d [%s] %s\n", f.File, f.Line, f.Severity, f.Message)
		}
	}

	b.WriteString("\n--- BEGIN DIFF ---\n")
	b.WriteString(diff)
	b.WriteString("--- END DIFF ---\n")

	return b.String()
}

// renderFile formats one file's change set with new-file line numbers.
func renderFile(f diffparse.FileDiff) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s (%s, +%d/-%d)\n", f.Path, f.Status, f.Additions, f.Deletions)
	for _, c := range f.Changes {
		var marker string
		switch c.Kind {
		case diffparse.ChangeAdd:
			marker = "+"
		case diffparse.ChangeDelete:
			marker = "-"
		default:
			marker = " "
		}
		fmt.Fprintf(&b, "%s %4d  %s\n", marker, c.LineNumber, c.Content)
	}
	b.WriteString("\n")
	return b.String()
}

var langByExt = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".mjs":  "JavaScript",
	".cjs":  "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript/React",
	".jsx":  "JavaScript/React",
	".rs":   "Rust",
	".java": "Java",
	".rb":   "Ruby",
	".php":  "PHP",
	".sql":  "SQL",
}

func detectLanguages(paths []string) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, p := range paths {
		for ext, lang := range langByExt {
			if strings.HasSuffix(p, ext) && !seen[lang] {
				seen[lang] = true
				langs = append(langs, lang)
			}
		}
	}
	return langs
}
