package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/facet/internal/finding"
)

var (
	checkedRe   = regexp.MustCompile(`^\s*- \[x\] \*\*\[([A-Za-z]+)\]\*\*\s*(.*)$`)
	uncheckedRe = regexp.MustCompile(`^\s*- \[ \]`)
	fieldRe     = regexp.MustCompile(`^\s*[-*]?\s*\*\*(File|Issue|Suggestion|Code)\*\*:\s*(.*)$`)
	fileRe      = regexp.MustCompile("^`([^`]+)`(?::(\\d+))?$")
	fenceRe     = regexp.MustCompile("^(\\s*)```")
)

// parser state
type state int

const (
	stateScanning state = iota
	stateInItem
	stateInFence
)

// Findings recovers the operator-checked items from a rendered checklist
// report. Unchecked items are never parsed, and a checked item missing
// either its File or Issue field is dropped silently; that gate is the
// only validation applied.
func Findings(report string) []finding.Finding {
	var (
		out         []finding.Finding
		cur         finding.Finding
		haveIssue   bool
		st          = stateScanning
		fenceIndent string
		codeLines   []string
	)

	flush := func() {
		if st == stateScanning {
			return
		}
		if cur.File != "" && haveIssue {
			out = append(out, cur)
		}
		cur = finding.Finding{}
		haveIssue = false
		st = stateScanning
	}

	for _, line := range strings.Split(report, "\n") {
		if st == stateInFence {
			stripped := strings.TrimPrefix(line, fenceIndent)
			if strings.HasPrefix(strings.TrimSpace(stripped), "```") {
				cur.Code = strings.Join(codeLines, "\n")
				codeLines = nil
				st = stateInItem
				continue
			}
			codeLines = append(codeLines, stripped)
			continue
		}

		if m := checkedRe.FindStringSubmatch(line); m != nil {
			flush()
			cur.Severity = finding.Severity(strings.ToLower(m[1]))
			cur.Category = strings.TrimSpace(m[2])
			st = stateInItem
			continue
		}

		if st != stateInItem {
			continue
		}

		// Headings and unchecked items end the current item.
		if strings.HasPrefix(line, "#") || uncheckedRe.MatchString(line) {
			flush()
			continue
		}

		if m := fieldRe.FindStringSubmatch(line); m != nil {
			value := strings.TrimSpace(m[2])
			switch m[1] {
			case "File":
				cur.File, cur.Line = parseFileField(value)
			case "Issue":
				if value != "" {
					cur.Message = value
					haveIssue = true
				}
			case "Suggestion":
				cur.Suggestion = value
			case "Code":
				// Fence expected on a following line; a value on the same
				// line (rare) is treated as inline code.
				if value != "" && !strings.HasPrefix(value, "```") {
					cur.Code = value
				}
			}
			continue
		}

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			fenceIndent = m[1]
			codeLines = nil
			st = stateInFence
			continue
		}
		// Blank and unrecognized lines inside an item are neutral.
	}
	flush()

	return out
}

// parseFileField extracts the path and optional 1-based line from a File
// field value: a backtick-quoted path optionally suffixed with ":<line>".
func parseFileField(value string) (string, int) {
	if m := fileRe.FindStringSubmatch(value); m != nil {
		path := m[1]
		if m[2] != "" {
			n, _ := strconv.Atoi(m[2])
			return path, n
		}
		// Tolerate the line number inside the backticks.
		if idx := strings.LastIndex(path, ":"); idx > 0 {
			if n, err := strconv.Atoi(path[idx+1:]); err == nil {
				return path[:idx], n
			}
		}
		return path, 0
	}
	// No backticks; take the raw value, splitting a trailing :line.
	if idx := strings.LastIndex(value, ":"); idx > 0 {
		if n, err := strconv.Atoi(value[idx+1:]); err == nil {
			return value[:idx], n
		}
	}
	return value, 0
}
