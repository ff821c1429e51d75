package diffparse

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultExtensions is the extension set retained when Options.Extensions
// is nil.
var DefaultExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	".go", ".py", ".rs", ".java", ".rb", ".php", ".sql",
}

var (
	headerRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hunkRe   = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
)

// Options control how a diff is parsed.
type Options struct {
	// Extensions lists the file extensions to retain (with leading dot).
	// Nil means DefaultExtensions; an explicit empty slice retains nothing.
	Extensions []string

	// Summary, when non-empty, is an externally supplied stat summary
	// (e.g. from git --shortstat) used verbatim instead of recomputing.
	Summary string
}

// Parse converts raw unified-diff text into a ParsedDiff.
//
// Blocks are split on the "diff --git" boundary and processed
// independently: a block whose header does not match the a/<old> b/<new>
// shape is dropped as noise, and files whose extension is not in the
// supported set are dropped silently. Parse itself never fails; obtaining
// the raw text is the caller's fatal path.
func Parse(raw string, opts Options) *ParsedDiff {
	exts := opts.Extensions
	if exts == nil {
		exts = DefaultExtensions
	}
	supported := make(map[string]bool, len(exts))
	for _, e := range exts {
		supported[e] = true
	}

	result := &ParsedDiff{Files: []FileDiff{}}
	for _, block := range splitBlocks(raw) {
		file, ok := parseBlock(block)
		if !ok {
			continue
		}
		if !supported[strings.ToLower(filepath.Ext(file.Path))] {
			continue
		}
		result.Files = append(result.Files, file)
		result.TotalAdditions += file.Additions
		result.TotalDeletions += file.Deletions
	}

	if opts.Summary != "" {
		result.Summary = opts.Summary
	} else {
		result.Summary = fmt.Sprintf("%d files changed, %d insertions(+), %d deletions(-)",
			len(result.Files), result.TotalAdditions, result.TotalDeletions)
	}
	return result
}

// splitBlocks slices the diff into per-file blocks, each beginning with a
// "diff --git" line. Text before the first boundary is discarded.
func splitBlocks(raw string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

// parseBlock parses one file block. It returns ok=false when the header
// line does not match the expected shape.
func parseBlock(lines []string) (FileDiff, bool) {
	m := headerRe.FindStringSubmatch(lines[0])
	if m == nil {
		return FileDiff{}, false
	}
	oldPath, newPath := m[1], m[2]

	file := FileDiff{
		Path:   newPath,
		Status: StatusModified,
	}

	// Status markers take precedence over a path mismatch.
	var isNew, isDeleted bool
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "new file mode") {
			isNew = true
		}
		if strings.HasPrefix(line, "deleted file mode") {
			isDeleted = true
		}
	}
	switch {
	case isNew:
		file.Status = StatusAdded
	case isDeleted:
		file.Status = StatusDeleted
	case oldPath != newPath:
		file.Status = StatusRenamed
		file.OldPath = oldPath
	}

	// Walk hunks, tracking the current new-file line number. Delete lines
	// record the counter but do not advance it.
	lineNum := 0
	inHunk := false
	for _, line := range lines[1:] {
		if hm := hunkRe.FindStringSubmatch(line); hm != nil {
			lineNum, _ = strconv.Atoi(hm[3])
			inHunk = true
			continue
		}
		if !inHunk {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			file.Changes = append(file.Changes, Change{Kind: ChangeAdd, LineNumber: lineNum, Content: line[1:]})
			file.Additions++
			lineNum++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			file.Changes = append(file.Changes, Change{Kind: ChangeDelete, LineNumber: lineNum, Content: line[1:]})
			file.Deletions++
		case strings.HasPrefix(line, " "):
			file.Changes = append(file.Changes, Change{Kind: ChangeContext, LineNumber: lineNum, Content: line[1:]})
			lineNum++
		}
		// Everything else (mode lines, index lines, "\ No newline at end
		// of file") is ignored.
	}

	return file, true
}
