package diffparse

import "github.com/bmatcuk/doublestar/v4"

// Filter returns a copy of the diff restricted to files matching the
// include globs (all files when empty) and not matching any exclude glob.
// Totals are recomputed over the retained files; the summary string is
// kept, since an externally supplied one stays the more accurate count of
// the underlying comparison.
func (d *ParsedDiff) Filter(include, exclude []string) *ParsedDiff {
	out := &ParsedDiff{Files: []FileDiff{}, Summary: d.Summary}
	for _, f := range d.Files {
		if len(include) > 0 && !matchesAny(f.Path, include) {
			continue
		}
		if matchesAny(f.Path, exclude) {
			continue
		}
		out.Files = append(out.Files, f)
		out.TotalAdditions += f.Additions
		out.TotalDeletions += f.Deletions
	}
	return out
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
