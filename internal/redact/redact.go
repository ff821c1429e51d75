// Package redact strips secrets from diff content before it leaves the
// machine. Detection is regex heuristics over common secret shapes; files
// matching configured path globs are blanked wholesale instead of scanned.
package redact

import (
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

const placeholder = "[REDACTED]"

type secretPattern struct {
	name string
	re   *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"generic api key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	{"aws access key id", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws secret access key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	{"assignment secret", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`)},
	{"bearer token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"private key block", regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`)},
	{"github token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"anthropic key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai key", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
	{"hex secret", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.re.ReplaceAllString(result, placeholder)
	}
	return result
}

// PathMatches reports whether a file path matches any of the redaction
// globs. Patterns use doublestar syntax; a bare-basename pattern like
// ".env" matches at any depth.
func PathMatches(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}

// Content redacts secrets from content, or blanks it entirely when the
// file path matches a redaction glob.
func Content(content, path string, redactPaths []string) string {
	if PathMatches(path, redactPaths) {
		return placeholder + " (file content redacted by path policy)\n"
	}
	return Secrets(content)
}
