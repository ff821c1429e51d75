// Package render turns an aggregated report into textual artifacts:
// an operator checklist (markdown), JSON, terminal text, and SARIF.
//
// Artifact writing degrades gracefully: one artifact failing to persist
// is logged and skipped while the others still succeed.
package render
