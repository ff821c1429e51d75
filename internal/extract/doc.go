// Package extract recovers structured findings from a previously rendered
// checklist report, so an operator's checked selections can be fed back
// into downstream fix tooling.
package extract
