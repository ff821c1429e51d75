// Package pipeline orchestrates an ordered sequence of analysis stages
// over a parsed diff.
//
// Stages run strictly sequentially because each stage's input includes
// the accumulated findings of every prior stage. A failing stage is
// absorbed as an empty result; only setup problems abort a run.
package pipeline
