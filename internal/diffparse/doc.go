// Package diffparse converts raw unified-diff text into a structured,
// line-addressable change model.
//
// Parsing is tolerant by design: per-file blocks are processed
// independently, malformed blocks are dropped as noise, and files outside
// the supported extension set are filtered out silently. Only obtaining
// the diff source can fail, and that happens upstream of this package.
package diffparse
