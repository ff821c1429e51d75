package stages

import (
	"github.com/dshills/facet/internal/diffparse"
)

// chunkThreshold is the rendered-diff byte size above which a stage
// splits its provider calls per chunk.
const chunkThreshold = 100000

// chunk is a group of rendered file sections small enough for one
// provider call.
type chunk struct {
	text  string
	paths []string
}

// splitChunks groups files into chunks of at most maxBytes of rendered
// diff each. A single file larger than maxBytes gets a chunk to itself.
// render turns one file into its prompt section, so redaction happens
// before chunk boundaries are decided.
func splitChunks(d *diffparse.ParsedDiff, maxBytes int, render func(diffparse.FileDiff) string) []chunk {
	if maxBytes <= 0 {
		maxBytes = chunkThreshold
	}

	var chunks []chunk
	var cur chunk
	for _, f := range d.Files {
		sec := render(f)
		if len(cur.text) > 0 && len(cur.text)+len(sec) > maxBytes {
			chunks = append(chunks, cur)
			cur = chunk{}
		}
		cur.text += sec
		cur.paths = append(cur.paths, f.Path)
	}
	if len(cur.text) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}
