// Package stages provides the LLM-backed analysis passes that plug into
// the pipeline. Each configured stage name becomes one Analyzer with its
// own prompt focus; large diffs are split into per-file chunks and the
// provider is queried per chunk, with responses cached by stage, model,
// and chunk content.
package stages
