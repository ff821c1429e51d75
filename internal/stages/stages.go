package stages

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/facet/internal/cache"
	"github.com/dshills/facet/internal/config"
	"github.com/dshills/facet/internal/diffparse"
	"github.com/dshills/facet/internal/finding"
	"github.com/dshills/facet/internal/pipeline"
	"github.com/dshills/facet/internal/providers"
	"github.com/dshills/facet/internal/redact"
)

// maxConcurrency limits parallel provider calls within one stage.
// Stages themselves still run strictly one after another.
const maxConcurrency = 4

// focuses maps stage names to the analysis instructions sent with each
// prompt. The summary stage runs last in the default order and leans on
// the findings accumulated by earlier passes.
var focuses = map[string]string{
	"security":        "Security. Injection, secrets handling, unsafe deserialization, authentication and authorization gaps, path traversal, SSRF, unvalidated input reaching dangerous sinks.",
	"correctness":     "Correctness. Logic errors, off-by-one mistakes, nil/undefined handling, error paths that swallow failures, race conditions, broken edge cases.",
	"performance":     "Performance. Accidental O(n^2) work, queries or I/O inside loops, unbounded memory growth, missing pagination or limits, redundant computation.",
	"maintainability": "Maintainability. Dead code, misleading names, copy-paste divergence, missing test coverage for changed behavior, needless complexity.",
	"summary":         "Cross-cutting review. Weigh the earlier passes' findings, surface anything systemic they imply but did not state, and flag the riskiest change overall.",
}

// Analyzer is one LLM-backed analysis pass. It implements pipeline.Stage.
type Analyzer struct {
	name      string
	focus     string
	completer providers.Completer
	cache     *cache.Cache
	cfg       config.Config
	log       *zap.Logger
}

// New builds the stage list from the configured stage names. An unknown
// stage name is a setup error and aborts the run before any provider call.
func New(cfg config.Config, completer providers.Completer, c *cache.Cache, log *zap.Logger) ([]pipeline.Stage, error) {
	if completer == nil {
		return nil, fmt.Errorf("nil completer")
	}
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]pipeline.Stage, 0, len(cfg.Stages))
	for _, name := range cfg.Stages {
		focus, ok := focuses[name]
		if !ok {
			return nil, fmt.Errorf("unknown stage: %s", name)
		}
		out = append(out, &Analyzer{
			name:      name,
			focus:     focus,
			completer: completer,
			cache:     c,
			cfg:       cfg,
			log:       log,
		})
	}
	return out, nil
}

// Names lists the stage names New accepts.
func Names() []string {
	return []string{"security", "correctness", "performance", "maintainability", "summary"}
}

func (a *Analyzer) Name() string { return a.name }

// Run renders the diff, splits it into chunks, and queries the provider
// for each chunk. Chunk order is preserved in the merged findings.
func (a *Analyzer) Run(ctx context.Context, rc *pipeline.Context) (finding.StageResult, error) {
	start := time.Now()

	render := func(f diffparse.FileDiff) string {
		sec := renderFile(f)
		if a.cfg.Privacy.RedactSecrets {
			sec = redact.Content(sec, f.Path, a.cfg.Privacy.RedactPaths)
		}
		return sec
	}
	chunks := splitChunks(rc.Diff, chunkThreshold, render)
	if len(chunks) == 0 {
		return finding.StageResult{StageName: a.name, Elapsed: time.Since(start)}, nil
	}

	type chunkOut struct {
		findings []finding.Finding
		usage    finding.TokenUsage
		err      error
	}
	results := make([]chunkOut, len(chunks))

	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	for i, ch := range chunks {
		wg.Add(1)
		go func(i int, ch chunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fs, usage, err := a.runChunk(ctx, ch, rc.Previous)
			results[i] = chunkOut{findings: fs, usage: usage, err: err}
		}(i, ch)
	}
	wg.Wait()

	var all []finding.Finding
	var usage finding.TokenUsage
	var firstErr error
	for i, r := range results {
		usage = usage.Add(r.usage)
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			a.log.Warn("chunk failed",
				zap.String("stage", a.name),
				zap.Int("chunk", i),
				zap.Error(r.err))
			continue
		}
		all = append(all, r.findings...)
	}

	// A stage with zero successful chunks failed outright; partial
	// chunk failures degrade to whatever findings survived.
	if firstErr != nil && len(all) == 0 {
		return finding.StageResult{StageName: a.name, Elapsed: time.Since(start)}, firstErr
	}

	if a.cfg.MaxFindings > 0 && len(all) > a.cfg.MaxFindings {
		all = all[:a.cfg.MaxFindings]
	}

	return finding.StageResult{
		StageName:  a.name,
		Findings:   all,
		Elapsed:    time.Since(start),
		TokenUsage: &usage,
	}, nil
}

func (a *Analyzer) runChunk(ctx context.Context, ch chunk, previous []finding.Finding) ([]finding.Finding, finding.TokenUsage, error) {
	var usage finding.TokenUsage

	key := cache.Key(a.cfg.Provider, a.cfg.Model, a.name, ch.text)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			if fs, err := parseFindings(cached); err == nil {
				a.log.Debug("cache hit", zap.String("stage", a.name))
				return fs, usage, nil
			}
		}
	}

	req := providers.CompletionRequest{
		System:    systemPrompt,
		Prompt:    buildPrompt(a.focus, ch.text, ch.paths, previous, a.cfg.MaxFindings),
		MaxTokens: 8192,
	}
	resp, err := a.completer.Complete(ctx, req)
	if err != nil {
		return nil, usage, fmt.Errorf("provider %s: %w", a.completer.Name(), err)
	}
	usage = usage.Add(finding.TokenUsage{
		Prompt:     resp.Usage.Prompt,
		Completion: resp.Usage.Completion,
		Total:      resp.Usage.Total,
	})

	content := resp.Content
	fs, err := parseFindings(content)
	if err != nil {
		// One repair pass: hand the broken response back and ask for
		// valid JSON. A second failure fails the chunk.
		repair := fmt.Sprintf(
			"Your previous response was not valid JSON. The error was: %s\n\nRespond with ONLY a valid JSON array of findings.\n\nYour previous response was:\n%s",
			err.Error(), content,
		)
		resp2, err2 := a.completer.Complete(ctx, providers.CompletionRequest{
			System:    systemPrompt,
			Prompt:    repair,
			MaxTokens: 8192,
		})
		if err2 != nil {
			return nil, usage, fmt.Errorf("repair pass failed: %w", err2)
		}
		usage = usage.Add(finding.TokenUsage{
			Prompt:     resp2.Usage.Prompt,
			Completion: resp2.Usage.Completion,
			Total:      resp2.Usage.Total,
		})
		content = resp2.Content
		fs, err = parseFindings(content)
		if err != nil {
			return nil, usage, fmt.Errorf("response validation failed after repair: %w", err)
		}
	}

	if a.cache != nil {
		if err := a.cache.Put(key, content); err != nil {
			a.log.Debug("cache write failed", zap.Error(err))
		}
	}
	return fs, usage, nil
}
