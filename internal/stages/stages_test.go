package stages

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/facet/internal/cache"
	"github.com/dshills/facet/internal/config"
	"github.com/dshills/facet/internal/diffparse"
	"github.com/dshills/facet/internal/finding"
	"github.com/dshills/facet/internal/pipeline"
	"github.com/dshills/facet/internal/providers"
)

type fakeCompleter struct {
	mu        sync.Mutex
	responses []string
	calls     int
	prompts   []string
	err       error
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return providers.CompletionResponse{}, f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	f.calls++
	return providers.CompletionResponse{
		Content: resp,
		Usage:   providers.Usage{Prompt: 10, Completion: 5, Total: 15},
	}, nil
}

func testDiff() *diffparse.ParsedDiff {
	return &diffparse.ParsedDiff{
		Files: []diffparse.FileDiff{
			{
				Path:      "src/auth.ts",
				Status:    diffparse.StatusModified,
				Additions: 1,
				Changes: []diffparse.Change{
					{Kind: diffparse.ChangeAdd, LineNumber: 12, Content: "eval(userInput)"},
				},
			},
		},
		TotalAdditions: 1,
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Stages = []string{"security"}
	cfg.Cache.Enabled = false
	cfg.Privacy.RedactSecrets = false
	return cfg
}

const oneFinding = `[{"severity":"high","category":"Security","file":"src/auth.ts","line":12,"issue":"eval on user input","suggestion":"parse instead"}]`

func TestNew_UnknownStage(t *testing.T) {
	cfg := testConfig()
	cfg.Stages = []string{"security", "vibes"}
	_, err := New(cfg, &fakeCompleter{responses: []string{"[]"}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestNew_BuildsConfiguredStages(t *testing.T) {
	cfg := testConfig()
	cfg.Stages = []string{"security", "performance", "summary"}
	built, err := New(cfg, &fakeCompleter{responses: []string{"[]"}}, nil, nil)
	require.NoError(t, err)
	require.Len(t, built, 3)
	assert.Equal(t, "security", built[0].Name())
	assert.Equal(t, "summary", built[2].Name())
}

func TestAnalyzer_Run(t *testing.T) {
	fc := &fakeCompleter{responses: []string{oneFinding}}
	built, err := New(testConfig(), fc, nil, nil)
	require.NoError(t, err)

	res, err := built[0].Run(context.Background(), &pipeline.Context{Diff: testDiff()})
	require.NoError(t, err)
	assert.Equal(t, "security", res.StageName)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "src/auth.ts", res.Findings[0].File)
	assert.Equal(t, finding.SeverityHigh, res.Findings[0].Severity)
	assert.Equal(t, finding.KindError, res.Findings[0].Kind)
	require.NotNil(t, res.TokenUsage)
	assert.Equal(t, 15, res.TokenUsage.Total)
}

func TestAnalyzer_PreviousFindingsInPrompt(t *testing.T) {
	fc := &fakeCompleter{responses: []string{"[]"}}
	built, err := New(testConfig(), fc, nil, nil)
	require.NoError(t, err)

	prev := []finding.Finding{
		{File: "src/auth.ts", Line: 12, Severity: finding.SeverityHigh, Message: "eval on user input"},
	}
	_, err = built[0].Run(context.Background(), &pipeline.Context{Diff: testDiff(), Previous: prev})
	require.NoError(t, err)
	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "eval on user input")
	assert.Contains(t, fc.prompts[0], "Do not repeat them")
}

func TestAnalyzer_RepairPass(t *testing.T) {
	fc := &fakeCompleter{responses: []string{"here you go:\n" + oneFinding, oneFinding}}
	built, err := New(testConfig(), fc, nil, nil)
	require.NoError(t, err)

	res, err := built[0].Run(context.Background(), &pipeline.Context{Diff: testDiff()})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, 2, fc.calls, "expected a repair round trip")
	assert.Contains(t, fc.prompts[1], "was not valid JSON")
}

func TestAnalyzer_RepairFailureFailsStage(t *testing.T) {
	fc := &fakeCompleter{responses: []string{"not json", "still not json"}}
	built, err := New(testConfig(), fc, nil, nil)
	require.NoError(t, err)

	_, err = built[0].Run(context.Background(), &pipeline.Context{Diff: testDiff()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after repair")
}

func TestAnalyzer_ProviderErrorFailsStage(t *testing.T) {
	fc := &fakeCompleter{err: fmt.Errorf("boom")}
	built, err := New(testConfig(), fc, nil, nil)
	require.NoError(t, err)

	_, err = built[0].Run(context.Background(), &pipeline.Context{Diff: testDiff()})
	require.Error(t, err)
}

func TestAnalyzer_CacheHitSkipsProvider(t *testing.T) {
	cfg := testConfig()
	c, err := cache.New(true, t.TempDir(), 3600)
	require.NoError(t, err)

	fc := &fakeCompleter{responses: []string{oneFinding}}
	built, err := New(cfg, fc, c, nil)
	require.NoError(t, err)

	rc := &pipeline.Context{Diff: testDiff()}
	_, err = built[0].Run(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.calls)

	// Same diff again: answered from cache.
	res, err := built[0].Run(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.calls, "second run should not reach the provider")
	require.Len(t, res.Findings, 1)
}

func TestAnalyzer_RedactsBeforePrompting(t *testing.T) {
	cfg := testConfig()
	cfg.Privacy.RedactSecrets = true

	d := &diffparse.ParsedDiff{
		Files: []diffparse.FileDiff{
			{
				Path:   "src/cfg.ts",
				Status: diffparse.StatusModified,
				Changes: []diffparse.Change{
					{Kind: diffparse.ChangeAdd, LineNumber: 3, Content: `const key = "sk-ant-REDACTED"`},
				},
			},
		},
	}

	fc := &fakeCompleter{responses: []string{"[]"}}
	built, err := New(cfg, fc, nil, nil)
	require.NoError(t, err)

	_, err = built[0].Run(context.Background(), &pipeline.Context{Diff: d})
	require.NoError(t, err)
	require.Len(t, fc.prompts, 1)
	assert.NotContains(t, fc.prompts[0], "sk-ant-")
	assert.Contains(t, fc.prompts[0], "[REDACTED]")
}

func TestAnalyzer_DropsInvalidFindings(t *testing.T) {
	resp := `[{"severity":"high","file":"a.ts","issue":"real"},{"severity":"low","issue":"no file"},{"file":"b.ts"}]`
	fc := &fakeCompleter{responses: []string{resp}}
	built, err := New(testConfig(), fc, nil, nil)
	require.NoError(t, err)

	res, err := built[0].Run(context.Background(), &pipeline.Context{Diff: testDiff()})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "a.ts", res.Findings[0].File)
}

func TestSplitChunks(t *testing.T) {
	d := &diffparse.ParsedDiff{
		Files: []diffparse.FileDiff{
			{Path: "a.go", Changes: []diffparse.Change{{Kind: diffparse.ChangeAdd, LineNumber: 1, Content: strings.Repeat("x", 100)}}},
			{Path: "b.go", Changes: []diffparse.Change{{Kind: diffparse.ChangeAdd, LineNumber: 1, Content: strings.Repeat("y", 100)}}},
			{Path: "c.go", Changes: []diffparse.Change{{Kind: diffparse.ChangeAdd, LineNumber: 1, Content: strings.Repeat("z", 100)}}},
		},
	}
	chunks := splitChunks(d, 150, renderFile)
	require.Len(t, chunks, 3, "each file section exceeds the budget alone")
	assert.Equal(t, []string{"a.go"}, chunks[0].paths)

	one := splitChunks(d, 1<<20, renderFile)
	require.Len(t, one, 1)
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, one[0].paths)
}

func TestParseFindings_FenceStripping(t *testing.T) {
	fenced := "```json\n" + oneFinding + "\n```"
	fs, err := parseFindings(fenced)
	require.NoError(t, err)
	require.Len(t, fs, 1)
}

func TestParseFindings_UnknownSeverityDefaultsMedium(t *testing.T) {
	fs, err := parseFindings(`[{"severity":"catastrophic","file":"a.ts","issue":"x"}]`)
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, finding.SeverityMedium, fs[0].Severity)
	assert.Equal(t, finding.KindWarning, fs[0].Kind)
}
