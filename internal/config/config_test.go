package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, []string{"security", "correctness", "performance", "maintainability"}, cfg.Stages)
	assert.Equal(t, "none", cfg.FailOn)
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Privacy.RedactSecrets)
	require.Len(t, cfg.Outputs, 1)
	assert.Equal(t, "text", cfg.Outputs[0].Format)
}

func TestLoad_FileMerge(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "facet")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	file := `provider: ollama
model: qwen2.5-coder
stages:
  - security
  - summary
outputs:
  - format: checklist
    path: review.md
  - format: json
maxFindings: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(file), 0o644))

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "qwen2.5-coder", cfg.Model)
	assert.Equal(t, []string{"security", "summary"}, cfg.Stages)
	assert.Equal(t, 10, cfg.MaxFindings)
	require.Len(t, cfg.Outputs, 2)
	assert.Equal(t, "review.md", cfg.Outputs[0].Path)
	// Untouched fields keep defaults.
	assert.Equal(t, 3, cfg.ContextLines)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Provider, cfg.Provider)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("FACET_PROVIDER", "openai")
	t.Setenv("FACET_STAGES", "security, performance")
	t.Setenv("FACET_MAX_FINDINGS", "7")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, []string{"security", "performance"}, cfg.Stages)
	assert.Equal(t, 7, cfg.MaxFindings)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("FACET_PROVIDER", "openai")

	cfg, err := Load(map[string]string{"provider": "ollama", "failOn": "high"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "high", cfg.FailOn)
}

func TestSetField(t *testing.T) {
	cfg := Default()

	require.NoError(t, SetField(&cfg, "provider", "gemini"))
	assert.Equal(t, "gemini", cfg.Provider)

	require.NoError(t, SetField(&cfg, "stages", "summary"))
	assert.Equal(t, []string{"summary"}, cfg.Stages)

	require.NoError(t, SetField(&cfg, "maxFindings", "25"))
	assert.Equal(t, 25, cfg.MaxFindings)

	assert.Error(t, SetField(&cfg, "maxFindings", "lots"))
	assert.Error(t, SetField(&cfg, "nope", "x"))
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Provider = "ollama"
	cfg.Outputs = []Output{{Format: "sarif", Path: "out.sarif"}}
	require.NoError(t, Save(cfg))

	loaded, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, "ollama", loaded.Provider)
	require.Len(t, loaded.Outputs, 1)
	assert.Equal(t, "sarif", loaded.Outputs[0].Format)
}
