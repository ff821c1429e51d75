package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"checklist", "markdown", "json", "text", "sarif"} {
		r, err := New(format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, r.Format())
	}
	_, err := New("html")
	assert.Error(t, err)
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONRenderer{}).Render(&buf, sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-test", decoded["runId"])
	assert.Equal(t, float64(2), decoded["totalFindings"])
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextRenderer{}).Render(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Facet Code Review — commit mode")
	assert.Contains(t, out, "1 critical")
	assert.Contains(t, out, "db/query.go:42")
	assert.Contains(t, out, "security")
}

func TestSARIFRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&SARIFRenderer{}).Render(&buf, sampleReport()))

	var log sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	assert.Equal(t, "facet", log.Runs[0].Tool.Driver.Name)
	require.Len(t, log.Runs[0].Results, 2)
	assert.Equal(t, "error", log.Runs[0].Results[0].Level)
	assert.Equal(t, "warning", log.Runs[0].Results[1].Level)
	assert.Equal(t, "db/query.go", log.Runs[0].Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
}

func TestWriteAll_SkipsFailedArtifact(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "report.md")
	bad := filepath.Join(dir, "missing", "nested", "report.json")

	written := WriteAll(sampleReport(), []Artifact{
		{Format: "checklist", Path: good},
		{Format: "json", Path: bad},
		{Format: "bogus", Path: filepath.Join(dir, "x")},
	}, nil)

	assert.Equal(t, 1, written, "one good artifact, one unwritable path, one bad format")

	data, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Code Review Report")

	_, err = os.Stat(bad)
	assert.True(t, os.IsNotExist(err))
}
