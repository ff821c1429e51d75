package diffparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterInput() *ParsedDiff {
	return &ParsedDiff{
		Files: []FileDiff{
			{Path: "internal/app/server.go", Additions: 3},
			{Path: "vendor/lib/dep.go", Additions: 10},
			{Path: "web/index.ts", Additions: 1, Deletions: 2},
		},
		TotalAdditions: 14,
		TotalDeletions: 2,
		Summary:        "3 files changed",
	}
}

func TestFilter_Exclude(t *testing.T) {
	d := filterInput().Filter(nil, []string{"vendor/**"})
	require.Len(t, d.Files, 2)
	assert.Equal(t, 4, d.TotalAdditions)
	assert.Equal(t, 2, d.TotalDeletions)
	assert.Equal(t, "3 files changed", d.Summary, "externally supplied summary is kept")
}

func TestFilter_Include(t *testing.T) {
	d := filterInput().Filter([]string{"**/*.go"}, nil)
	require.Len(t, d.Files, 2)
	assert.Equal(t, "internal/app/server.go", d.Files[0].Path)

	d = filterInput().Filter([]string{"web/**"}, nil)
	require.Len(t, d.Files, 1)
	assert.Equal(t, "web/index.ts", d.Files[0].Path)
}

func TestFilter_IncludeAndExclude(t *testing.T) {
	d := filterInput().Filter([]string{"**/*.go"}, []string{"vendor/**"})
	require.Len(t, d.Files, 1)
	assert.Equal(t, "internal/app/server.go", d.Files[0].Path)
}

func TestFilter_NoPatterns(t *testing.T) {
	d := filterInput().Filter(nil, nil)
	assert.Len(t, d.Files, 3)
}
