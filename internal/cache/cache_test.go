package cache

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	c, err := New(true, t.TempDir(), 3600)
	require.NoError(t, err)

	key := Key("anthropic", "claude", "security", "diff --git a/x b/x")
	_, ok := c.Get(key)
	assert.False(t, ok, "expected miss before Put")

	require.NoError(t, c.Put(key, `[{"severity":"high"}]`))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, `[{"severity":"high"}]`, got)
}

func TestCache_KeyVariesByStage(t *testing.T) {
	a := Key("anthropic", "claude", "security", "same diff")
	b := Key("anthropic", "claude", "performance", "same diff")
	assert.NotEqual(t, a, b)
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	require.NoError(t, err)

	key := Key("p", "m", "s", "d")
	require.NoError(t, c.Put(key, "x"))
	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.False(t, c.Enabled())
}

func TestCache_TTLExpiry(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 3600)
	require.NoError(t, err)

	key := Key("p", "m", "s", "d")

	// Plant an entry created two hours ago.
	entry := Entry{Key: key, Response: "stale", CreatedAt: time.Now().Add(-2 * time.Hour), TTL: 3600}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.entryPath(key), data, 0o644))

	_, ok := c.Get(key)
	assert.False(t, ok, "expired entry should miss")
	_, statErr := os.Stat(c.entryPath(key))
	assert.True(t, os.IsNotExist(statErr), "expired entry should be evicted")
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c, err := New(true, t.TempDir(), 0)
	require.NoError(t, err)

	key := Key("p", "m", "s", "d")
	entry := Entry{Key: key, Response: "old but valid", CreatedAt: time.Now().Add(-24 * time.Hour)}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.entryPath(key), data, 0o644))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "old but valid", got)
}

func TestCache_ClearAndStats(t *testing.T) {
	c, err := New(true, t.TempDir(), 3600)
	require.NoError(t, err)

	require.NoError(t, c.Put(Key("p", "m", "s1", "d"), "a"))
	require.NoError(t, c.Put(Key("p", "m", "s2", "d"), "b"))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Positive(t, stats.TotalBytes)

	require.NoError(t, c.Clear())
	stats, err = c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}
