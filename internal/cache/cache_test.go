package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("x;", "dorian", "strudel", "tr808")

	assert.Equal(t, a, Key("x;", "dorian", "strudel", "tr808"))
	assert.NotEqual(t, a, Key("y;", "dorian", "strudel", "tr808"))
	assert.NotEqual(t, a, Key("x;", "blues", "strudel", "tr808"))
	assert.NotEqual(t, a, Key("x;", "dorian", "strudel", "tr909"))
	assert.Contains(t, Key("x;", "dorian", "midi", ""), "midi_")

	// Field boundaries are part of the key.
	assert.NotEqual(t, Key("x", "ab", "strudel", "c"), Key("x", "a", "strudel", "bc"))
}

func TestPutGet(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := Key("x;", "dorian", "strudel", "tr808")
	_, _, ok := c.Get(key)
	assert.False(t, ok)

	body := []byte("setcps(90/60/4)\n")
	require.NoError(t, c.Put(key, &CachedOutput{Format: "strudel", Scale: "dorian", BPM: 90, Events: 1}, body))

	out, got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, body, got)
	assert.Equal(t, key, out.Key)
	assert.Equal(t, 90, out.BPM)
	assert.Equal(t, len(body), out.Size)
	assert.FileExists(t, filepath.Join(c.Dir(), key, "output.strudel"))
}

func TestGetRejectsStaleVersion(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := Key("x;", "dorian", "midi", "")
	require.NoError(t, c.Put(key, &CachedOutput{Format: "midi"}, []byte{0x4d, 0x54}))

	metaPath := filepath.Join(c.Dir(), key, "meta.json")
	var out CachedOutput
	data, err := os.ReadFile(metaPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	out.Version = "0"
	data, err = json.Marshal(out)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(metaPath, data, 0644))

	_, _, ok := c.Get(key)
	assert.False(t, ok)
}

func TestGetRejectsTruncatedBody(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := Key("x;", "dorian", "strudel", "")
	require.NoError(t, c.Put(key, &CachedOutput{Format: "strudel"}, []byte("abcdef")))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), key, "output.strudel"), []byte("abc"), 0644))

	_, _, ok := c.Get(key)
	assert.False(t, ok)
}

func TestSizeAndClear(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "renders"))
	require.NoError(t, err)

	require.NoError(t, c.Put(Key("a", "dorian", "strudel", ""), &CachedOutput{Format: "strudel"}, []byte("aaaa")))
	require.NoError(t, c.Put(Key("b", "dorian", "strudel", ""), &CachedOutput{Format: "strudel"}, []byte("bb")))

	size, count, err := c.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Greater(t, size, int64(6))

	require.NoError(t, c.Clear())
	size, count, err = c.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
	assert.Zero(t, count)
}
