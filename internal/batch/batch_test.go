package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
	"github.com/dygy/codegroove/internal/scales"
)

func writeSources(t *testing.T, sources ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(sources))
	for i, src := range sources {
		paths[i] = filepath.Join(dir, fmt.Sprintf("src%02d.js", i))
		require.NoError(t, os.WriteFile(paths[i], []byte(src), 0644))
	}
	return paths
}

func TestRunPreservesInputOrder(t *testing.T) {
	var sources []string
	for i := 0; i < 20; i++ {
		sources = append(sources, strings.Repeat("for (;;) {}\n", i%6)+"x;")
	}
	paths := writeSources(t, sources...)

	results := Run(context.Background(), paths, Config{Jobs: 3, Scale: scales.Default()})
	require.Len(t, results, len(paths))

	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, paths[i], r.Path)
		assert.Equal(t, compose.Compose(sources[i], scales.Default()), r.Composition)
	}
}

func TestRunReportsPerFileErrors(t *testing.T) {
	paths := writeSources(t, "x;", strings.Repeat("a", 64))
	paths = append(paths, filepath.Join(t.TempDir(), "missing.js"))

	results := Run(context.Background(), paths, Config{Jobs: 2, Scale: scales.Default(), MaxBytes: 32})
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.True(t, errors.Is(results[1].Err, cgerrors.ErrSourceTooLarge))
	assert.True(t, errors.Is(results[2].Err, os.ErrNotExist))

	s := Summarize(results)
	assert.Equal(t, Summary{Files: 3, Failed: 2, Bytes: 2, Events: 1}, s)
}

func TestRunCancelled(t *testing.T) {
	paths := writeSources(t, "a;", "b;", "c;")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, paths, Config{Jobs: 1, Scale: scales.Default()})
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestReadLimited(t *testing.T) {
	src, err := ReadLimited(strings.NewReader("abcd"), 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", src)

	_, err = ReadLimited(strings.NewReader("abcde"), 4)
	assert.ErrorIs(t, err, cgerrors.ErrSourceTooLarge)

	src, err = ReadLimited(strings.NewReader("unbounded"), 0)
	require.NoError(t, err)
	assert.Equal(t, "unbounded", src)
}
