// Package batch composes many source files concurrently.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/remeh/sizedwaitgroup"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
	"github.com/dygy/codegroove/internal/logging"
	"github.com/dygy/codegroove/internal/scales"
)

// DefaultJobs is the parallelism used when Config.Jobs is not positive.
const DefaultJobs = 4

// Config holds batch configuration
type Config struct {
	Jobs     int
	Scale    scales.Scale
	MaxBytes int64 // 0 means unlimited
}

// Result is the outcome for one input file.
type Result struct {
	Path        string
	Bytes       int64
	Composition compose.Composition
	Elapsed     time.Duration
	Err         error
}

// Summary aggregates a batch run.
type Summary struct {
	Files  int
	Failed int
	Bytes  int64
	Events int
}

// Run composes every path with at most cfg.Jobs files in flight. Results
// are returned in input order. Files not started before ctx is cancelled
// carry ctx.Err().
func Run(ctx context.Context, paths []string, cfg Config) []Result {
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = DefaultJobs
	}
	logger := logging.FromContext(ctx)

	results := make([]Result, len(paths))
	swg := sizedwaitgroup.New(jobs)

	for i, path := range paths {
		results[i].Path = path
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		if err := swg.AddWithContext(ctx); err != nil {
			results[i].Err = err
			continue
		}
		go func(i int, path string) {
			defer swg.Done()
			results[i] = composeFile(path, cfg)
			if results[i].Err != nil {
				logger.Warn("compose failed", "path", path, "error", results[i].Err)
				return
			}
			logger.Debug("composed", "path", path,
				"bpm", results[i].Composition.BPM,
				"events", len(results[i].Composition.Events))
		}(i, path)
	}

	swg.Wait()
	return results
}

// Summarize totals a set of results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Files++
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Bytes += r.Bytes
		s.Events += len(r.Composition.Events)
	}
	return s
}

func composeFile(path string, cfg Config) Result {
	start := time.Now()
	res := Result{Path: path}

	source, err := ReadSource(path, cfg.MaxBytes)
	if err != nil {
		res.Err = err
		return res
	}

	res.Bytes = int64(len(source))
	res.Composition = compose.Compose(source, cfg.Scale)
	res.Elapsed = time.Since(start)
	return res
}

// ReadSource reads a source file, rejecting files larger than maxBytes.
func ReadSource(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	return ReadLimited(f, maxBytes)
}

// ReadLimited reads r fully, failing with ErrSourceTooLarge past maxBytes.
// A non-positive maxBytes disables the limit.
func ReadLimited(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", cgerrors.ErrSourceTooLarge, maxBytes)
	}
	return string(data), nil
}
