package progress

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuietReporterOnlyPrintsResults(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	r.StartStage(StageRead)
	r.SourceRead(2048, 10)
	r.Update("hidden")
	assert.Empty(t, buf.String())

	r.Warning("scale %q unknown", "x")
	r.Error(errors.New("boom"))
	assert.Equal(t, "Warning: scale \"x\" unknown\nError: boom\n", buf.String())
}

func TestVerboseReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, true)

	r.StartStage(StageCompose)
	r.SourceRead(1500000, 12345)
	r.Composed(105, 1200, 9*time.Second)

	out := buf.String()
	assert.Contains(t, out, "[2/4] Composing events...")
	assert.Contains(t, out, "1.5 MB, 12,345 lines")
	assert.Contains(t, out, "105 BPM, 1,200 events, loop 9 seconds")
}

func TestDone(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewReporter(&buf, false)
	r.startTime = start
	r.now = func() time.Time { return start.Add(1500 * time.Millisecond) }

	r.Done("out.mid", 2000)
	assert.Equal(t, "Wrote 2.0 kB to out.mid in 1 second 500 milliseconds\n", buf.String())
}

func TestCacheHit(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewReporter(&buf, true)
	r.now = func() time.Time { return now }

	r.CacheHit("strudel_abc", now.Add(-3*time.Hour))
	assert.Contains(t, buf.String(), "cache hit strudel_abc (rendered 3 hours ago)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 milliseconds", FormatDuration(0))
	assert.Equal(t, "2 minutes 5 seconds", FormatDuration(2*time.Minute+5*time.Second+300*time.Millisecond))
}
