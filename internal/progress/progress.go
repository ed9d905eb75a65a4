package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

// Stage represents a processing stage
type Stage struct {
	Number      int
	Total       int
	Name        string
	Description string
}

// Render pipeline stages
var (
	StageRead    = Stage{1, 4, "read", "Reading source..."}
	StageCompose = Stage{2, 4, "compose", "Composing events..."}
	StageRender  = Stage{3, 4, "render", "Rendering output..."}
	StageWrite   = Stage{4, 4, "write", "Writing output..."}
)

// Reporter handles CLI progress output
type Reporter struct {
	out       io.Writer
	startTime time.Time
	verbose   bool
	now       func() time.Time
}

// NewReporter creates a new progress reporter
func NewReporter(out io.Writer, verbose bool) *Reporter {
	return &Reporter{
		out:       out,
		startTime: time.Now(),
		verbose:   verbose,
		now:       time.Now,
	}
}

// StartStage announces the beginning of a processing stage
func (r *Reporter) StartStage(stage Stage) {
	if r.verbose {
		fmt.Fprintf(r.out, "[%d/%d] %s\n", stage.Number, stage.Total, stage.Description)
	}
}

// Update shows a sub-progress message within a stage
func (r *Reporter) Update(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(r.out, "       %s\n", fmt.Sprintf(format, args...))
	}
}

// StageComplete shows completion message for a stage
func (r *Reporter) StageComplete(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(r.out, "       %s\n", fmt.Sprintf(format, args...))
	}
}

// SourceRead reports the size of the input.
func (r *Reporter) SourceRead(bytes int64, lines int) {
	r.StageComplete("%s, %s lines", humanize.Bytes(uint64(bytes)), humanize.Comma(int64(lines)))
}

// Composed reports tempo, event count and loop length.
func (r *Reporter) Composed(bpm, events int, loop time.Duration) {
	r.StageComplete("%d BPM, %s events, loop %s", bpm, humanize.Comma(int64(events)), FormatDuration(loop))
}

// CacheHit reports a render served from cache.
func (r *Reporter) CacheHit(key string, created time.Time) {
	r.StageComplete("cache hit %s (rendered %s)", key, humanize.RelTime(created, r.now(), "ago", "from now"))
}

// Done announces successful completion
func (r *Reporter) Done(outputPath string, size int) {
	elapsed := r.now().Sub(r.startTime)
	if outputPath != "" {
		fmt.Fprintf(r.out, "Wrote %s to %s in %s\n", humanize.Bytes(uint64(size)), outputPath, FormatDuration(elapsed))
		return
	}
	if r.verbose {
		fmt.Fprintf(r.out, "Completed in %s\n", FormatDuration(elapsed))
	}
}

// Error announces an error
func (r *Reporter) Error(err error) {
	fmt.Fprintf(r.out, "Error: %s\n", err)
}

// Warning announces a non-fatal warning
func (r *Reporter) Warning(format string, args ...any) {
	fmt.Fprintf(r.out, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// FormatDuration renders d for humans, e.g. "9 seconds 142 milliseconds".
// Sub-millisecond precision is dropped.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "0 milliseconds"
	}
	return durafmt.Parse(d.Truncate(time.Millisecond)).LimitFirstN(2).String()
}
