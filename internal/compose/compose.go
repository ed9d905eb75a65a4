// Package compose turns source code text into a tempo and an ordered list of
// musical events. It is a pure function of its inputs: no clock, no random
// state, no I/O, and safe for concurrent use.
//
// Each non-blank, non-comment line becomes one event. Indentation picks the
// pitch and velocity, line length picks the duration, and the leading keyword
// picks a drum voice. The tempo follows how many loop keywords the text uses.
package compose

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/dygy/codegroove/internal/scales"
)

// Tempo bounds and the baseline used when no loop keyword appears.
const (
	MinBPM     = 80
	MaxBPM     = 180
	BaseBPM    = 90
	BPMPerLoop = 15
)

// Velocity grows by one step per indentation level.
const (
	BaseVelocity     = 0.6
	VelocityPerLevel = 0.1
)

// LoopKeywords raise the tempo each time one appears as a whole word.
var LoopKeywords = []string{"for", "while", "map", "forEach", "reduce"}

var loopPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(LoopKeywords))
	for i, kw := range LoopKeywords {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return out
}()

// CountLoops returns the number of whole-word, case-sensitive loop keyword
// occurrences in source. "forEach" counts once and never as "for".
func CountLoops(source string) int {
	n := 0
	for _, re := range loopPatterns {
		n += len(re.FindAllStringIndex(source, -1))
	}
	return n
}

// DeriveTempo maps loop keyword density to a BPM in [MinBPM, MaxBPM].
func DeriveTempo(source string) int {
	return clampBPM(BaseBPM + BPMPerLoop*CountLoops(source))
}

func clampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// Role is the drum classification of a line. Roles are mutually exclusive and
// matched in priority order: if, else, function.
type Role int

const (
	RoleNone Role = iota
	RoleIf
	RoleElse
	RoleFunction
)

func classify(trimmed string) Role {
	switch {
	case strings.HasPrefix(trimmed, "if"):
		return RoleIf
	case strings.HasPrefix(trimmed, "else"):
		return RoleElse
	case strings.Contains(trimmed, "function"):
		return RoleFunction
	default:
		return RoleNone
	}
}

// Drum returns the percussion voice for the role.
func (r Role) Drum() DrumType {
	switch r {
	case RoleIf:
		return Kick
	case RoleElse:
		return Snare
	case RoleFunction:
		return HiHat
	default:
		return DrumNone
	}
}

func (r Role) String() string {
	switch r {
	case RoleIf:
		return "if"
	case RoleElse:
		return "else"
	case RoleFunction:
		return "function"
	default:
		return "none"
	}
}

// Line holds the features extracted from one source line.
type Line struct {
	Index         int // zero-based line number in the source
	Trimmed       string
	LeadingSpaces int
	Depth         int // two leading whitespace characters per level
	Length        int // trimmed length in UTF-16 code units
	Duration      Duration
	Role          Role
	IsReturn      bool
}

// ParseLine extracts features from raw. It reports false for lines that
// produce no event: blank lines and lines starting with "//".
func ParseLine(index int, raw string) (Line, bool) {
	trimmed := strings.TrimFunc(raw, isSpace)
	if trimmed == "" || strings.HasPrefix(trimmed, "//") {
		return Line{}, false
	}

	leading := 0
	for _, r := range raw {
		if !isSpace(r) {
			break
		}
		leading++
	}

	length := len(utf16.Encode([]rune(trimmed)))

	return Line{
		Index:         index,
		Trimmed:       trimmed,
		LeadingSpaces: leading,
		Depth:         leading / 2,
		Length:        length,
		Duration:      durationFor(length),
		Role:          classify(trimmed),
		IsReturn:      strings.HasPrefix(trimmed, "return"),
	}, true
}

// isSpace reports whether r is whitespace for line trimming and indentation.
// The set is the ECMAScript one: it includes U+FEFF and excludes U+0085.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0x1680,
		0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

func durationFor(length int) Duration {
	switch {
	case length > 30:
		return Quarter
	case length > 15:
		return Eighth
	default:
		return Sixteenth
	}
}

// Advance returns how many 16th notes the line moves the counter. Return
// lines leave a rest as long as the note itself.
func (l Line) Advance() int {
	if l.IsReturn {
		return l.Duration.Steps() * 2
	}
	return l.Duration.Steps()
}

// Event synthesizes the line's event at the given step.
func (l Line) Event(step int, scale scales.Scale) Event {
	idx := l.Depth
	if last := len(scale.Notes) - 1; idx > last {
		idx = last
	}

	drum := l.Role.Drum()
	e := Event{
		Step:     step,
		Duration: l.Duration,
		Drum:     drum,
		Velocity: BaseVelocity + float64(l.Depth)*VelocityPerLevel,
	}
	// Plain drum lines are percussion only; a drum line that also returns
	// keeps its melody note.
	if drum == DrumNone || l.IsReturn {
		e.Note = scale.Notes[idx]
		e.HasNote = true
	}
	return e
}

// Lines returns the features of every line that produces an event, in order.
func Lines(source string) []Line {
	raw := strings.Split(source, "\n")
	out := make([]Line, 0, len(raw))
	for i, r := range raw {
		if l, ok := ParseLine(i, r); ok {
			out = append(out, l)
		}
	}
	return out
}

// Compose transforms source text into a composition using scale for pitches.
// The scale must have at least one note.
func Compose(source string, scale scales.Scale) Composition {
	if len(scale.Notes) == 0 {
		panic("compose: scale " + scale.Name + " has no notes")
	}

	lines := Lines(source)
	c := Composition{
		BPM:    DeriveTempo(source),
		Events: make([]Event, 0, len(lines)),
	}

	step := 0
	for _, l := range lines {
		c.Events = append(c.Events, l.Event(step, scale))
		step += l.Advance()
	}
	return c
}
