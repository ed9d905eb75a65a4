package compose

import (
	"encoding/json"
	"fmt"
)

// StepsPerBar is the number of 16th notes in a 4/4 bar.
const StepsPerBar = 16

// Position is a transport time as bars, quarter beats and sixteenths.
type Position struct {
	Bar       int
	Beat      int
	Sixteenth int
}

// PositionOf renders a 16th-note counter as a transport position.
func PositionOf(step int) Position {
	return Position{
		Bar:       step / StepsPerBar,
		Beat:      (step % StepsPerBar) / 4,
		Sixteenth: step % 4,
	}
}

// Steps converts the position back to a 16th-note counter.
func (p Position) Steps() int {
	return p.Bar*StepsPerBar + p.Beat*4 + p.Sixteenth
}

// String formats the position as "bar:beat:sixteenth".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Bar, p.Beat, p.Sixteenth)
}

// Duration is a coarse note-length bucket.
type Duration int

const (
	Sixteenth Duration = iota
	Eighth
	Quarter
)

// Steps returns how many 16th notes the duration spans.
func (d Duration) Steps() int {
	switch d {
	case Quarter:
		return 4
	case Eighth:
		return 2
	default:
		return 1
	}
}

// String returns the transport notation ("16n", "8n", "4n").
func (d Duration) String() string {
	switch d {
	case Quarter:
		return "4n"
	case Eighth:
		return "8n"
	default:
		return "16n"
	}
}

// DrumType identifies the percussion voice a line triggers.
type DrumType int

const (
	DrumNone DrumType = iota
	Kick
	Snare
	HiHat
)

func (d DrumType) String() string {
	switch d {
	case Kick:
		return "kick"
	case Snare:
		return "snare"
	case HiHat:
		return "hihat"
	default:
		return ""
	}
}

// Event is one musical trigger derived from a source line.
type Event struct {
	Step     int // 16th-note counter at which the event fires
	Note     string
	HasNote  bool
	Duration Duration
	Drum     DrumType
	Velocity float64 // 0.6 + 0.1 per indentation level; not clamped
}

// Time returns the event position in bars, beats and sixteenths.
func (e Event) Time() Position {
	return PositionOf(e.Step)
}

// IsDrum reports whether the event triggers a percussion voice.
func (e Event) IsDrum() bool {
	return e.Drum != DrumNone
}

// Composition is a tempo plus the ordered events produced from one source text.
type Composition struct {
	BPM    int
	Events []Event
}

// eventJSON is the wire shape consumed by playback clients.
type eventJSON struct {
	Time     string  `json:"time"`
	Note     *string `json:"note"`
	Duration string  `json:"duration"`
	IsDrum   bool    `json:"isDrum"`
	DrumType string  `json:"drumType,omitempty"`
	Velocity float64 `json:"velocity"`
}

type compositionJSON struct {
	BPM    int         `json:"bpm"`
	Events []eventJSON `json:"events"`
}

// MarshalJSON encodes the event in transport notation.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

func (e Event) wire() eventJSON {
	out := eventJSON{
		Time:     e.Time().String(),
		Duration: e.Duration.String(),
		IsDrum:   e.IsDrum(),
		DrumType: e.Drum.String(),
		Velocity: e.Velocity,
	}
	if e.HasNote {
		note := e.Note
		out.Note = &note
	}
	return out
}

// MarshalJSON encodes the composition; events is always an array, never null.
func (c Composition) MarshalJSON() ([]byte, error) {
	out := compositionJSON{
		BPM:    c.BPM,
		Events: make([]eventJSON, len(c.Events)),
	}
	for i, e := range c.Events {
		out.Events[i] = e.wire()
	}
	return json.Marshal(out)
}

// Length returns the step at which the last event's duration ends.
func (c Composition) Length() int {
	if len(c.Events) == 0 {
		return 0
	}
	last := c.Events[len(c.Events)-1]
	return last.Step + last.Duration.Steps()
}
