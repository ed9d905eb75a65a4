// Package playback plans how a composition is triggered by an audio
// scheduler. A Session is created per play action, owned by whoever drives
// playback, and disposed with Stop. It computes timings only; producing
// sound is left to the scheduler.
package playback

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
)

// State of a session
type State string

const (
	StateReady   State = "ready"
	StateStopped State = "stopped"
)

// Voice is the instrument a trigger is routed to.
type Voice string

const (
	VoiceMelody Voice = "melody"
	VoiceKick   Voice = "kick"
	VoiceSnare  Voice = "snare"
	VoiceHiHat  Voice = "hihat"
)

// Drum voice settings
const (
	kickNote      = "C1"
	kickLength    = "8n"
	snareLength   = "16n"
	hihatLength   = "32n"
	hihatVelocity = 0.5
	drumVelocity  = 1.0
)

// Trigger is one scheduled attack/release on a voice.
type Trigger struct {
	Voice    Voice         `json:"voice"`
	Time     string        `json:"time"` // transport position "bar:beat:sixteenth"
	At       time.Duration `json:"-"`
	Seconds  float64       `json:"seconds"`
	Note     string        `json:"note,omitempty"`
	Length   string        `json:"length"`
	Hold     time.Duration `json:"-"`
	Velocity float64       `json:"velocity"` // clamped to [0, 1]
}

// Session is the playback plan for one composition.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	state    State
	bpm      int
	triggers []Trigger
	loopEnd  compose.Position
}

// NewSession builds a session for c. The composition is not retained.
func NewSession(c compose.Composition) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		state:     StateReady,
		bpm:       c.BPM,
	}
	s.triggers = plan(c)
	s.loopEnd = loopEnd(c)
	return s
}

// BPM returns the session tempo.
func (s *Session) BPM() int { return s.bpm }

// StepDuration returns the length of one 16th note at the session tempo.
func (s *Session) StepDuration() time.Duration {
	return stepsToDuration(1, s.bpm)
}

// LoopEnd returns the transport position where playback wraps around.
func (s *Session) LoopEnd() compose.Position { return s.loopEnd }

// LoopDuration returns the wall-clock length of one loop.
func (s *Session) LoopDuration() time.Duration {
	return stepsToDuration(float64(s.loopEnd.Steps()), s.bpm)
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Triggers returns a copy of the trigger plan in time order.
func (s *Session) Triggers() ([]Trigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return nil, cgerrors.ErrSessionStopped
	}
	out := make([]Trigger, len(s.triggers))
	copy(out, s.triggers)
	return out, nil
}

// Stop disposes the plan. It is safe to call more than once.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateStopped
	s.triggers = nil
}

func plan(c compose.Composition) []Trigger {
	triggers := make([]Trigger, 0, len(c.Events))
	for _, e := range c.Events {
		at := stepsToDuration(float64(e.Step), c.BPM)
		base := Trigger{
			Time:    e.Time().String(),
			At:      at,
			Seconds: at.Seconds(),
		}

		if e.HasNote {
			t := base
			t.Voice = VoiceMelody
			t.Note = e.Note
			t.Length = e.Duration.String()
			t.Velocity = clampVelocity(e.Velocity)
			triggers = append(triggers, t)
		}

		if !e.IsDrum() {
			continue
		}
		t := base
		t.Velocity = drumVelocity
		switch e.Drum {
		case compose.Kick:
			t.Voice = VoiceKick
			t.Note = kickNote
			t.Length = kickLength
		case compose.Snare:
			t.Voice = VoiceSnare
			t.Length = snareLength
		case compose.HiHat:
			t.Voice = VoiceHiHat
			t.Length = hihatLength
			t.Velocity = hihatVelocity
		}
		triggers = append(triggers, t)
	}

	for i := range triggers {
		triggers[i].Hold = stepsToDuration(lengthSteps(triggers[i].Length), c.BPM)
	}
	return triggers
}

// loopEnd rounds the composition up to whole bars so no event is cut off.
func loopEnd(c compose.Composition) compose.Position {
	if len(c.Events) == 0 {
		return compose.Position{}
	}
	bars := int(math.Ceil(float64(c.Length()) / compose.StepsPerBar))
	return compose.Position{Bar: bars}
}

func stepsToDuration(steps float64, bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Duration(steps * float64(time.Minute) / float64(bpm) / 4)
}

// lengthSteps converts transport note lengths to 16th-note steps.
func lengthSteps(length string) float64 {
	switch length {
	case "4n":
		return 4
	case "8n":
		return 2
	case "32n":
		return 0.5
	default:
		return 1
	}
}

func clampVelocity(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
