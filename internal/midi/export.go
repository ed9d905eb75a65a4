// Package midi exports compositions as Standard MIDI Files.
package midi

import (
	"fmt"
	"io"
	"math"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/dygy/codegroove/internal/compose"
	"github.com/dygy/codegroove/internal/scales"
)

// Channels and General MIDI drum keys
const (
	MelodyChannel uint8 = 0
	DrumChannel   uint8 = 9

	KeyKick      = 36
	KeySnare     = 38
	KeyOpenHiHat = 46
)

// TicksPerQuarter is the file resolution; a 16th note is a quarter of it.
const (
	TicksPerQuarter = 480
	ticksPerStep    = TicksPerQuarter / 4
)

// Note represents a single MIDI note placed in ticks
type Note struct {
	Channel  uint8
	Pitch    int
	Start    uint32 // absolute ticks
	Duration uint32 // ticks
	Velocity int
}

// Notes converts a composition to MIDI notes. Melody velocity is the event
// velocity scaled by 100 and capped at 127.
func Notes(c compose.Composition) ([]Note, error) {
	var notes []Note
	for _, e := range c.Events {
		start := uint32(e.Step * ticksPerStep)

		if e.HasNote {
			key, err := scales.ParsePitch(e.Note)
			if err != nil {
				return nil, fmt.Errorf("event at %s: %w", e.Time(), err)
			}
			notes = append(notes, Note{
				Channel:  MelodyChannel,
				Pitch:    key,
				Start:    start,
				Duration: uint32(e.Duration.Steps() * ticksPerStep),
				Velocity: velocity(e.Velocity),
			})
		}

		switch e.Drum {
		case compose.Kick:
			notes = append(notes, Note{DrumChannel, KeyKick, start, 2 * ticksPerStep, 100})
		case compose.Snare:
			notes = append(notes, Note{DrumChannel, KeySnare, start, ticksPerStep, 100})
		case compose.HiHat:
			notes = append(notes, Note{DrumChannel, KeyOpenHiHat, start, ticksPerStep / 2, 50})
		}
	}
	return notes, nil
}

func velocity(v float64) int {
	n := int(math.Round(v * 100))
	if n > 127 {
		return 127
	}
	if n < 1 {
		return 1
	}
	return n
}

// Write encodes c as a format 1 SMF: a tempo track, a melody track and a
// drum track.
func Write(w io.Writer, c compose.Composition) error {
	notes, err := Notes(c)
	if err != nil {
		return err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName("codegroove"))
	conductor.Add(0, smf.MetaMeter(4, 4))
	conductor.Add(0, smf.MetaTempo(float64(c.BPM)))
	conductor.Close(0)

	var melody, drums []Note
	for _, n := range notes {
		if n.Channel == DrumChannel {
			drums = append(drums, n)
		} else {
			melody = append(melody, n)
		}
	}

	for _, tr := range []smf.Track{conductor, buildTrack("melody", melody), buildTrack("drums", drums)} {
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("add track: %w", err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}

type timedMessage struct {
	tick uint32
	off  bool
	msg  gomidi.Message
}

// buildTrack converts absolute notes to a delta-timed track. At equal ticks
// note-offs come before note-ons so repeated keys retrigger.
func buildTrack(name string, notes []Note) smf.Track {
	msgs := make([]timedMessage, 0, len(notes)*2)
	for _, n := range notes {
		msgs = append(msgs,
			timedMessage{n.Start, false, gomidi.NoteOn(n.Channel, uint8(n.Pitch), uint8(n.Velocity))},
			timedMessage{n.Start + n.Duration, true, gomidi.NoteOff(n.Channel, uint8(n.Pitch))},
		)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	var last uint32
	for _, m := range msgs {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}
	tr.Close(0)
	return tr
}
