package midi

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
	"github.com/dygy/codegroove/internal/scales"
)

func TestNotes(t *testing.T) {
	c := compose.Compose("if (x) {\n  return true;\n}", scales.Default())

	notes, err := Notes(c)
	require.NoError(t, err)
	require.Len(t, notes, 3)

	assert.Equal(t, Note{DrumChannel, KeyKick, 0, 240, 100}, notes[0])
	assert.Equal(t, Note{MelodyChannel, 52, 120, 120, 70}, notes[1]) // E3 at step 1
	assert.Equal(t, Note{MelodyChannel, 50, 360, 120, 60}, notes[2]) // D3 at step 3
}

func TestNotesVelocityCapped(t *testing.T) {
	c := compose.Composition{BPM: 90, Events: []compose.Event{
		{Step: 0, Note: "C4", HasNote: true, Velocity: 3.0},
		{Step: 1, Drum: compose.HiHat, Velocity: 0.6},
	}}
	notes, err := Notes(c)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, 127, notes[0].Velocity)
	assert.Equal(t, KeyOpenHiHat, notes[1].Pitch)
	assert.Equal(t, uint32(60), notes[1].Duration)
}

func TestNotesInvalidLabel(t *testing.T) {
	c := compose.Compose("x", scales.Scale{Name: "bad", Notes: []string{"Q1"}})
	_, err := Notes(c)
	assert.True(t, errors.Is(err, cgerrors.ErrInvalidPitch))
}

func TestWriteRoundTrip(t *testing.T) {
	c := compose.Compose("for (;;) {\n  if (x) {\n    return y;\n  }\n}", scales.Default())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 3)

	var bpm float64
	foundTempo := false
	for _, ev := range s.Tracks[0] {
		if ev.Message.GetMetaTempo(&bpm) {
			foundTempo = true
		}
	}
	require.True(t, foundTempo)
	assert.InDelta(t, 105, bpm, 0.01)

	melodyOn := countNoteOns(s.Tracks[1])
	drumOn := countNoteOns(s.Tracks[2])
	assert.Equal(t, 4, melodyOn) // every line except the if
	assert.Equal(t, 1, drumOn)
}

func countNoteOns(tr smf.Track) int {
	n := 0
	for _, ev := range tr {
		var ch, key, vel uint8
		if gomidi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) && vel > 0 {
			n++
		}
	}
	return n
}
