package playback

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
	"github.com/dygy/codegroove/internal/scales"
)

func newTestSession(t *testing.T, src string) *Session {
	t.Helper()
	return NewSession(compose.Compose(src, scales.Default()))
}

func TestSessionTriggers(t *testing.T) {
	s := newTestSession(t, "if (x) {\n  return true;\n}")

	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 90, s.BPM())
	assert.NotEmpty(t, s.ID)

	triggers, err := s.Triggers()
	require.NoError(t, err)
	require.Len(t, triggers, 3)

	kick := triggers[0]
	assert.Equal(t, VoiceKick, kick.Voice)
	assert.Equal(t, "C1", kick.Note)
	assert.Equal(t, "8n", kick.Length)
	assert.Equal(t, "0:0:0", kick.Time)
	assert.Zero(t, kick.At)

	melody := triggers[1]
	assert.Equal(t, VoiceMelody, melody.Voice)
	assert.Equal(t, "E3", melody.Note)
	assert.Equal(t, "0:0:1", melody.Time)
	assert.InDelta(t, 0.7, melody.Velocity, 1e-9)
	assert.InDelta(t, 60.0/90/4, melody.Seconds, 1e-6)

	assert.Equal(t, "0:0:3", triggers[2].Time)
	assert.InDelta(t, 3*60.0/90/4, triggers[2].Seconds, 1e-6)
}

func TestSessionDrumVoices(t *testing.T) {
	s := newTestSession(t, "else {\nfunction f() {\nreturn function() {};")

	triggers, err := s.Triggers()
	require.NoError(t, err)

	voices := []Voice{}
	for _, tr := range triggers {
		voices = append(voices, tr.Voice)
	}
	// The returning function line carries both a melody note and a hihat.
	assert.Equal(t, []Voice{VoiceSnare, VoiceHiHat, VoiceMelody, VoiceHiHat}, voices)

	assert.Equal(t, "16n", triggers[0].Length)
	assert.Equal(t, "32n", triggers[1].Length)
	assert.InDelta(t, 0.5, triggers[1].Velocity, 1e-9)
	assert.Equal(t, triggers[2].At, triggers[3].At)
}

func TestSessionClampsVelocity(t *testing.T) {
	s := newTestSession(t, strings.Repeat(" ", 20)+"deep();")

	triggers, err := s.Triggers()
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Equal(t, 1.0, triggers[0].Velocity)
}

func TestSessionTiming(t *testing.T) {
	s := NewSession(compose.Composition{BPM: 120})
	assert.Equal(t, 125*time.Millisecond, s.StepDuration())
	assert.Equal(t, compose.Position{}, s.LoopEnd())
	assert.Zero(t, s.LoopDuration())

	long := strings.Repeat("x", 31)
	src := strings.Repeat(long+"\n", 5) // five quarters, 20 steps
	s = newTestSession(t, src)
	assert.Equal(t, compose.Position{Bar: 2}, s.LoopEnd())

	step := s.StepDuration()
	assert.InDelta(t, float64(32*step), float64(s.LoopDuration()), float64(time.Microsecond))

	triggers, err := s.Triggers()
	require.NoError(t, err)
	assert.InDelta(t, float64(4*step), float64(triggers[0].Hold), float64(time.Microsecond))
}

func TestSessionStop(t *testing.T) {
	s := newTestSession(t, "x")
	s.Stop()
	s.Stop()

	assert.Equal(t, StateStopped, s.State())
	_, err := s.Triggers()
	assert.True(t, errors.Is(err, cgerrors.ErrSessionStopped))
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newTestSession(t, "x")
	b := newTestSession(t, "x")
	assert.NotEqual(t, a.ID, b.ID)

	a.Stop()
	_, err := b.Triggers()
	assert.NoError(t, err)
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := newTestSession(t, "a\nb\nc")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Triggers()
			_ = s.State()
		}()
	}
	s.Stop()
	wg.Wait()
	assert.Equal(t, StateStopped, s.State())
}
