package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
	"github.com/dygy/codegroove/internal/scales"
	"github.com/dygy/codegroove/internal/strudel"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"strudel", FormatStrudel},
		{" Strudel ", FormatStrudel},
		{"midi", FormatMIDI},
		{".mid", FormatMIDI},
		{"SMF", FormatMIDI},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("wav")
	assert.ErrorIs(t, err, cgerrors.ErrUnknownFormat)
}

func TestRender(t *testing.T) {
	c := compose.Compose("if (x) {\n  return true;\n}", scales.Default())

	var code bytes.Buffer
	require.NoError(t, Render(&code, FormatStrudel, c, Options{Kit: strudel.DrumKitTR909}))
	assert.Contains(t, code.String(), "setcps(90/60/4)")
	assert.Contains(t, code.String(), `.bank("RolandTR909")`)

	var smf bytes.Buffer
	require.NoError(t, Render(&smf, FormatMIDI, c, Options{}))
	assert.Equal(t, "MThd", smf.String()[:4])

	assert.ErrorIs(t, Render(&smf, Format("wav"), c, Options{}), cgerrors.ErrUnknownFormat)
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "audio/midi", FormatMIDI.ContentType())
	assert.Equal(t, ".mid", FormatMIDI.Extension())
	assert.Equal(t, ".strudel", FormatStrudel.Extension())
	assert.Contains(t, FormatStrudel.ContentType(), "text/plain")
}
