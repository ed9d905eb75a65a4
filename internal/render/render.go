// Package render dispatches a composition to one of the output formats.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dygy/codegroove/internal/compose"
	cgerrors "github.com/dygy/codegroove/internal/errors"
	"github.com/dygy/codegroove/internal/midi"
	"github.com/dygy/codegroove/internal/strudel"
)

// Format is an output format
type Format string

const (
	FormatStrudel Format = "strudel"
	FormatMIDI    Format = "midi"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatStrudel, FormatMIDI}
}

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "strudel", "js":
		return FormatStrudel, nil
	case "midi", "mid", "smf":
		return FormatMIDI, nil
	default:
		return "", fmt.Errorf("%q: %w", s, cgerrors.ErrUnknownFormat)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatMIDI {
		return "audio/midi"
	}
	return "text/plain; charset=utf-8"
}

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	if f == FormatMIDI {
		return ".mid"
	}
	return ".strudel"
}

// Options tune the Strudel renderer. MIDI ignores them.
type Options struct {
	Kit   strudel.DrumKit
	Style strudel.SoundStyle
}

// Render writes c to w in format f.
func Render(w io.Writer, f Format, c compose.Composition, opts Options) error {
	switch f {
	case FormatStrudel:
		code := strudel.NewGeneratorWithStyle(opts.Kit, opts.Style).Generate(c)
		_, err := io.WriteString(w, code)
		return err
	case FormatMIDI:
		return midi.Write(w, c)
	default:
		return fmt.Errorf("%q: %w", string(f), cgerrors.ErrUnknownFormat)
	}
}
