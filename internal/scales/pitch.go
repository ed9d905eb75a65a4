package scales

import (
	"fmt"
	"strconv"
	"unicode"

	cgerrors "github.com/dygy/codegroove/internal/errors"
)

// ParsePitch converts a pitch label like "Eb3" or "F#4" to a MIDI key number
// (C4 = 60). Accidentals are '#' or 's' for sharp and 'b' for flat.
func ParsePitch(label string) (int, error) {
	if label == "" {
		return 0, fmt.Errorf("%q: %w", label, cgerrors.ErrInvalidPitch)
	}

	base := noteOffset(unicode.ToLower(rune(label[0])))
	if base < 0 {
		return 0, fmt.Errorf("%q: %w", label, cgerrors.ErrInvalidPitch)
	}

	i := 1
accidentals:
	for ; i < len(label); i++ {
		switch label[i] {
		case '#', 's':
			base++
		case 'b':
			base--
		default:
			break accidentals
		}
	}

	oct, err := strconv.Atoi(label[i:])
	if err != nil || oct < -1 || oct > 9 {
		return 0, fmt.Errorf("%q: %w", label, cgerrors.ErrInvalidPitch)
	}

	key := base + (oct+1)*12
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("%q out of MIDI range: %w", label, cgerrors.ErrInvalidPitch)
	}
	return key, nil
}

// MustParsePitch is ParsePitch for labels known to be valid.
func MustParsePitch(label string) int {
	key, err := ParsePitch(label)
	if err != nil {
		panic(err)
	}
	return key
}

// PitchName converts a MIDI key to a lowercase sharp-spelled name ("cs4").
func PitchName(key int) string {
	noteNames := []string{"c", "cs", "d", "ds", "e", "f", "fs", "g", "gs", "a", "as", "b"}
	octave := (key / 12) - 1
	return fmt.Sprintf("%s%d", noteNames[key%12], octave)
}

func noteOffset(r rune) int {
	switch r {
	case 'c':
		return 0
	case 'd':
		return 2
	case 'e':
		return 4
	case 'f':
		return 5
	case 'g':
		return 7
	case 'a':
		return 9
	case 'b':
		return 11
	}
	return -1
}
