package scales

import (
	"errors"
	"testing"

	cgerrors "github.com/dygy/codegroove/internal/errors"
)

func TestParsePitch(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"C4", 60},
		{"D3", 50},
		{"E3", 52},
		{"Eb3", 51},
		{"Bb3", 58},
		{"F#3", 54},
		{"G#3", 56},
		{"cs4", 61},
		{"C1", 24},
		{"A2", 45},
		{"C5", 72},
		{"C-1", 0},
		{"G9", 127},
	}

	for _, tt := range tests {
		got, err := ParsePitch(tt.label)
		if err != nil {
			t.Errorf("ParsePitch(%q) error: %v", tt.label, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePitch(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestParsePitchInvalid(t *testing.T) {
	for _, label := range []string{"", "H3", "C", "Cx4", "C10", "A9", "Cb-1"} {
		if _, err := ParsePitch(label); !errors.Is(err, cgerrors.ErrInvalidPitch) {
			t.Errorf("ParsePitch(%q) error = %v, want ErrInvalidPitch", label, err)
		}
	}
}

func TestPitchName(t *testing.T) {
	if got := PitchName(60); got != "c4" {
		t.Errorf("PitchName(60) = %q", got)
	}
	if got := PitchName(MustParsePitch("Eb3")); got != "ds3" {
		t.Errorf("PitchName(Eb3) = %q", got)
	}
}
