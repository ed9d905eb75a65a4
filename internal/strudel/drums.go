package strudel

import (
	"fmt"
	"strings"

	"github.com/dygy/codegroove/internal/compose"
)

// DrumKit defines preset drum sound mappings
type DrumKit string

const (
	DrumKitTR808    DrumKit = "tr808"
	DrumKitTR909    DrumKit = "tr909"
	DrumKitLinn     DrumKit = "linn"
	DrumKitAcoustic DrumKit = "acoustic"
	DrumKitLofi     DrumKit = "lofi"
	DrumKitDefault  DrumKit = "default"
)

// kitInfo is the Strudel sample bank behind a kit and a short blurb for
// listings. An empty bank plays Strudel's built-in samples.
type kitInfo struct {
	bank  string
	blurb string
}

var drumKits = map[DrumKit]kitInfo{
	DrumKitTR808:    {"RolandTR808", "Roland TR-808, boomy kick and snappy snare"},
	DrumKitTR909:    {"RolandTR909", "Roland TR-909, punchy house and techno kit"},
	DrumKitLinn:     {"LinnDrum", "LinnDrum LM-2, tight 80s pop kit"},
	DrumKitAcoustic: {"AlesisSR16", "Alesis SR-16 sampled acoustic kit"},
	DrumKitLofi:     {"CasioRZ1", "Casio RZ-1, crunchy 12-bit samples"},
	DrumKitDefault:  {"", "Strudel's default samples, no bank"},
}

// kitOrder is the listing order for DrumKits
var kitOrder = []DrumKit{DrumKitTR808, DrumKitTR909, DrumKitLinn, DrumKitAcoustic, DrumKitLofi, DrumKitDefault}

// DrumKits lists every kit ParseDrumKit can return, the fallback kit first.
func DrumKits() []DrumKit {
	return append([]DrumKit(nil), kitOrder...)
}

// Bank returns the .bank() name for k, or "" when k uses the default samples.
func (k DrumKit) Bank() string {
	return drumKits[k].bank
}

// Description returns a one-line summary of the kit's sound.
func (k DrumKit) Description() string {
	return drumKits[k].blurb
}

// drumSounds maps composition drum voices to sample names. The function
// hihat is played open.
var drumSounds = map[compose.DrumType]string{
	compose.Kick:  "bd",
	compose.Snare: "sd",
	compose.HiHat: "oh",
}

// drumOrder is the stacking order of drum patterns in the output
var drumOrder = []compose.DrumType{compose.Kick, compose.Snare, compose.HiHat}

// ParseDrumKit converts a string to DrumKit, falling back to the TR-808
func ParseDrumKit(s string) DrumKit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tr808", "808":
		return DrumKitTR808
	case "tr909", "909":
		return DrumKitTR909
	case "linn", "linndrum":
		return DrumKitLinn
	case "acoustic":
		return DrumKitAcoustic
	case "lofi", "lo-fi":
		return DrumKitLofi
	case "default", "none":
		return DrumKitDefault
	default:
		return DrumKitTR808
	}
}

// generateDrumPattern stacks one s() pattern per drum voice present in c.
// Returns "" when the composition has no drum events.
func (g *Generator) generateDrumPattern(c compose.Composition, numBars int) string {
	var patterns []string
	for _, drum := range drumOrder {
		sound := drumSounds[drum]
		hits := 0
		pattern := layoutBars(c.Events, numBars, func(e compose.Event) (string, int, bool) {
			if e.Drum != drum {
				return "", 0, false
			}
			hits++
			return sound, 1, true
		})
		if hits > 0 {
			patterns = append(patterns, fmt.Sprintf("s(\"%s\")", pattern))
		}
	}

	if len(patterns) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("// drums (%s)\n", g.kit))
	if len(patterns) == 1 {
		sb.WriteString("$: " + patterns[0])
	} else {
		sb.WriteString("$: stack(\n")
		for i, p := range patterns {
			sb.WriteString("    " + p)
			if i < len(patterns)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("  )")
	}
	if bank := g.kit.Bank(); bank != "" {
		sb.WriteString(fmt.Sprintf(".bank(\"%s\")", bank))
	}
	sb.WriteString(".room(0.2)\n")
	return sb.String()
}
