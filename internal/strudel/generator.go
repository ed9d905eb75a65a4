// Package strudel renders compositions as Strudel live-coding patterns.
// One Strudel cycle is one 4/4 bar; each bar is laid out on a 16-slot grid.
package strudel

import (
	"fmt"
	"math"
	"strings"

	"github.com/dygy/codegroove/internal/compose"
	"github.com/dygy/codegroove/internal/scales"
)

// SoundStyle defines preset melody sounds for different genres
type SoundStyle string

const (
	StyleSynth      SoundStyle = "synth"
	StylePiano      SoundStyle = "piano"
	StyleOrchestral SoundStyle = "orchestral"
	StyleElectronic SoundStyle = "electronic"
	StyleJazz       SoundStyle = "jazz"
	StyleLofi       SoundStyle = "lofi"
)

// SoundPalette defines the melody voice for a style
type SoundPalette struct {
	Melody     string
	MelodyGain float64
	Summary    string
}

// Predefined sound palettes for each style
var soundPalettes = map[SoundStyle]SoundPalette{
	StyleSynth:      {Melody: "gm_lead_2_sawtooth", MelodyGain: 0.8, Summary: "sawtooth lead with delay"},
	StylePiano:      {Melody: "gm_acoustic_grand_piano", MelodyGain: 1.0, Summary: "acoustic grand piano"},
	StyleOrchestral: {Melody: "gm_string_ensemble_1", MelodyGain: 1.0, Summary: "string ensemble"},
	StyleElectronic: {Melody: "gm_lead_1_square", MelodyGain: 0.7, Summary: "square lead"},
	StyleJazz:       {Melody: "gm_vibraphone", MelodyGain: 0.9, Summary: "vibraphone"},
	StyleLofi:       {Melody: "gm_electric_piano_2", MelodyGain: 0.9, Summary: "electric piano"},
}

var styleOrder = []SoundStyle{StyleSynth, StylePiano, StyleOrchestral, StyleElectronic, StyleJazz, StyleLofi}

// Generator converts compositions to Strudel code
type Generator struct {
	kit     DrumKit
	style   SoundStyle
	palette SoundPalette
}

// NewGenerator creates a generator with the default synth style
func NewGenerator(kit DrumKit) *Generator {
	return NewGeneratorWithStyle(kit, StyleSynth)
}

// NewGeneratorWithStyle creates a generator with specified sound style
func NewGeneratorWithStyle(kit DrumKit, style SoundStyle) *Generator {
	palette, ok := soundPalettes[style]
	if !ok {
		style = StyleSynth
		palette = soundPalettes[StyleSynth]
	}
	if _, ok := drumKits[kit]; !ok {
		kit = DrumKitTR808
	}
	return &Generator{
		kit:     kit,
		style:   style,
		palette: palette,
	}
}

// Generate creates Strudel code for the composition
func (g *Generator) Generate(c compose.Composition) string {
	var sb strings.Builder

	notes, drums := 0, 0
	for _, e := range c.Events {
		if e.HasNote {
			notes++
		}
		if e.IsDrum() {
			drums++
		}
	}

	// Header
	sb.WriteString("// codegroove output\n")
	sb.WriteString(fmt.Sprintf("// BPM: %d, Events: %d (notes: %d, drums: %d)\n", c.BPM, len(c.Events), notes, drums))
	sb.WriteString(fmt.Sprintf("// Style: %s, Drums: %s\n\n", g.style, g.kit))

	// Tempo: one cycle per bar
	sb.WriteString(fmt.Sprintf("setcps(%d/60/4)\n\n", c.BPM))

	if len(c.Events) == 0 {
		sb.WriteString("$: silence\n")
		return sb.String()
	}

	numBars := int(math.Ceil(float64(c.Length()) / compose.StepsPerBar))
	if numBars < 1 {
		numBars = 1
	}

	if notes > 0 {
		g.generateMelody(&sb, c, numBars, notes)
	}
	if drumCode := g.generateDrumPattern(c, numBars); drumCode != "" {
		if notes > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(drumCode)
	}

	return sb.String()
}

func (g *Generator) generateMelody(sb *strings.Builder, c compose.Composition, numBars, count int) {
	pattern := layoutBars(c.Events, numBars, func(e compose.Event) (string, int, bool) {
		if !e.HasNote {
			return "", 0, false
		}
		return noteName(e.Note), e.Duration.Steps(), true
	})
	velocities := layoutBars(c.Events, numBars, func(e compose.Event) (string, int, bool) {
		if !e.HasNote {
			return "", 0, false
		}
		v := math.Min(1, e.Velocity)
		return fmt.Sprintf("%.2f", v), e.Duration.Steps(), true
	})

	sb.WriteString(fmt.Sprintf("// melody (%d notes)\n", count))
	sb.WriteString(fmt.Sprintf("$: note(\"%s\")\n", pattern))
	sb.WriteString(fmt.Sprintf("  .sound(\"%s\")\n", g.palette.Melody))
	sb.WriteString(fmt.Sprintf("  .velocity(\"%s\")\n", velocities))
	if g.palette.MelodyGain != 1.0 {
		sb.WriteString(fmt.Sprintf("  .gain(%.1f)\n", g.palette.MelodyGain))
	}
	sb.WriteString("  .delay(0.2).room(0.5)\n")
}

// layoutBars places the tokens chosen by pick on a 16-slot-per-bar grid.
// A token spanning several slots is elongated with "@n"; gaps become rests.
// Multiple bars alternate one per cycle with "<...>".
func layoutBars(events []compose.Event, numBars int, pick func(compose.Event) (string, int, bool)) string {
	bars := make([][]string, numBars)
	cursors := make([]int, numBars)
	for i := range cursors {
		cursors[i] = i * compose.StepsPerBar
	}

	for _, e := range events {
		token, span, ok := pick(e)
		if !ok {
			continue
		}
		bar := e.Step / compose.StepsPerBar
		if bar >= numBars {
			continue
		}
		barEnd := (bar + 1) * compose.StepsPerBar
		if gap := e.Step - cursors[bar]; gap > 0 {
			bars[bar] = append(bars[bar], restToken(gap))
		}
		if e.Step+span > barEnd {
			span = barEnd - e.Step
		}
		bars[bar] = append(bars[bar], elongate(token, span))
		cursors[bar] = e.Step + span
	}

	rendered := make([]string, numBars)
	for i := range bars {
		barEnd := (i + 1) * compose.StepsPerBar
		if len(bars[i]) == 0 {
			rendered[i] = "~"
			continue
		}
		if gap := barEnd - cursors[i]; gap > 0 {
			bars[i] = append(bars[i], restToken(gap))
		}
		rendered[i] = strings.Join(bars[i], " ")
	}

	if numBars == 1 {
		return rendered[0]
	}
	return "<[" + strings.Join(rendered, "] [") + "]>"
}

func restToken(n int) string {
	return elongate("~", n)
}

func elongate(token string, n int) string {
	if n <= 1 {
		return token
	}
	return fmt.Sprintf("%s@%d", token, n)
}

// noteName converts a scale label to Strudel's lowercase sharp spelling
func noteName(label string) string {
	key, err := scales.ParsePitch(label)
	if err != nil {
		return strings.ToLower(label)
	}
	return scales.PitchName(key)
}

// Styles lists the melody styles, default first.
func Styles() []SoundStyle {
	return append([]SoundStyle(nil), styleOrder...)
}

// Description returns a short summary of the style's melody voice.
func (s SoundStyle) Description() string {
	return soundPalettes[s].Summary
}
