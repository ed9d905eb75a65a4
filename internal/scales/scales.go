// Package scales holds the named pitch palettes a composition draws its notes
// from. Scales are ordered low to high; indentation depth indexes into them.
package scales

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	cgerrors "github.com/dygy/codegroove/internal/errors"
)

// Scale is a named, ordered sequence of pitch labels such as "D3".
type Scale struct {
	Name  string   `json:"name"`
	Notes []string `json:"notes"`
}

// Len returns the number of pitches in the scale.
func (s Scale) Len() int { return len(s.Notes) }

// Validate checks that the scale is non-empty and every label parses.
func (s Scale) Validate() error {
	if len(s.Notes) == 0 {
		return fmt.Errorf("%s: %w", s.Name, cgerrors.ErrEmptyScale)
	}
	for _, label := range s.Notes {
		if _, err := ParsePitch(label); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}

// Built-in scale names
const (
	NameDorian        = "Dorian"
	NamePentatonic    = "Pentatonic"
	NameBlues         = "Blues"
	NameHarmonicMinor = "Harmonic-Minor"
	NameMajor         = "Major"
)

// DefaultName is used when no scale is requested.
const DefaultName = NameDorian

// D minor dorian, stretched over two octaves
var Dorian = Scale{
	Name:  NameDorian,
	Notes: []string{"D3", "E3", "F3", "G3", "A3", "B3", "C4", "D4", "E4", "F4", "A4", "C5"},
}

var Pentatonic = Scale{
	Name:  NamePentatonic,
	Notes: []string{"C3", "Eb3", "F3", "G3", "Bb3", "C4", "Eb4", "F4", "G4"},
}

var Blues = Scale{
	Name:  NameBlues,
	Notes: []string{"C3", "Eb3", "F3", "F#3", "G3", "Bb3", "C4", "Eb4", "F4", "F#4", "G4", "Bb4"},
}

// A harmonic minor
var HarmonicMinor = Scale{
	Name:  NameHarmonicMinor,
	Notes: []string{"A2", "B2", "C3", "D3", "E3", "F3", "G#3", "A3", "B3", "C4", "D4", "E4"},
}

var Major = Scale{
	Name:  NameMajor,
	Notes: []string{"C3", "D3", "E3", "F3", "G3", "A3", "B3", "C4", "D4", "E4", "F4", "G4"},
}

// Builtin returns the built-in scales in display order.
func Builtin() []Scale {
	return []Scale{Dorian, Pentatonic, Blues, HarmonicMinor, Major}
}

// Default returns the default scale.
func Default() Scale {
	return Dorian
}

// Normalize folds a scale name for lookup: case, '-', '_' and spaces are ignored.
func Normalize(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case '-', '_', ' ':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Registry maps scale names to scales. The zero value is not usable; call
// NewRegistry.
type Registry struct {
	mu     sync.RWMutex
	scales map[string]Scale
	def    string
}

// NewRegistry creates a registry preloaded with the built-in scales.
func NewRegistry() *Registry {
	r := &Registry{
		scales: make(map[string]Scale),
		def:    Normalize(DefaultName),
	}
	for _, s := range Builtin() {
		r.scales[Normalize(s.Name)] = s
	}
	return r
}

// Add registers a scale, replacing any scale with the same normalized name.
func (r *Registry) Add(s Scale) error {
	if err := s.Validate(); err != nil {
		return err
	}
	notes := make([]string, len(s.Notes))
	copy(notes, s.Notes)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scales[Normalize(s.Name)] = Scale{Name: s.Name, Notes: notes}
	return nil
}

// SetDefault changes the scale returned for an empty name.
func (r *Registry) SetDefault(name string) error {
	if _, err := r.Lookup(name); err != nil {
		return err
	}
	r.mu.Lock()
	r.def = Normalize(name)
	r.mu.Unlock()
	return nil
}

// Lookup returns the scale registered under name. An empty name selects the
// default scale.
func (r *Registry) Lookup(name string) (Scale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := Normalize(name)
	if key == "" {
		key = r.def
	}
	s, ok := r.scales[key]
	if !ok {
		return Scale{}, fmt.Errorf("%q: %w", name, cgerrors.ErrUnknownScale)
	}
	return s, nil
}

// All returns every registered scale, sorted by name.
func (r *Registry) All() []Scale {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Scale, 0, len(r.scales))
	for _, s := range r.scales {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return Normalize(out[i].Name) < Normalize(out[j].Name)
	})
	return out
}

var builtinRegistry = NewRegistry()

// Lookup finds a built-in scale by name.
func Lookup(name string) (Scale, error) {
	return builtinRegistry.Lookup(name)
}
