// Package vibe classifies catalog items into moods by keyword matching.
package vibe

import (
	"errors"
	"fmt"
	"strings"
)

// Vibe is a mood tag from the fixed taxonomy, or the All filter.
type Vibe string

const (
	All     Vibe = "All"
	Uptempo Vibe = "Uptempo"
	Jazzy   Vibe = "Jazzy"
	Chill   Vibe = "Chill"
	Nature  Vibe = "Nature"
)

// ErrUnknownVibe is returned by Parse for names outside the taxonomy.
var ErrUnknownVibe = errors.New("unknown vibe")

// Definition describes one vibe of the taxonomy.
type Definition struct {
	Name     Vibe
	Label    string
	Keywords []string
	// Color is a presentation hint (a gradient name) for front ends.
	Color string
}

// taxonomy is in declaration order; Classify reports matches in this order.
var taxonomy = [...]Definition{
	{
		Name:     Uptempo,
		Label:    "Uptempo (元気)",
		Keywords: []string{"remix", "up", "dance", "electro", "fast", "rock", "pop", "beat"},
		Color:    "from-orange-400 to-red-600",
	},
	{
		Name:     Jazzy,
		Label:    "Jazzy (おしゃれ)",
		Keywords: []string{"jazz", "piano", "saxophone", "lounge", "bossa", "smooth"},
		Color:    "from-blue-400 to-indigo-600",
	},
	{
		Name:     Chill,
		Label:    "Chill (ゆったり)",
		Keywords: []string{"chill", "lofi", "relax", "sleep", "study", "ambient", "soft"},
		Color:    "from-teal-400 to-emerald-600",
	},
	{
		Name:     Nature,
		Label:    "Nature (自然)",
		Keywords: []string{"nature", "forest", "rain", "ocean", "bird", "wind", "water"},
		Color:    "from-green-400 to-lime-600",
	},
}

// Definitions returns a copy of the taxonomy in declaration order.
func Definitions() []Definition {
	defs := make([]Definition, len(taxonomy))
	for i, d := range taxonomy {
		d.Keywords = append([]string(nil), d.Keywords...)
		defs[i] = d
	}
	return defs
}

// Lookup returns the definition for v. All has no definition.
func Lookup(v Vibe) (Definition, bool) {
	for _, d := range taxonomy {
		if d.Name == v {
			d.Keywords = append([]string(nil), d.Keywords...)
			return d, true
		}
	}
	return Definition{}, false
}

// Filters returns All followed by every taxonomy vibe.
func Filters() []Vibe {
	out := make([]Vibe, 0, len(taxonomy)+1)
	out = append(out, All)
	for _, d := range taxonomy {
		out = append(out, d.Name)
	}
	return out
}

// Parse resolves a case-insensitive vibe name, including "all".
func Parse(s string) (Vibe, error) {
	name := strings.TrimSpace(s)
	if strings.EqualFold(name, string(All)) {
		return All, nil
	}
	for _, d := range taxonomy {
		if strings.EqualFold(name, string(d.Name)) {
			return d.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVibe, s)
}

// Valid reports whether v is All or a taxonomy vibe.
func (v Vibe) Valid() bool {
	if v == All {
		return true
	}
	_, ok := Lookup(v)
	return ok
}

// Label returns the display label, or "All" for the pseudo-vibe.
func (v Vibe) Label() string {
	if d, ok := Lookup(v); ok {
		return d.Label
	}
	return string(v)
}
