package engine

import "strings"

// The five base attributes every storyline starts with.
var baseAttributes = []string{"influence", "resolve", "intellect", "charisma", "compassion"}

// traitAttribute maps recognized trait keywords to the attribute they boost.
// Unrecognized traits contribute nothing.
var traitAttribute = map[string]string{
	"determined":    "resolve",
	"resilient":     "resolve",
	"principled":    "resolve",
	"intelligent":   "intellect",
	"analytical":    "intellect",
	"brilliant":     "intellect",
	"charismatic":   "charisma",
	"diplomatic":    "charisma",
	"inspiring":     "charisma",
	"compassionate": "compassion",
	"spiritual":     "compassion",
	"empathetic":    "compassion",
	"influential":   "influence",
	"powerful":      "influence",
	"strategic":     "influence",
}

// initialAttributes seeds the five base attributes at 50 and applies the
// trait bonus for each recognized trait keyword, clamped to [0,100].
func initialAttributes(traits []string, bonus int) map[string]int {
	attrs := make(map[string]int, len(baseAttributes))
	for _, name := range baseAttributes {
		attrs[name] = 50
	}

	for _, trait := range traits {
		if attr, ok := traitAttribute[strings.ToLower(trait)]; ok {
			attrs[attr] += bonus
		}
	}

	for name, value := range attrs {
		attrs[name] = clampAttribute(value)
	}
	return attrs
}

func clampAttribute(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampRelationship(v int) int {
	if v < -100 {
		return -100
	}
	if v > 100 {
		return 100
	}
	return v
}
