package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"LivingHistory/server/internal/models"
)

func TestInitialAttributes_TraitBonuses(t *testing.T) {
	attrs := initialAttributes([]string{"determined", "principled", "spiritual", "non-violent"}, 20)

	assert.Equal(t, 90, attrs["resolve"])
	assert.Equal(t, 70, attrs["compassion"])
	assert.Equal(t, 50, attrs["intellect"])
	assert.Equal(t, 50, attrs["influence"])
	assert.Equal(t, 50, attrs["charisma"])
}

func TestInitialAttributes_CaseInsensitive(t *testing.T) {
	attrs := initialAttributes([]string{"Brilliant"}, 20)
	assert.Equal(t, 70, attrs["intellect"])
}

func TestInitialAttributes_ClampedAtCeiling(t *testing.T) {
	attrs := initialAttributes([]string{"determined", "resilient", "principled"}, 20)
	assert.Equal(t, 100, attrs["resolve"])
}

func TestClampAttribute(t *testing.T) {
	assert.Equal(t, 0, clampAttribute(-5))
	assert.Equal(t, 0, clampAttribute(0))
	assert.Equal(t, 57, clampAttribute(57))
	assert.Equal(t, 100, clampAttribute(100))
	assert.Equal(t, 100, clampAttribute(140))
}

func TestClampRelationship(t *testing.T) {
	assert.Equal(t, -100, clampRelationship(-130))
	assert.Equal(t, -40, clampRelationship(-40))
	assert.Equal(t, 100, clampRelationship(180))
}

func TestApplyConsequences_DefaultsAndClamping(t *testing.T) {
	eng, _ := newTestEngine(t)
	sl := startGandhi(t, eng)
	ctx := &sl.Context

	// An attribute never seen before starts from the neutral baseline.
	applyConsequences(ctx, consequencesWith(map[string]int{"notoriety": 7}, nil))
	assert.Equal(t, 57, ctx.Attributes["notoriety"])

	// Repeated boosts saturate at the ceiling instead of overflowing.
	for i := 0; i < 10; i++ {
		applyConsequences(ctx, consequencesWith(map[string]int{"notoriety": 20}, nil))
	}
	assert.Equal(t, 100, ctx.Attributes["notoriety"])

	// Relationships default to neutral zero and clamp at the floor.
	applyConsequences(ctx, consequencesWith(nil, map[string]int{"Railway Officials": -30}))
	assert.Equal(t, -30, ctx.Relationships["Railway Officials"])
	for i := 0; i < 10; i++ {
		applyConsequences(ctx, consequencesWith(nil, map[string]int{"Railway Officials": -30}))
	}
	assert.Equal(t, -100, ctx.Relationships["Railway Officials"])
}

func consequencesWith(attrs, rels map[string]int) models.Consequences {
	return models.Consequences{AffectsAttributes: attrs, AffectsRelationships: rels}
}
