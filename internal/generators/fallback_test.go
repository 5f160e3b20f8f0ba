package generators

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LivingHistory/server/internal/models"
)

func testCharacter(name string) *models.Character {
	return &models.Character{
		ID:     "test",
		Type:   models.CharacterHistorical,
		Name:   name,
		Era:    "19th Century",
		Traits: []string{"determined"},
	}
}

func TestFallback_AlwaysProducesValidScene(t *testing.T) {
	f := NewFallback()

	characters := []*models.Character{
		testCharacter("Mahatma Gandhi"),
		testCharacter("Marie Curie"),
		testCharacter("Abraham Lincoln"),
		testCharacter("Nobody In Particular"),
		{Name: "", Era: ""},
	}
	contexts := []PromptContext{
		{},
		{WantChoices: true},
		{Year: "1893", Situation: "Train Incident in South Africa", WantChoices: true},
		{Event: &models.HistoricalEvent{Title: "Some Event", Description: "Something happened."}},
		{ChoiceTaken: &models.Choice{Text: "Do something"}},
		{ChoiceTaken: &models.Choice{Text: "Do something"}, WantChoices: true},
	}

	for i, character := range characters {
		for j, pc := range contexts {
			t.Run(fmt.Sprintf("character_%d_context_%d", i, j), func(t *testing.T) {
				scene := f.Scene(character, pc)
				require.NotNil(t, scene)
				assert.True(t, scene.Valid(), "scene must carry narration text")
				if pc.WantChoices {
					assert.NotEmpty(t, scene.Choices)
				}
			})
		}
	}
}

func TestFallback_GandhiTrainIncidentScene(t *testing.T) {
	f := NewFallback()

	scene := f.Scene(testCharacter("Mahatma Gandhi"), PromptContext{
		Year:     "1893",
		Event:    &models.HistoricalEvent{Title: "Train Incident in South Africa", Date: "1893"},
		Accuracy: models.AccuracyAccurate,
	})

	require.NotNil(t, scene.Metadata)
	assert.Equal(t, "1893", scene.Metadata.Year)
	assert.Contains(t, scene.Metadata.HistoricalEvent, "Train Incident")
	assert.True(t, scene.Metadata.IsKeyMoment)
	assert.Contains(t, scene.NarrationText(), "Pietermaritzburg")
}

func TestFallback_GandhiTrainChoices(t *testing.T) {
	f := NewFallback()

	choices := f.ChoiceSet(testCharacter("Mahatma Gandhi"), PromptContext{
		Situation: "Train Incident in South Africa",
	})

	require.Len(t, choices, 3)
	var refusal *models.Choice
	for i := range choices {
		if choices[i].Text == "Refuse to move, citing your valid first-class ticket" {
			refusal = &choices[i]
		}
	}
	require.NotNil(t, refusal)
	assert.Equal(t, models.ChoiceAccurate, refusal.HistoricalAccuracy)
	assert.Equal(t, 10, refusal.Consequences.AffectsAttributes["resolve"])

	for _, c := range choices {
		assert.NotEmpty(t, c.ID)
		assert.False(t, c.LeadsTo.IsResolved(), "fresh choices start unbound")
	}
}

func TestFallback_FollowUpSceneForRefusal(t *testing.T) {
	f := NewFallback()

	scene := f.Scene(testCharacter("Mahatma Gandhi"), PromptContext{
		Situation:   "Train Incident in South Africa",
		ChoiceTaken: &models.Choice{Text: "Refuse to move, citing your valid first-class ticket"},
	})

	assert.Contains(t, scene.NarrationText(), "forcibly")
	require.NotNil(t, scene.Metadata)
	assert.Equal(t, models.ToneSomber, scene.Metadata.EmotionalTone)
	assert.True(t, scene.Metadata.IsKeyMoment)
}

func TestGenericChoices_AccuracyShapesBoldOption(t *testing.T) {
	accurate := genericChoices(models.AccuracyAccurate)
	creative := genericChoices(models.AccuracyCreative)

	require.Len(t, accurate, 3)
	require.Len(t, creative, 3)
	assert.Equal(t, models.ChoiceSomewhatAccurate, accurate[1].HistoricalAccuracy)
	assert.Equal(t, models.ChoiceCreative, creative[1].HistoricalAccuracy)
}

func TestYearOf(t *testing.T) {
	assert.Equal(t, "1893", YearOf("1893"))
	assert.Equal(t, "1914", YearOf("1914-1918"))
	assert.Equal(t, "unknown", YearOf("unknown"))
}

func TestEraYear(t *testing.T) {
	assert.Equal(t, "1850 CE", EraYear("19th Century"))
	assert.Equal(t, "1891", EraYear("Late 19th Century (1891)"))
	assert.Equal(t, "unknown year", EraYear("Mysterious Times"))
}

func TestLocationOf(t *testing.T) {
	event := &models.HistoricalEvent{
		Title:       "Train Incident in South Africa",
		Description: "Thrown off a train at Pietermaritzburg",
	}
	assert.Equal(t, "South Africa", LocationOf(event))

	assert.Equal(t, "unknown location", LocationOf(&models.HistoricalEvent{Title: "Nowhere"}))
}
