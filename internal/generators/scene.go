package generators

import (
	"context"

	"LivingHistory/server/internal/models"
)

// PromptContext is everything a backend may use to produce a scene: where and
// when the story currently is, the event being dramatized (if any), and the
// text of the node and choice the player is coming from.
type PromptContext struct {
	Year      string
	Location  string
	Situation string
	Accuracy  models.Accuracy

	// Event is set when the scene dramatizes a specific key event.
	Event *models.HistoricalEvent

	// PreviousText and ChoiceTaken are set for next-node generation.
	PreviousText string
	ChoiceTaken  *models.Choice

	// WantChoices asks the backend to include a choice set in the scene.
	WantChoices bool

	Attributes map[string]int
}

// SceneGenerator produces structured narrative content. Implementations may
// fail; the chain skips failures and the deterministic fallback never fails.
type SceneGenerator interface {
	Name() string
	Generate(ctx context.Context, character *models.Character, pc PromptContext) (*models.StructuredScene, error)
}
