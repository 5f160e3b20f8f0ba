package generators

import (
	"context"

	"go.uber.org/zap"

	"LivingHistory/server/internal/models"
)

// Chain tries each configured backend in order and falls through to the
// deterministic fallback, so generation as a whole never fails. Backend
// errors and structurally invalid payloads are logged and swallowed.
type Chain struct {
	backends []SceneGenerator
	fallback *Fallback
	logger   *zap.Logger
}

func NewChain(fallback *Fallback, logger *zap.Logger, backends ...SceneGenerator) *Chain {
	return &Chain{
		backends: backends,
		fallback: fallback,
		logger:   logger,
	}
}

// Generate returns the first structurally valid backend result, or the
// fallback's. The returned scene is always valid.
func (c *Chain) Generate(ctx context.Context, character *models.Character, pc PromptContext) *models.StructuredScene {
	for _, backend := range c.backends {
		scene, err := backend.Generate(ctx, character, pc)
		if err != nil {
			c.logger.Warn("scene backend failed, trying next",
				zap.String("backend", backend.Name()),
				zap.Error(err))
			continue
		}
		if !scene.Valid() || (pc.WantChoices && len(scene.Choices) == 0) {
			c.logger.Warn("scene backend returned malformed payload, trying next",
				zap.String("backend", backend.Name()))
			continue
		}
		return scene
	}
	return c.fallback.Scene(character, pc)
}
