package generators

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LivingHistory/server/internal/models"
)

type stubGenerator struct {
	name  string
	scene *models.StructuredScene
	err   error
	calls int
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(_ context.Context, _ *models.Character, _ PromptContext) (*models.StructuredScene, error) {
	s.calls++
	return s.scene, s.err
}

func validScene(text string) *models.StructuredScene {
	return &models.StructuredScene{
		Fragments: []models.SceneFragment{{Kind: models.KindNarration, Text: text}},
		Metadata:  &models.NodeMetadata{Year: "1900"},
	}
}

func TestChain_FirstHealthyBackendWins(t *testing.T) {
	first := &stubGenerator{name: "first", scene: validScene("from first")}
	second := &stubGenerator{name: "second", scene: validScene("from second")}
	chain := NewChain(NewFallback(), zap.NewNop(), first, second)

	scene := chain.Generate(context.Background(), testCharacter("Mahatma Gandhi"), PromptContext{})

	assert.Equal(t, "from first", scene.NarrationText())
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChain_SkipsFailingBackend(t *testing.T) {
	failing := &stubGenerator{name: "failing", err: errors.New("backend down")}
	healthy := &stubGenerator{name: "healthy", scene: validScene("rescued")}
	chain := NewChain(NewFallback(), zap.NewNop(), failing, healthy)

	scene := chain.Generate(context.Background(), testCharacter("Mahatma Gandhi"), PromptContext{})

	assert.Equal(t, "rescued", scene.NarrationText())
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
}

func TestChain_SkipsSceneWithoutChoicesWhenRequired(t *testing.T) {
	// Structurally fine, but no choices even though the caller needs them.
	choiceless := &stubGenerator{name: "choiceless", scene: validScene("no options here")}
	chain := NewChain(NewFallback(), zap.NewNop(), choiceless)

	scene := chain.Generate(context.Background(), testCharacter("Mahatma Gandhi"), PromptContext{WantChoices: true})

	require.NotEmpty(t, scene.Choices)
	assert.NotEqual(t, "no options here", scene.NarrationText())
}

func TestChain_AllBackendsFailingStillProducesScene(t *testing.T) {
	down := &stubGenerator{name: "down", err: errors.New("unreachable")}
	alsoDown := &stubGenerator{name: "also-down", err: errors.New("unreachable")}
	chain := NewChain(NewFallback(), zap.NewNop(), down, alsoDown)

	scene := chain.Generate(context.Background(), testCharacter("Nobody In Particular"), PromptContext{WantChoices: true})

	require.NotNil(t, scene)
	assert.True(t, scene.Valid())
	assert.NotEmpty(t, scene.Choices)
}

func TestChain_NoBackendsUsesFallback(t *testing.T) {
	chain := NewChain(NewFallback(), zap.NewNop())

	scene := chain.Generate(context.Background(), testCharacter("Marie Curie"), PromptContext{WantChoices: true})

	require.NotNil(t, scene)
	assert.True(t, scene.Valid())
	assert.NotEmpty(t, scene.Choices)
}
