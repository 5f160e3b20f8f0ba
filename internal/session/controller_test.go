package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LivingHistory/server/internal/characters"
	"LivingHistory/server/internal/config"
	"LivingHistory/server/internal/engine"
	"LivingHistory/server/internal/generators"
	"LivingHistory/server/internal/models"
	"LivingHistory/server/internal/storage"
)

type stubAssets struct{}

func (stubAssets) GenerateAvatar(_ context.Context, name, _, _ string) string {
	return "avatar://" + name
}

func (stubAssets) GenerateEnvironment(_ context.Context, location, _, _ string) string {
	return "env://" + location
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	logger := zap.NewNop()
	store := storage.NewMemoryStore()
	chars := characters.NewService(nil, logger)
	chain := generators.NewChain(generators.NewFallback(), logger)
	eng := engine.New(store, chars, chain, config.StoryConfig{EstimatedChoicePoints: 20, TraitBonus: 20}, logger)
	return NewController(eng, chars, stubAssets{}, logger)
}

type recorder struct {
	nodes    []*models.StoryNode
	choices  [][]models.Choice
	loading  []bool
	progress []Progress
	errors   []error
}

func record(c *Controller) *recorder {
	r := &recorder{}
	c.Events().OnNode(func(n *models.StoryNode) { r.nodes = append(r.nodes, n) })
	c.Events().OnChoices(func(cs []models.Choice) { r.choices = append(r.choices, cs) })
	c.Events().OnLoading(func(l bool) { r.loading = append(r.loading, l) })
	c.Events().OnProgress(func(p Progress) { r.progress = append(r.progress, p) })
	c.Events().OnError(func(err error) { r.errors = append(r.errors, err) })
	return r
}

func TestController_StartEmitsNodeChoicesProgress(t *testing.T) {
	c := newTestController(t)
	r := record(c)

	sl, err := c.Start(context.Background(), "1", models.CharacterHistorical, models.AccuracyAccurate, "")
	require.NoError(t, err)
	require.NotNil(t, sl)

	require.Len(t, r.nodes, 1)
	assert.Equal(t, sl.StartNodeID, r.nodes[0].ID)

	require.Len(t, r.choices, 1)
	assert.NotEmpty(t, r.choices[0])

	require.Len(t, r.progress, 1)
	assert.Equal(t, 0, r.progress[0].Percent)
	assert.False(t, r.progress[0].IsComplete)

	// Loading toggled on then off around the request.
	assert.Equal(t, []bool{true, false}, r.loading)
	assert.Empty(t, r.errors)
	assert.False(t, c.Loading())
}

func TestController_ChooseAdvancesAndEmits(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	sl, err := c.Start(ctx, "1", models.CharacterHistorical, models.AccuracyAccurate, "")
	require.NoError(t, err)

	r := record(c)

	start := sl.Nodes[sl.StartNodeID]
	require.NotEmpty(t, start.Choices)

	next, err := c.Choose(ctx, start.Choices[0].ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.NotEqual(t, sl.StartNodeID, next.ID)

	require.Len(t, r.nodes, 1)
	assert.Equal(t, next.ID, r.nodes[0].ID)
	require.Len(t, r.progress, 1)
	assert.Equal(t, 5, r.progress[0].Percent)
	assert.Equal(t, 1, r.progress[0].ChoicesMade)
}

func TestController_ChooseWithoutStorylineFails(t *testing.T) {
	c := newTestController(t)
	r := record(c)

	_, err := c.Choose(context.Background(), "any")
	assert.ErrorIs(t, err, engine.ErrNotFound)
	require.Len(t, r.errors, 1)
}

func TestController_ResumeRestoresPosition(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	sl, err := c.Start(ctx, "1", models.CharacterHistorical, models.AccuracyAccurate, "")
	require.NoError(t, err)

	node := sl.Nodes[sl.StartNodeID]
	for i := 0; i < 3; i++ {
		require.NotEmpty(t, node.Choices)
		next, err := c.Choose(ctx, node.Choices[0].ID)
		require.NoError(t, err)
		require.NotEqual(t, node.ID, next.ID)
		node = next
	}

	r := record(c)

	resumed, err := c.Resume(ctx, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, sl.ID, resumed.ID)

	// Resume lands on the successor of the last of the three taken
	// choices, not the start node or an earlier stop.
	require.Len(t, r.nodes, 1)
	assert.Equal(t, node.ID, r.nodes[0].ID)
	assert.NotEqual(t, sl.StartNodeID, r.nodes[0].ID)
	require.Len(t, r.progress, 1)
	assert.Equal(t, 3, r.progress[0].ChoicesMade)
}

func TestController_SupersededRequestSuppressesEvents(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	sl, err := c.Start(ctx, "1", models.CharacterHistorical, models.AccuracyAccurate, "")
	require.NoError(t, err)

	r := record(c)

	// Simulate a request overtaken by a newer one before it can present
	// its node: a later beginRequest bumps the epoch, so the earlier
	// request's emissions must be dropped.
	epoch := c.beginRequest()
	c.epoch.Add(1)

	require.NoError(t, c.presentNode(ctx, sl, sl.StartNodeID, epoch))
	c.endRequest()

	assert.Empty(t, r.nodes)
	assert.Empty(t, r.choices)
	assert.Empty(t, r.progress)
	assert.Empty(t, r.errors)
}

func TestController_SaveListDelete(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	sl, err := c.Start(ctx, "1", models.CharacterHistorical, models.AccuracyAccurate, "")
	require.NoError(t, err)

	require.NoError(t, c.Save(ctx, "My Save"))

	summaries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "My Save", summaries[0].Title)

	require.NoError(t, c.Delete(ctx, sl.ID))

	summaries, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	// Deleting the active storyline clears the session position.
	_, err = c.Choose(ctx, "whatever")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestController_PlayerStatsDecorated(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "1", models.CharacterHistorical, models.AccuracyAccurate, "")
	require.NoError(t, err)

	stats, err := c.PlayerStats(ctx, "")
	require.NoError(t, err)
	require.Len(t, stats, 5)

	byName := map[string]PlayerStat{}
	for _, s := range stats {
		byName[s.Name] = s
		assert.NotEmpty(t, s.Icon)
		assert.NotEmpty(t, s.Description)
	}
	assert.Equal(t, 90, byName["resolve"].Value)
	assert.Equal(t, 70, byName["compassion"].Value)
}

func TestController_RelationshipsLabeled(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	sl, err := c.Start(ctx, "1", models.CharacterHistorical, models.AccuracyAccurate, "")
	require.NoError(t, err)

	sl.Context.Relationships["Railway Officials"] = -45
	sl.Context.Relationships["Indian Community"] = 65

	rels, err := c.Relationships(ctx, sl.ID)
	require.NoError(t, err)
	require.Len(t, rels, 2)

	byName := map[string]Relationship{}
	for _, r := range rels {
		byName[r.Name] = r
	}
	assert.Equal(t, "strained", byName["Railway Officials"].Label)
	assert.Equal(t, "devoted", byName["Indian Community"].Label)
}

func TestController_NodeVisuals(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	sl, err := c.Start(ctx, "1", models.CharacterHistorical, models.AccuracyAccurate, "")
	require.NoError(t, err)

	visuals, err := c.NodeVisuals(ctx, sl.ID, sl.StartNodeID)
	require.NoError(t, err)
	assert.Equal(t, "avatar://Mahatma Gandhi", visuals.AvatarURL)
	assert.Contains(t, visuals.EnvironmentURL, "Pietermaritzburg")
}

func TestEmitter_UnsubscribeStopsDelivery(t *testing.T) {
	e := NewEmitter()

	var count int
	unsubscribe := e.OnLoading(func(bool) { count++ })

	e.emitLoading(true)
	unsubscribe()
	e.emitLoading(false)

	assert.Equal(t, 1, count)
}

func TestRelationshipLabel(t *testing.T) {
	assert.Equal(t, "devoted", relationshipLabel(80))
	assert.Equal(t, "friendly", relationshipLabel(30))
	assert.Equal(t, "neutral", relationshipLabel(0))
	assert.Equal(t, "strained", relationshipLabel(-40))
	assert.Equal(t, "hostile", relationshipLabel(-90))
}
