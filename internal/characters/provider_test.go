package characters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LivingHistory/server/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(nil, zap.NewNop())
}

func TestHistorical_Roster(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	gandhi, err := s.Historical(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Mahatma Gandhi", gandhi.Name)
	assert.Equal(t, models.CharacterHistorical, gandhi.Type)
	require.NotEmpty(t, gandhi.KeyEvents)
	assert.Equal(t, "1893", gandhi.KeyEvents[0].Date)

	curie, err := s.Historical(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Marie Curie", curie.Name)

	lincoln, err := s.Historical(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Abraham Lincoln", lincoln.Name)

	_, err = s.Historical(ctx, "99")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestCustom_NoDatabase(t *testing.T) {
	s := newTestService(t)

	_, err := s.Custom(context.Background(), "custom-123")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestAllHistorical_StableOrder(t *testing.T) {
	s := newTestService(t)

	all := s.AllHistorical()
	require.Len(t, all, 3)
	assert.Equal(t, "Mahatma Gandhi", all[0].Name)
	assert.Equal(t, "Marie Curie", all[1].Name)
	assert.Equal(t, "Abraham Lincoln", all[2].Name)
}

func TestSearchHistorical(t *testing.T) {
	s := newTestService(t)

	assert.Len(t, s.SearchHistorical(""), 3)

	byName := s.SearchHistorical("curie")
	require.Len(t, byName, 1)
	assert.Equal(t, "Marie Curie", byName[0].Name)

	byTrait := s.SearchHistorical("determined")
	require.Len(t, byTrait, 2)

	assert.Empty(t, s.SearchHistorical("napoleon"))
}

func TestFilterHistoricalByEra(t *testing.T) {
	s := newTestService(t)

	assert.Len(t, s.FilterHistoricalByEra("all"), 3)
	assert.Len(t, s.FilterHistoricalByEra(""), 3)

	twentieth := s.FilterHistoricalByEra("20th Century")
	// Curie's era label spans into the early 20th century.
	require.Len(t, twentieth, 2)
	assert.Equal(t, "Mahatma Gandhi", twentieth[0].Name)

	nineteenth := s.FilterHistoricalByEra("19th")
	require.Len(t, nineteenth, 2)

	assert.Empty(t, s.FilterHistoricalByEra("Bronze Age"))
}
