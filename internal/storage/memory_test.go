package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetRemove(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "storyline_abc", `{"id":"abc"}`))

	got, err := store.Get(ctx, "storyline_abc")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"abc"}`, got)

	require.NoError(t, store.Set(ctx, "storyline_abc", `{"id":"abc","title":"t"}`))
	got, err = store.Get(ctx, "storyline_abc")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"abc","title":"t"}`, got)

	require.NoError(t, store.Remove(ctx, "storyline_abc"))
	_, err = store.Get(ctx, "storyline_abc")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Removing a missing key is not an error.
	assert.NoError(t, store.Remove(ctx, "storyline_abc"))
}

func TestMemoryStore_ListKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "storyline_1", "a"))
	require.NoError(t, store.Set(ctx, "storyline_2", "b"))
	require.NoError(t, store.Set(ctx, "avatar_gandhi", "c"))

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"storyline_1", "storyline_2", "avatar_gandhi"}, keys)
}
