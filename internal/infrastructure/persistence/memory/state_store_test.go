package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

func TestStateStore(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore()

	_, err := store.Get(ctx, outbound.KeyFavorites)
	assert.ErrorIs(t, err, outbound.ErrStateNotFound)

	value := []byte(`["pollo"]`)
	require.NoError(t, store.Set(ctx, outbound.KeySelectedIngredients, value))
	value[0] = 'X'

	got, err := store.Get(ctx, outbound.KeySelectedIngredients)
	require.NoError(t, err)
	assert.Equal(t, `["pollo"]`, string(got))
	assert.ElementsMatch(t, []string{outbound.KeySelectedIngredients}, store.Keys())

	require.NoError(t, store.Delete(ctx, outbound.KeySelectedIngredients))
	_, err = store.Get(ctx, outbound.KeySelectedIngredients)
	assert.ErrorIs(t, err, outbound.ErrStateNotFound)
}
