package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
	"github.com/alchemorsel/pantry/test/testutils"
)

type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) State() inbound.SessionState {
	return m.Called().Get(0).(inbound.SessionState)
}

func (m *mockSyncer) UpdateFavorites(ctx context.Context, recipeIDs []string) error {
	return m.Called(ctx, recipeIDs).Error(0)
}

func TestStore_AddRemoveToggle(t *testing.T) {
	ctx := context.Background()
	recipes := testutils.NewRecipeFactory(1).Recipes(2)
	events := testutils.NewEventRecorder()
	store := NewStore(nil, memory.NewStateStore(), events, zap.NewNop())

	assert.True(t, store.Add(ctx, recipes[0]))
	assert.False(t, store.Add(ctx, recipes[0]))
	assert.False(t, store.Add(ctx, recipe.Recipe{Name: "no id"}))
	assert.Equal(t, inbound.ToggleAdded, store.Toggle(ctx, recipes[1]))
	assert.Equal(t, []string{recipes[0].ID, recipes[1].ID}, store.IDs())

	assert.Equal(t, inbound.ToggleRemoved, store.Toggle(ctx, recipes[0]))
	assert.False(t, store.Has(recipes[0].ID))
	assert.True(t, store.Has(recipes[1].ID))
	assert.False(t, store.Remove(ctx, "missing"))

	assert.Len(t, events.Events(), 3)
}

func TestStore_ConcurrentToggleAlternates(t *testing.T) {
	ctx := context.Background()
	r := testutils.NewRecipeFactory(3).Recipe("pollo")
	store := NewStore(nil, memory.NewStateStore(), nil, zap.NewNop())

	const toggles = 50
	results := make(chan inbound.ToggleResult, toggles)
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Toggle(ctx, r)
		}()
	}
	wg.Wait()
	close(results)

	counts := map[inbound.ToggleResult]int{}
	for result := range results {
		counts[result]++
	}
	assert.Equal(t, toggles/2, counts[inbound.ToggleAdded])
	assert.Equal(t, toggles/2, counts[inbound.ToggleRemoved])
	assert.False(t, store.Has(r.ID))
	assert.Empty(t, store.IDs())
}

func TestStore_ListReturnsCopy(t *testing.T) {
	store := NewStore(nil, nil, nil, zap.NewNop())
	r := testutils.NewRecipeFactory(2).Recipe()
	store.Add(context.Background(), r)

	list := store.List()
	list[0].Name = "changed"

	assert.Equal(t, r.Name, store.List()[0].Name)
	assert.Empty(t, NewStore(nil, nil, nil, zap.NewNop()).List())
}

func TestStore_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	state := memory.NewStateStore()
	recipes := testutils.NewRecipeFactory(3).Recipes(3)

	first := NewStore(nil, state, nil, zap.NewNop())
	for _, r := range recipes {
		first.Add(ctx, r)
	}
	first.Remove(ctx, recipes[1].ID)

	second := NewStore(nil, state, nil, zap.NewNop())
	require.NoError(t, second.Load(ctx))

	assert.Equal(t, []string{recipes[0].ID, recipes[2].ID}, second.IDs())
	assert.Equal(t, recipes[2].Steps, second.List()[1].Steps)
}

func TestStore_Sync(t *testing.T) {
	ctx := context.Background()
	r := testutils.NewRecipeFactory(4).Recipe()

	t.Run("Authenticated_ShouldPushIDs", func(t *testing.T) {
		syncer := &mockSyncer{}
		syncer.On("State").Return(inbound.SessionState{IsAuthenticated: true})
		syncer.On("UpdateFavorites", mock.Anything, []string{r.ID}).Return(nil).Once()
		store := NewStore(syncer, nil, nil, zap.NewNop())
		store.Add(ctx, r)

		require.NoError(t, store.Sync(ctx))
		syncer.AssertExpectations(t)
	})

	t.Run("Anonymous_ShouldSkip", func(t *testing.T) {
		syncer := &mockSyncer{}
		syncer.On("State").Return(inbound.SessionState{})
		store := NewStore(syncer, nil, nil, zap.NewNop())
		store.Add(ctx, r)

		require.NoError(t, store.Sync(ctx))
		syncer.AssertNotCalled(t, "UpdateFavorites", mock.Anything, mock.Anything)
	})

	t.Run("Failure_ShouldReturnAppError", func(t *testing.T) {
		syncer := &mockSyncer{}
		syncer.On("State").Return(inbound.SessionState{IsAuthenticated: true})
		syncer.On("UpdateFavorites", mock.Anything, mock.Anything).Return(errors.New("boom"))
		store := NewStore(syncer, nil, nil, zap.NewNop())

		testutils.AssertAppError(t, store.Sync(ctx), apperrors.CodeInternal)
	})
}
