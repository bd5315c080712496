package selection

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/test/testutils"
)

// SelectionStoreTestSuite covers the ingredient selection store
type SelectionStoreTestSuite struct {
	suite.Suite
	ctx    context.Context
	state  *memory.StateStore
	events *testutils.EventRecorder
	store  *Store
}

// SetupTest creates a fresh store for every test
func (suite *SelectionStoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.state = memory.NewStateStore()
	suite.events = testutils.NewEventRecorder()
	suite.store = NewStore(suite.state, suite.events, monitoring.NewMetrics(), zap.NewNop())
}

func (suite *SelectionStoreTestSuite) persisted() []string {
	data, err := suite.state.Get(suite.ctx, outbound.KeySelectedIngredients)
	require.NoError(suite.T(), err)
	var items []string
	require.NoError(suite.T(), json.Unmarshal(data, &items))
	return items
}

// TestAdd tests insertion semantics
func (suite *SelectionStoreTestSuite) TestAdd() {
	suite.Run("Twice_ShouldBeIdempotent", func() {
		// Act
		first := suite.store.Add(suite.ctx, "pollo")
		second := suite.store.Add(suite.ctx, "pollo")

		// Assert
		assert.True(suite.T(), first)
		assert.False(suite.T(), second)
		assert.Equal(suite.T(), 1, suite.store.Count())
		assert.True(suite.T(), suite.store.Has("pollo"))
	})

	suite.Run("Whitespace_ShouldBeTrimmed", func() {
		// Act
		suite.store.Add(suite.ctx, "  tomate ")

		// Assert
		assert.True(suite.T(), suite.store.Has("tomate"))
		assert.False(suite.T(), suite.store.Add(suite.ctx, "tomate"))
		assert.False(suite.T(), suite.store.Add(suite.ctx, "   "))
	})

	suite.Run("Order_ShouldBePreservedAndPersisted", func() {
		// Act
		suite.store.Add(suite.ctx, "arroz")

		// Assert
		assert.Equal(suite.T(), []string{"pollo", "tomate", "arroz"}, suite.store.Items())
		assert.Equal(suite.T(), []string{"pollo", "tomate", "arroz"}, suite.persisted())
	})
}

// TestToggle tests single-tap select and deselect
func (suite *SelectionStoreTestSuite) TestToggle() {
	suite.Run("Twice_ShouldRestoreMembership", func() {
		// Act
		first := suite.store.Toggle(suite.ctx, "ajo")
		second := suite.store.Toggle(suite.ctx, "ajo")

		// Assert
		assert.Equal(suite.T(), inbound.ToggleAdded, first)
		assert.Equal(suite.T(), inbound.ToggleRemoved, second)
		assert.False(suite.T(), suite.store.Has("ajo"))
		assert.Equal(suite.T(), 0, suite.store.Count())
	})

	suite.Run("EmptyName_ShouldDoNothing", func() {
		assert.Equal(suite.T(), inbound.ToggleResult(""), suite.store.Toggle(suite.ctx, " "))
	})
}

// TestRemoveAndClear tests deletion
func (suite *SelectionStoreTestSuite) TestRemoveAndClear() {
	// Arrange
	suite.store.Add(suite.ctx, "pollo")
	suite.store.Add(suite.ctx, "tomate")

	// Act & Assert
	assert.False(suite.T(), suite.store.Remove(suite.ctx, "arroz"))
	assert.True(suite.T(), suite.store.Remove(suite.ctx, "pollo"))
	assert.Equal(suite.T(), []string{"tomate"}, suite.store.Items())

	suite.store.Clear(suite.ctx)
	assert.Equal(suite.T(), 0, suite.store.Count())
	assert.Empty(suite.T(), suite.persisted())
	assert.Equal(suite.T(), []string{
		EventSelectionChanged, EventSelectionChanged, EventSelectionChanged, EventSelectionChanged,
	}, suite.events.Names())

	last := suite.events.Events()[3].(SelectionChangedEvent)
	assert.Equal(suite.T(), ActionCleared, last.Action)
}

// TestCapacity tests the capacity queries
func (suite *SelectionStoreTestSuite) TestCapacity() {
	for _, name := range []string{"a", "b", "c", "d"} {
		suite.store.Add(suite.ctx, name)
	}

	assert.False(suite.T(), suite.store.CanAdd(4))
	assert.Equal(suite.T(), 0, suite.store.Remaining(4))
	assert.True(suite.T(), suite.store.CanAdd(5))
	assert.Equal(suite.T(), 1, suite.store.Remaining(5))
	assert.Equal(suite.T(), 0, suite.store.Remaining(2))

	// The store itself is unbounded
	assert.True(suite.T(), suite.store.Add(suite.ctx, "e"))
}

// TestItems_ReturnsCopy tests that callers cannot mutate the store
func (suite *SelectionStoreTestSuite) TestItems_ReturnsCopy() {
	suite.store.Add(suite.ctx, "pollo")

	items := suite.store.Items()
	items[0] = "changed"

	assert.True(suite.T(), suite.store.Has("pollo"))
}

// TestLoad tests rehydration from the state store
func (suite *SelectionStoreTestSuite) TestLoad() {
	suite.Run("Stored_ShouldRehydrate", func() {
		// Arrange
		require.NoError(suite.T(), suite.state.Set(suite.ctx, outbound.KeySelectedIngredients, []byte(`["pollo"," tomate","pollo",""]`)))
		store := NewStore(suite.state, nil, nil, zap.NewNop())

		// Act
		err := store.Load(suite.ctx)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []string{"pollo", "tomate"}, store.Items())
	})

	suite.Run("Nothing_ShouldKeepEmpty", func() {
		// Arrange
		store := NewStore(memory.NewStateStore(), nil, nil, zap.NewNop())

		// Act & Assert
		assert.NoError(suite.T(), store.Load(suite.ctx))
		assert.Equal(suite.T(), 0, store.Count())
	})

	suite.Run("Corrupt_ShouldReturnError", func() {
		// Arrange
		require.NoError(suite.T(), suite.state.Set(suite.ctx, outbound.KeySelectedIngredients, []byte(`{`)))

		// Act & Assert
		assert.Error(suite.T(), NewStore(suite.state, nil, nil, zap.NewNop()).Load(suite.ctx))
	})
}

// TestSelectionStoreTestSuite runs the selection store test suite
func TestSelectionStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SelectionStoreTestSuite))
}

func TestStore_PersistenceFailureIsNotSurfaced(t *testing.T) {
	state := &testutils.MockStateStore{}
	state.On("Set", mock.Anything, outbound.KeySelectedIngredients, mock.Anything).Return(errors.New("disk full"))
	store := NewStore(state, nil, nil, zap.NewNop())

	assert.True(t, store.Add(context.Background(), "pollo"))
	assert.True(t, store.Has("pollo"))
	state.AssertNumberOfCalls(t, "Set", 1)
}

func TestStore_WithoutStateStore(t *testing.T) {
	store := NewStore(nil, nil, nil, zap.NewNop())

	assert.Equal(t, inbound.ToggleAdded, store.Toggle(context.Background(), "pollo"))
	assert.NoError(t, store.Load(context.Background()))
	assert.Equal(t, []string{"pollo"}, store.Items())
}
