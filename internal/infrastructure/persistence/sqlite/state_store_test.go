package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

func TestStateStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := SetupDatabase(filepath.Join(t.TempDir(), "state.db"), logger.Silent)
	require.NoError(t, err)
	store := NewStateStore(db, zap.NewNop())

	_, err = store.Get(ctx, outbound.KeySession)
	assert.ErrorIs(t, err, outbound.ErrStateNotFound)

	require.NoError(t, store.Set(ctx, outbound.KeySession, []byte(`{"token":"a"}`)))
	require.NoError(t, store.Set(ctx, outbound.KeySession, []byte(`{"token":"b"}`)))

	got, err := store.Get(ctx, outbound.KeySession)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"b"}`, string(got))

	var count int64
	require.NoError(t, db.Model(&StateModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.Delete(ctx, outbound.KeySession))
	_, err = store.Get(ctx, outbound.KeySession)
	assert.ErrorIs(t, err, outbound.ErrStateNotFound)
}

func TestStateStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := SetupDatabase(path, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, NewStateStore(db, zap.NewNop()).Set(ctx, outbound.KeyFavorites, []byte(`[]`)))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	reopened, err := SetupDatabase(path, logger.Silent)
	require.NoError(t, err)
	got, err := NewStateStore(reopened, zap.NewNop()).Get(ctx, outbound.KeyFavorites)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}
