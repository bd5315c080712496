package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
)

func writeConfig(t *testing.T, body string) ConfigPath {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pantry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return ConfigPath(path)
}

func TestModule_WiresMemoryStack(t *testing.T) {
	var (
		sel     inbound.SelectionStore
		sess    inbound.SessionStore
		srch    inbound.SearchStore
		favs    inbound.FavoritesStore
		state   outbound.StateStore
		health  *healthcheck.HealthCheck
		storage *Storage
	)

	app := fxtest.New(t,
		fx.Supply(writeConfig(t, "app:\n  log_level: error\nstorage:\n  driver: memory\n")),
		Module,
		fx.Populate(&sel, &sess, &srch, &favs, &state, &health, &storage),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, "memory", storage.Backend)
	assert.Nil(t, storage.Redis)
	assert.True(t, sel.Add(context.Background(), "pollo"))
	assert.False(t, sess.State().IsAuthenticated)
	assert.Equal(t, inbound.SearchIdle, srch.State().Status)
	assert.Empty(t, favs.List())

	raw, err := state.Get(context.Background(), outbound.KeySelectedIngredients)
	require.NoError(t, err)
	assert.JSONEq(t, `["pollo"]`, string(raw))
}

func TestModule_SQLiteStorage(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	var storage *Storage

	app := fxtest.New(t,
		fx.Supply(writeConfig(t, "app:\n  log_level: error\nstorage:\n  driver: sqlite\n  sqlite_path: "+dbPath+"\n")),
		Module,
		fx.Populate(&storage),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, "sqlite", storage.Backend)
	assert.NotNil(t, storage.DB)
	assert.FileExists(t, dbPath)
}

func TestBackendHealthURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8787/api/auth":  "http://localhost:8787/health",
		"http://localhost:8787/api/auth/": "http://localhost:8787/health",
		"https://api.example.com":         "https://api.example.com/health",
	}

	for base, want := range tests {
		cfg := &config.Config{API: config.APIConfig{AuthBaseURL: base}}
		assert.Equal(t, want, BackendHealthURL(cfg), base)
	}
}
