package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/stubserver"
)

// CLITestSuite runs the commands against the stub backend with SQLite
// storage, so state carries over between invocations
type CLITestSuite struct {
	suite.Suite
	server     *httptest.Server
	configPath string
}

// SetupTest writes a config pointing at a fresh stub backend
func (suite *CLITestSuite) SetupTest() {
	stub := stubserver.New(stubserver.Options{
		SigningKey: []byte("cli-test-key"),
		TokenTTL:   time.Hour,
	}, zap.NewNop())
	require.NoError(suite.T(), stub.AddUser(user.User{Name: "Ana", Email: "ana@example.com"}, "secret123"))
	suite.server = httptest.NewServer(stub.Handler())

	dir := suite.T().TempDir()
	suite.configPath = filepath.Join(dir, "pantry.yaml")
	body := fmt.Sprintf(`app:
  log_level: error
api:
  auth_base_url: %[1]s/api/auth
  recipes_base_url: %[1]s/api/recipes
  rate_limit: 0
storage:
  driver: sqlite
  sqlite_path: %[2]s
`, suite.server.URL, filepath.Join(dir, "state.db"))
	require.NoError(suite.T(), os.WriteFile(suite.configPath, []byte(body), 0o600))
}

// TearDownTest stops the backend
func (suite *CLITestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *CLITestSuite) run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", suite.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// TestSearchFlow signs in, selects and searches across invocations
func (suite *CLITestSuite) TestSearchFlow() {
	// Arrange
	out, err := suite.run("login", "--email", "ana@example.com", "--password", "secret123")
	require.NoError(suite.T(), err, out)
	assert.Contains(suite.T(), out, "Signed in as ana@example.com")

	out, err = suite.run("select", "add", "pollo,tomate")
	require.NoError(suite.T(), err, out)
	assert.Contains(suite.T(), out, "Selected (2/4): pollo, tomate")

	// Act
	out, err = suite.run("search")

	// Assert
	require.NoError(suite.T(), err, out)
	assert.Contains(suite.T(), out, "Pollo al ajillo")
	assert.Contains(suite.T(), out, "Ensalada de tomate y huevo")

	out, err = suite.run("search", "--last")
	require.NoError(suite.T(), err, out)
	assert.Contains(suite.T(), out, "Last search: pollo, tomate")

	out, err = suite.run("select", "list")
	require.NoError(suite.T(), err, out)
	assert.Contains(suite.T(), out, "Selected (0/4)")

	out, err = suite.run("shopping-list", "--have", "ajo")
	require.NoError(suite.T(), err, out)
	assert.Contains(suite.T(), out, "pollo")
	assert.NotContains(suite.T(), out, " ajo ")
}

// TestSearchWithoutLogin reports the auth error
func (suite *CLITestSuite) TestSearchWithoutLogin() {
	// Act
	_, err := suite.run("search", "pollo", "tomate")

	// Assert
	require.Error(suite.T(), err)
	assert.NotEmpty(suite.T(), userMessage(err))
}

// TestLogout forgets the session
func (suite *CLITestSuite) TestLogout() {
	// Arrange
	_, err := suite.run("login", "--email", "ana@example.com", "--password", "secret123")
	require.NoError(suite.T(), err)

	// Act
	_, err = suite.run("logout")
	require.NoError(suite.T(), err)
	out, err := suite.run("whoami")

	// Assert
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), out, "Not signed in")
}

// TestCLITestSuite runs the CLI test suite
func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func TestSplitArgs(t *testing.T) {
	assert.Equal(t, []string{"pollo", "tomate", "ajo"}, splitArgs([]string{"pollo, tomate", "ajo", " , "}))
	assert.Nil(t, splitArgs(nil))
}
