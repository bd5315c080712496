package stubserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

var signingKey = []byte("stub-test-key")

// StubServerTestSuite drives the stub backend over real HTTP
type StubServerTestSuite struct {
	suite.Suite
	stub   *Server
	server *httptest.Server
	now    time.Time
}

// SetupTest starts a fresh backend with one registered user
func (suite *StubServerTestSuite) SetupTest() {
	suite.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	suite.stub = New(Options{
		SigningKey: signingKey,
		TokenTTL:   time.Hour,
		Clock:      func() time.Time { return suite.now },
	}, zap.NewNop())
	require.NoError(suite.T(), suite.stub.AddUser(user.User{
		ID:    "u-1",
		Name:  "Ana",
		Email: "ana@example.com",
	}, "secret123"))
	suite.server = httptest.NewServer(suite.stub.Handler())
}

// TearDownTest stops the server
func (suite *StubServerTestSuite) TearDownTest() {
	suite.server.Close()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (suite *StubServerTestSuite) do(method, path, token string, body interface{}) (*http.Response, envelope) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	require.NoError(suite.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (suite *StubServerTestSuite) login() string {
	resp, env := suite.do(http.MethodPost, "/api/auth/login", "", outbound.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var result outbound.AuthResult
	require.NoError(suite.T(), json.Unmarshal(env.Data, &result))
	return result.Token
}

// TestAuth tests login and signup
func (suite *StubServerTestSuite) TestAuth() {
	suite.Run("Login_ShouldReturnTokenAndUser", func() {
		// Act
		resp, env := suite.do(http.MethodPost, "/api/auth/login", "", outbound.LoginRequest{Email: "ANA@example.com", Password: "secret123"})

		// Assert
		assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
		assert.True(suite.T(), env.Success)
		var result outbound.AuthResult
		require.NoError(suite.T(), json.Unmarshal(env.Data, &result))
		assert.NotEmpty(suite.T(), result.Token)
		assert.Equal(suite.T(), int64(3600), result.ExpiresIn)
		assert.Equal(suite.T(), "u-1", result.User.ID)
		assert.False(suite.T(), result.Premium)
	})

	suite.Run("WrongPassword_ShouldBeUnauthorized", func() {
		// Act
		resp, env := suite.do(http.MethodPost, "/api/auth/login", "", outbound.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})

		// Assert
		assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
		assert.False(suite.T(), env.Success)
		assert.Equal(suite.T(), "Invalid email or password", env.Message)
	})

	suite.Run("InvalidPayload_ShouldBeBadRequest", func() {
		// Act
		resp, env := suite.do(http.MethodPost, "/api/auth/login", "", outbound.LoginRequest{Email: "not-an-email", Password: "x"})

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
		assert.NotEmpty(suite.T(), env.Message)
	})

	suite.Run("Signup_ShouldCreateAccount", func() {
		// Act
		resp, env := suite.do(http.MethodPost, "/api/auth/signup", "", outbound.SignupRequest{Name: "Luis", Email: "luis@example.com", Password: "secret123"})

		// Assert
		assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
		var result outbound.AuthResult
		require.NoError(suite.T(), json.Unmarshal(env.Data, &result))
		assert.NotEmpty(suite.T(), result.User.ID)
		assert.Equal(suite.T(), user.SubscriptionFree, result.User.SubscriptionStatus)
	})

	suite.Run("DuplicateSignup_ShouldConflict", func() {
		// Act
		resp, _ := suite.do(http.MethodPost, "/api/auth/signup", "", outbound.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "secret123"})

		// Assert
		assert.Equal(suite.T(), http.StatusConflict, resp.StatusCode)
	})
}

// TestProfile tests the authenticated profile routes
func (suite *StubServerTestSuite) TestProfile() {
	suite.Run("MissingToken_ShouldBeUnauthorized", func() {
		// Act
		resp, env := suite.do(http.MethodGet, "/api/auth/me", "", nil)

		// Assert
		assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
		assert.False(suite.T(), env.Success)
	})

	suite.Run("ExpiredToken_ShouldBeUnauthorized", func() {
		// Arrange
		token := suite.login()
		suite.now = suite.now.Add(2 * time.Hour)
		defer func() { suite.now = suite.now.Add(-2 * time.Hour) }()

		// Act
		resp, _ := suite.do(http.MethodGet, "/api/auth/me", token, nil)

		// Assert
		assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	})

	suite.Run("UpdateAllergies_ShouldEchoStoredList", func() {
		// Arrange
		token := suite.login()

		// Act
		resp, env := suite.do(http.MethodPut, "/api/auth/me/allergies", token, map[string][]string{"allergies": {"maní"}})

		// Assert
		assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
		assert.JSONEq(suite.T(), `{"allergies":["maní"]}`, string(env.Data))

		_, me := suite.do(http.MethodGet, "/api/auth/me", token, nil)
		var u user.User
		require.NoError(suite.T(), json.Unmarshal(me.Data, &u))
		assert.Equal(suite.T(), []string{"maní"}, u.Allergies)
	})

	suite.Run("UpdateProfile_ShouldChangeName", func() {
		// Arrange
		token := suite.login()

		// Act
		resp, env := suite.do(http.MethodPut, "/api/auth/me", token, user.ProfileUpdate{Name: "Ana María"})

		// Assert
		assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
		var u user.User
		require.NoError(suite.T(), json.Unmarshal(env.Data, &u))
		assert.Equal(suite.T(), "Ana María", u.Name)
	})
}

// TestGenerate tests the recipe generation route
func (suite *StubServerTestSuite) TestGenerate() {
	suite.Run("MatchingSeeds_ShouldBeReturnedWithEncodedSteps", func() {
		// Arrange
		token := suite.login()

		// Act
		resp, env := suite.do(http.MethodPost, "/api/recipes/generate", token, generateRequest{Ingredients: []string{"pollo", "tomate"}})

		// Assert
		require.Equal(suite.T(), http.StatusOK, resp.StatusCode)
		var body struct {
			Recipes []recipe.RawRecipe `json:"recipes"`
			Total   int                `json:"total"`
		}
		require.NoError(suite.T(), json.Unmarshal(env.Data, &body))
		assert.Equal(suite.T(), 2, body.Total)
		require.Len(suite.T(), body.Recipes, 2)
		assert.Equal(suite.T(), recipe.FlexString("Pollo al ajillo"), body.Recipes[0].Name)
		assert.IsType(suite.T(), recipe.EncodedStep(""), body.Recipes[0].Steps[0])
		assert.Empty(suite.T(), body.Recipes[0].Ingredients[0].Icon)
	})

	suite.Run("ExcludedIngredient_ShouldSkipSeed", func() {
		// Act
		got := generate([]string{"pollo", "tomate"}, &outbound.Preferences{Allergies: []string{"Ajo"}, Servings: 3}, 2)

		// Assert
		require.Len(suite.T(), got, 2)
		assert.Equal(suite.T(), "Ensalada de tomate y huevo", got[0].Name)
		assert.Contains(suite.T(), got[1].Name, "pollo y tomate")
		assert.Equal(suite.T(), 3, got[0].Servings)
		assert.Equal(suite.T(), 3, got[1].Servings)
	})

	suite.Run("TooFewIngredients_ShouldBeBadRequest", func() {
		// Arrange
		token := suite.login()

		// Act
		resp, env := suite.do(http.MethodPost, "/api/recipes/generate", token, generateRequest{Ingredients: []string{"pollo", " POLLO "}})

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
		assert.Equal(suite.T(), "At least 2 ingredients are required", env.Message)
	})

	suite.Run("BrotliRequested_ShouldCompressResponse", func() {
		// Arrange
		token := suite.login()
		data, _ := json.Marshal(generateRequest{Ingredients: []string{"huevo", "patata"}})
		req, err := http.NewRequest(http.MethodPost, suite.server.URL+"/api/recipes/generate", bytes.NewReader(data))
		require.NoError(suite.T(), err)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept-Encoding", "br, gzip")

		// Act
		resp, err := http.DefaultClient.Do(req)
		require.NoError(suite.T(), err)
		defer resp.Body.Close()

		// Assert
		assert.Equal(suite.T(), "br", resp.Header.Get("Content-Encoding"))
		var env envelope
		require.NoError(suite.T(), json.NewDecoder(brotli.NewReader(resp.Body)).Decode(&env))
		assert.True(suite.T(), env.Success)
	})
}

// TestStubServerTestSuite runs the stub server test suite
func TestStubServerTestSuite(t *testing.T) {
	suite.Run(t, new(StubServerTestSuite))
}
