package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/skill_exchange_server/config"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/pkg/oauth"
	"github.com/qs3c/skill_exchange_server/internal/repository"
	"github.com/qs3c/skill_exchange_server/internal/service"
	"github.com/qs3c/skill_exchange_server/internal/testutil"
)

func setupAuthRouter(t *testing.T, google config.GoogleOAuthConfig) *gin.Engine {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		Server:     config.ServerConfig{ClientURL: "http://localhost:3000"},
		JWT:        config.JWTConfig{Secret: "test-secret-key", ExpireHours: 24},
		OAuth:      config.OAuthConfig{Google: google},
		Skillcoins: config.SkillcoinsConfig{SignupBonus: 100},
	}
	authService := service.NewAuthService(repository.NewUserRepository(db), oauth.NewStateStore(rdb), cfg)
	h := NewAuthHandler(authService, testLog)

	router := gin.New()
	router.POST("/signup", h.Signup)
	router.POST("/login", h.Login)
	router.GET("/google", h.GoogleAuth)
	router.GET("/google/callback", h.GoogleCallback)

	return router
}

func TestAuthHandler_Signup(t *testing.T) {
	router := setupAuthRouter(t, config.GoogleOAuthConfig{})

	w := performRequest(router, "POST", "/signup", dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.AuthResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada", resp.User.Username)

	w = performRequest(router, "POST", "/signup", dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User with this email already exists.", parseError(t, w))

	w = performRequest(router, "POST", "/signup", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide all required fields.", parseError(t, w))
}

func TestAuthHandler_Login(t *testing.T) {
	router := setupAuthRouter(t, config.GoogleOAuthConfig{})
	performRequest(router, "POST", "/signup", dto.SignupRequest{Name: "Kim", Email: "kim@example.com", Password: "password123"})

	w := performRequest(router, "POST", "/login", dto.LoginRequest{Email: "kim@example.com", Password: "password123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{Email: "kim@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials.", parseError(t, w))

	w = performRequest(router, "POST", "/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Google(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		router := setupAuthRouter(t, config.GoogleOAuthConfig{})
		w := performRequest(router, "GET", "/google", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("redirects to google", func(t *testing.T) {
		router := setupAuthRouter(t, config.GoogleOAuthConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURI:  "http://localhost:3001/api/auth/google/callback",
		})
		w := performRequest(router, "GET", "/google", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		location := w.Header().Get("Location")
		assert.True(t, strings.HasPrefix(location, "https://accounts.google.com/"), location)
		assert.Contains(t, location, "state=")
	})

	t.Run("callback failure redirects to login", func(t *testing.T) {
		router := setupAuthRouter(t, config.GoogleOAuthConfig{ClientID: "client", ClientSecret: "secret"})

		w := performRequest(router, "GET", "/google/callback?code=abc&state=forged", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "http://localhost:3000/login?error=auth_failed", w.Header().Get("Location"))

		w = performRequest(router, "GET", "/google/callback?error=access_denied", nil)
		assert.Equal(t, "http://localhost:3000/login?error=auth_failed", w.Header().Get("Location"))
	})
}
