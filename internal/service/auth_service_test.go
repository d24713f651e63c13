package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/config"
	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/pkg/jwt"
	"github.com/qs3c/skill_exchange_server/internal/pkg/oauth"
	"github.com/qs3c/skill_exchange_server/internal/repository"
	"github.com/qs3c/skill_exchange_server/internal/testutil"
)

type fakeGoogle struct {
	user        *oauth.GoogleUser
	exchangeErr error
}

func (f *fakeGoogle) GetAuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeGoogle) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

func (f *fakeGoogle) GetUser(ctx context.Context, token *oauth2.Token) (*oauth.GoogleUser, error) {
	return f.user, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{ClientURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
		Skillcoins: config.SkillcoinsConfig{SignupBonus: 100},
	}
}

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := NewAuthService(repository.NewUserRepository(db), oauth.NewStateStore(rdb), testConfig())
	return svc, db
}

func TestAuthService_Signup_Success(t *testing.T) {
	svc, db := setupAuthService(t)

	resp, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada.Lovelace@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "adalovelace", resp.User.Username)
	assert.Equal(t, "ada.lovelace@example.com", resp.User.Email)
	assert.Equal(t, 100, resp.User.Skillcoins)
	assert.Equal(t, model.RoleLearner, resp.User.Role)

	claims, err := jwt.ParseToken(resp.Token, "test-secret-key-for-testing")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	var user model.User
	require.NoError(t, db.First(&user, resp.User.ID).Error)
	require.NotNil(t, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("password123")))
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	svc, db := setupAuthService(t)
	testutil.TestUser(t, db, testutil.WithEmail("taken@example.com"))

	_, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Name:     "Someone",
		Email:    "taken@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, "User with this email already exists.", err.Error())
}

func TestAuthService_Signup_UsernameSuffix(t *testing.T) {
	svc, db := setupAuthService(t)
	testutil.TestUser(t, db, testutil.WithUsername("sam"))
	testutil.TestUser(t, db, testutil.WithUsername("sam1"))

	resp, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Name:     "Sam",
		Email:    "sam@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "sam2", resp.User.Username)
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Kim", Email: "kim@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "kim@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "kim", resp.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "kim@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Me(t *testing.T) {
	svc, db := setupAuthService(t)
	user := testutil.TestUser(t, db)

	info, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, info.Username)

	_, err = svc.Me(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	ctx := context.Background()

	t.Run("existing google id", func(t *testing.T) {
		svc, db := setupAuthService(t)
		user := testutil.TestUser(t, db)
		require.NoError(t, db.Model(user).Update("google_id", "g-1").Error)

		got, err := svc.LoginWithGoogle(ctx, &oauth.GoogleUser{ID: "g-1", Email: "other@example.com"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("links by email", func(t *testing.T) {
		svc, db := setupAuthService(t)
		user := testutil.TestUser(t, db, testutil.WithEmail("link@example.com"))
		require.NoError(t, db.Model(user).Update("email_verified", false).Error)

		got, err := svc.LoginWithGoogle(ctx, &oauth.GoogleUser{ID: "g-2", Email: "Link@example.com", Picture: "https://img/p.png"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		require.NotNil(t, got.GoogleID)
		assert.Equal(t, "g-2", *got.GoogleID)
		assert.True(t, got.EmailVerified)
		assert.Equal(t, "https://img/p.png", got.ProfileImg)
	})

	t.Run("creates user", func(t *testing.T) {
		svc, db := setupAuthService(t)
		testutil.TestUser(t, db, testutil.WithUsername("newbie"))

		got, err := svc.LoginWithGoogle(ctx, &oauth.GoogleUser{ID: "g-3", Email: "new.bie@example.com", Name: "New Bie"})
		require.NoError(t, err)
		assert.NotZero(t, got.ID)
		assert.Equal(t, "newbie1", got.Username)
		assert.Equal(t, "New Bie", got.Name)
		assert.True(t, got.EmailVerified)
		assert.Equal(t, 100, got.Skillcoins)
		assert.Nil(t, got.PasswordHash)
	})

	t.Run("missing email", func(t *testing.T) {
		svc, _ := setupAuthService(t)
		_, err := svc.LoginWithGoogle(ctx, &oauth.GoogleUser{ID: "g-4"})
		assert.ErrorIs(t, err, ErrGoogleEmailRequired)
	})
}

func TestAuthService_GoogleFlow(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.GoogleAuthURL(ctx, "/")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)

	svc.google = &fakeGoogle{user: &oauth.GoogleUser{ID: "g-9", Email: "flow@example.com", Name: "Flow"}}

	authURL, err := svc.GoogleAuthURL(ctx, "/dashboard")
	require.NoError(t, err)
	require.Contains(t, authURL, "state=")
	state := authURL[len("https://accounts.example.com/auth?state="):]

	token, err := svc.GoogleCallback(ctx, "code", state)
	require.NoError(t, err)
	claims, err := jwt.ParseToken(token, "test-secret-key-for-testing")
	require.NoError(t, err)
	assert.NotZero(t, claims.UserID)

	_, err = svc.GoogleCallback(ctx, "code", state)
	assert.ErrorIs(t, err, oauth.ErrInvalidState)
}

func TestAuthService_GoogleCallback_ExchangeError(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()
	svc.google = &fakeGoogle{exchangeErr: errors.New("bad code")}

	authURL, err := svc.GoogleAuthURL(ctx, "/")
	require.NoError(t, err)
	state := authURL[len("https://accounts.example.com/auth?state="):]

	_, err = svc.GoogleCallback(ctx, "code", state)
	assert.Error(t, err)
}

func TestAuthService_RedirectURLs(t *testing.T) {
	svc, _ := setupAuthService(t)

	assert.Equal(t, "http://localhost:3000/auth/callback?token=abc.def", svc.OAuthSuccessURL("abc.def"))
	assert.Equal(t, "http://localhost:3000/login?error=auth_failed", svc.OAuthFailureURL())
}

func TestUsernameBase(t *testing.T) {
	tests := []struct {
		email, name, want string
	}{
		{"John.Doe+x@example.com", "", "johndoex"},
		{"___@example.com", "Zoë Smith", "zosmith"},
		{"@example.com", "", "user"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.email, tt.name), func(t *testing.T) {
			assert.Equal(t, tt.want, usernameBase(tt.email, tt.name))
		})
	}
}
