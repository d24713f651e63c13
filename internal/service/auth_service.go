package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/config"
	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/pkg/jwt"
	"github.com/qs3c/skill_exchange_server/internal/pkg/oauth"
	"github.com/qs3c/skill_exchange_server/internal/repository"
)

var (
	ErrEmailExists         = errors.New("User with this email already exists.")
	ErrInvalidCredentials  = errors.New("Invalid credentials.")
	ErrUserNotFound        = errors.New("User not found.")
	ErrOAuthNotConfigured  = errors.New("Google sign-in is not configured")
	ErrGoogleEmailRequired = errors.New("Google account has no email")
	ErrUsernameUnavailable = errors.New("could not allocate a unique username")
)

const maxUsernameSuffix = 1000

type googleProvider interface {
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	GetUser(ctx context.Context, token *oauth2.Token) (*oauth.GoogleUser, error)
}

type AuthService struct {
	userRepo *repository.UserRepository
	states   *oauth.StateStore
	google   googleProvider
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, states *oauth.StateStore, cfg *config.Config) *AuthService {
	s := &AuthService{
		userRepo: userRepo,
		states:   states,
		cfg:      cfg,
	}
	g := cfg.OAuth.Google
	if g.ClientID != "" && g.ClientSecret != "" {
		s.google = oauth.NewGoogleOAuth(g.ClientID, g.ClientSecret, g.RedirectURI)
	}
	return s
}

// Signup 邮箱注册，自动生成用户名并发放注册奖励
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	username, err := s.uniqueUsername(ctx, usernameBase(email, name))
	if err != nil {
		return nil, err
	}

	hash := string(hashed)
	user := &model.User{
		Name:             name,
		Username:         username,
		Email:            &email,
		PasswordHash:     &hash,
		Role:             model.RoleLearner,
		Availability:     model.AvailabilityOffline,
		SubscriptionTier: model.TierFree,
		Skillcoins:       s.cfg.Skillcoins.SignupBonus,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Me 当前登录用户
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserInfo(user), nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GoogleAuthURL 生成 Google 授权地址
func (s *AuthService) GoogleAuthURL(ctx context.Context, returnTo string) (string, error) {
	if s.google == nil {
		return "", ErrOAuthNotConfigured
	}
	state, err := s.states.GenerateState(ctx, returnTo)
	if err != nil {
		return "", err
	}
	return s.google.GetAuthURL(state), nil
}

// GoogleCallback 校验 state、换取 token 并登录，返回站内 JWT
func (s *AuthService) GoogleCallback(ctx context.Context, code, state string) (string, error) {
	if s.google == nil {
		return "", ErrOAuthNotConfigured
	}
	if _, err := s.states.ConsumeState(ctx, state); err != nil {
		return "", err
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	profile, err := s.google.GetUser(ctx, token)
	if err != nil {
		return "", err
	}

	user, err := s.LoginWithGoogle(ctx, profile)
	if err != nil {
		return "", err
	}
	return jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
}

// LoginWithGoogle 按 googleId、邮箱依次查找用户，都不存在时创建
func (s *AuthService) LoginWithGoogle(ctx context.Context, profile *oauth.GoogleUser) (*model.User, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if profile.Email == "" {
		return nil, ErrGoogleEmailRequired
	}
	email := normalizeEmail(profile.Email)

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		fields := map[string]interface{}{
			"google_id":      profile.ID,
			"email_verified": true,
		}
		if user.ProfileImg == "" && profile.Picture != "" {
			fields["profile_img"] = profile.Picture
		}
		if err := s.userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
			return nil, err
		}
		return s.userRepo.GetByID(ctx, user.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := s.uniqueUsername(ctx, usernameBase(email, profile.Name))
	if err != nil {
		return nil, err
	}

	googleID := profile.ID
	name := profile.Name
	if name == "" {
		name = username
	}
	user = &model.User{
		Name:             name,
		Username:         username,
		Email:            &email,
		GoogleID:         &googleID,
		ProfileImg:       profile.Picture,
		Role:             model.RoleLearner,
		Availability:     model.AvailabilityOffline,
		SubscriptionTier: model.TierFree,
		Skillcoins:       s.cfg.Skillcoins.SignupBonus,
		EmailVerified:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// OAuthSuccessURL 登录成功后前端回调地址
func (s *AuthService) OAuthSuccessURL(token string) string {
	return fmt.Sprintf("%s/auth/callback?token=%s", strings.TrimRight(s.cfg.Server.ClientURL, "/"), url.QueryEscape(token))
}

// OAuthFailureURL 登录失败后前端地址
func (s *AuthService) OAuthFailureURL() string {
	return strings.TrimRight(s.cfg.Server.ClientURL, "/") + "/login?error=auth_failed"
}

func (s *AuthService) issue(user *model.User) (*dto.AuthResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.NewUserInfo(user),
	}, nil
}

// uniqueUsername base 被占用时依次尝试 base1..base1000
func (s *AuthService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxUsernameSuffix+1; i++ {
		exists, err := s.userRepo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}

	candidate = base + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	exists, err := s.userRepo.ExistsByUsername(ctx, candidate)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrUsernameUnavailable
	}
	return candidate, nil
}

// usernameBase 取邮箱前缀，只保留小写字母和数字
func usernameBase(email, displayName string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	if base := sanitizeUsername(local); base != "" {
		return base
	}
	if base := sanitizeUsername(displayName); base != "" {
		return base
	}
	return "user"
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
