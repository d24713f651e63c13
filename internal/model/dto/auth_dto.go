package dto

import (
	"time"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

// SignupRequest 注册请求
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 当前用户信息（返回给本人）
type UserInfo struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Username         string    `json:"username"`
	Email            string    `json:"email,omitempty"`
	ProfileImg       string    `json:"profileImg"`
	Headline         string    `json:"headline"`
	Bio              string    `json:"bio"`
	College          string    `json:"college"`
	Role             string    `json:"role"`
	Availability     string    `json:"availability"`
	SubscriptionTier string    `json:"subscriptionTier"`
	Skillcoins       int       `json:"skillcoins"`
	EmailVerified    bool      `json:"emailVerified"`
	CreatedAt        time.Time `json:"createdAt"`
}

func NewUserInfo(u *model.User) *UserInfo {
	info := &UserInfo{
		ID:               u.ID,
		Name:             u.Name,
		Username:         u.Username,
		ProfileImg:       u.ProfileImg,
		Headline:         u.Headline,
		Bio:              u.Bio,
		College:          u.College,
		Role:             u.Role,
		Availability:     u.Availability,
		SubscriptionTier: u.SubscriptionTier,
		Skillcoins:       u.Skillcoins,
		EmailVerified:    u.EmailVerified,
		CreatedAt:        u.CreatedAt,
	}
	if u.Email != nil {
		info.Email = *u.Email
	}
	return info
}
