package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/pkg/jwt"
	"github.com/qs3c/skill_exchange_server/internal/pkg/response"
)

const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// UserLoader 校验 token 对应的用户仍然存在
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Auth JWT 认证中间件，users 为 nil 时只校验签名
func Auth(jwtSecret string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.AuthError(c, "Not authorized, no token")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "Invalid token")
			c.Abort()
			return
		}

		if users != nil {
			user, err := users.GetByID(c.Request.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					response.AuthError(c, "Invalid token")
				} else {
					response.ServerError(c, "")
				}
				c.Abort()
				return
			}
			c.Set(UserRoleKey, user.Role)
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader || tokenString == "" {
		return "", false
	}
	return tokenString, true
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
