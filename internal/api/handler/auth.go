package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/skill_exchange_server/internal/api/middleware"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/pkg/response"
	"github.com/qs3c/skill_exchange_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Signup 邮箱注册
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.Name == "" || req.Email == "" || req.Password == "" {
			response.ParamError(c, "Please provide all required fields.")
			return
		}
		response.ParamError(c, "Please provide a valid email and a password of at least 6 characters.")
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		default:
			h.log.Error("signup failed", zap.Error(err))
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, resp)
}

// Login 邮箱密码登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Please provide email and password.")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.ParamError(c, err.Error())
		default:
			h.log.Error("login failed", zap.Error(err))
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Me 当前用户
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}

// GoogleAuth 跳转 Google 授权页
// GET /api/auth/google
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	authURL, err := h.authService.GoogleAuthURL(c.Request.Context(), c.DefaultQuery("redirect", "/"))
	if err != nil {
		if errors.Is(err, service.ErrOAuthNotConfigured) {
			response.Error(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.log.Error("failed to start google oauth", zap.Error(err))
		response.ServerError(c, "")
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback Google 回调，成功后带 token 跳回前端
// GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" || c.Query("error") != "" {
		c.Redirect(http.StatusFound, h.authService.OAuthFailureURL())
		return
	}

	token, err := h.authService.GoogleCallback(c.Request.Context(), code, c.Query("state"))
	if err != nil {
		h.log.Warn("google oauth callback failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.authService.OAuthFailureURL())
		return
	}

	c.Redirect(http.StatusFound, h.authService.OAuthSuccessURL(token))
}
