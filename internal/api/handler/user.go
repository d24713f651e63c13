package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/skill_exchange_server/internal/api/middleware"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/pkg/response"
	"github.com/qs3c/skill_exchange_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	log         *zap.Logger
}

func NewUserHandler(userService *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

// GetProfile 公开主页
// GET /api/users/:username
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		h.log.Error("failed to load profile", zap.Error(err))
		response.ServerError(c, "")
		return
	}

	response.Success(c, profile)
}

// UpdateProfile 更新资料
// PATCH /api/users/:id
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid user id")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.userService.UpdateProfile(c.Request.Context(), userID, targetID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthorizedProfile):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInvalidAvailability):
			response.ParamError(c, err.Error())
		default:
			h.log.Error("failed to update profile", zap.Error(err))
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, info)
}

// UploadAvatar 上传头像
// POST /api/users/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		response.ParamError(c, "Please choose an image")
		return
	}
	if file.Size > service.MaxAvatarSize {
		response.ParamError(c, service.ErrAvatarTooLarge.Error())
		return
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = extByContentType(file.Header.Get("Content-Type"))
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "Failed to read upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxAvatarSize+1))
	if err != nil {
		response.ServerError(c, "Failed to read upload")
		return
	}

	resp, err := h.userService.UploadAvatar(c.Request.Context(), userID, data, ext)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAvatarTooLarge), errors.Is(err, service.ErrUnsupportedImage):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrStorageNotConfigured):
			response.Error(c, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			h.log.Error("avatar upload failed", zap.Int64("user_id", userID), zap.Error(err))
			response.ServerError(c, "Upload failed")
		}
		return
	}

	response.Success(c, resp)
}

func extByContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}
