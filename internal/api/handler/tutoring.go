package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/skill_exchange_server/internal/api/middleware"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/pkg/response"
	"github.com/qs3c/skill_exchange_server/internal/service"
)

type TutoringHandler struct {
	tutoringService *service.TutoringService
	log             *zap.Logger
}

func NewTutoringHandler(tutoringService *service.TutoringService, log *zap.Logger) *TutoringHandler {
	return &TutoringHandler{
		tutoringService: tutoringService,
		log:             log,
	}
}

// MyRequests 我发起和收到的请求
// GET /api/tutoring/my-requests
func (h *TutoringHandler) MyRequests(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.tutoringService.ListMyRequests(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("failed to list tutoring requests", zap.Error(err))
		response.ServerError(c, service.ErrFetchRequests.Error())
		return
	}

	response.Success(c, items)
}

// Create 发起辅导请求
// POST /api/tutoring/request
func (h *TutoringHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateTutoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "tutorId, skillId and a positive duration are required")
		return
	}

	info, err := h.tutoringService.CreateRequest(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTutorNotFound),
			errors.Is(err, service.ErrSkillNotFound),
			errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInsufficientSkillcoins),
			errors.Is(err, service.ErrSelfRequest),
			errors.Is(err, service.ErrInvalidDuration),
			errors.Is(err, service.ErrSkillNotTaughtByTutor):
			response.ParamError(c, err.Error())
		default:
			h.log.Error("failed to create tutoring request", zap.Error(err))
			response.ServerError(c, service.ErrCreateRequest.Error())
		}
		return
	}

	response.Created(c, info)
}

// Respond 导师接受或拒绝
// PATCH /api/tutoring/request/:id
func (h *TutoringHandler) Respond(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid request id")
		return
	}

	var req dto.RespondTutoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, service.ErrInvalidRequestStatus.Error())
		return
	}

	info, err := h.tutoringService.RespondToRequest(c.Request.Context(), userID, requestID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotAuthorizedRequest):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrInvalidRequestStatus),
			errors.Is(err, service.ErrInsufficientSkillcoins):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrRequestNotPending):
			response.ConflictError(c, err.Error())
		default:
			h.log.Error("failed to update tutoring request", zap.Int64("request_id", requestID), zap.Error(err))
			response.ServerError(c, service.ErrUpdateRequest.Error())
		}
		return
	}

	response.Success(c, info)
}
