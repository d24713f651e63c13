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

type SkillHandler struct {
	skillService *service.SkillService
	log          *zap.Logger
}

func NewSkillHandler(skillService *service.SkillService, log *zap.Logger) *SkillHandler {
	return &SkillHandler{
		skillService: skillService,
		log:          log,
	}
}

// List 技能列表
// GET /api/skills
func (h *SkillHandler) List(c *gin.Context) {
	var q dto.SkillListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, page, pageSize, err := h.skillService.List(c.Request.Context(), &q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidVisibility) {
			response.ParamError(c, err.Error())
			return
		}
		h.log.Error("failed to list skills", zap.Error(err))
		response.ServerError(c, "Failed to fetch skills")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Create 创建技能
// POST /api/skills
func (h *SkillHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, service.ErrMissingSkillFields.Error())
		return
	}

	info, err := h.skillService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err, "Failed to create skill")
		return
	}

	response.Created(c, info)
}

// Mine 我教授和学习中的技能
// GET /api/skills/me
func (h *SkillHandler) Mine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.skillService.MySkills(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("failed to load my skills", zap.Error(err))
		response.ServerError(c, "Failed to fetch skills")
		return
	}

	response.Success(c, resp)
}

// Recommended 推荐技能
// GET /api/skills/recommended
func (h *SkillHandler) Recommended(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.skillService.Recommended(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("failed to recommend skills", zap.Error(err))
		response.ServerError(c, "Failed to fetch recommendations")
		return
	}

	response.Success(c, resp)
}

// Enroll 加入学习
// POST /api/skills/:id/enroll
func (h *SkillHandler) Enroll(c *gin.Context) {
	h.enrollment(c, true)
}

// Unenroll 退出学习
// DELETE /api/skills/:id/enroll
func (h *SkillHandler) Unenroll(c *gin.Context) {
	h.enrollment(c, false)
}

func (h *SkillHandler) enrollment(c *gin.Context, enroll bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	skillID, ok := skillIDParam(c)
	if !ok {
		return
	}

	var (
		resp *dto.EnrollResponse
		err  error
	)
	if enroll {
		resp, err = h.skillService.Enroll(c.Request.Context(), userID, skillID)
	} else {
		resp, err = h.skillService.Unenroll(c.Request.Context(), userID, skillID)
	}
	if err != nil {
		h.writeError(c, err, "Failed to update enrollment")
		return
	}

	response.Success(c, resp)
}

// Update 修改技能
// PATCH /api/skills/:id
func (h *SkillHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	skillID, ok := skillIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.skillService.Update(c.Request.Context(), userID, skillID, &req)
	if err != nil {
		h.writeError(c, err, "Failed to update skill")
		return
	}

	response.Success(c, info)
}

// Delete 删除技能
// DELETE /api/skills/:id
func (h *SkillHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}
	skillID, ok := skillIDParam(c)
	if !ok {
		return
	}

	if err := h.skillService.Delete(c.Request.Context(), userID, skillID); err != nil {
		h.writeError(c, err, "Failed to delete skill")
		return
	}

	response.NoContent(c)
}

// ListTags 全部标签
// GET /api/tags
func (h *SkillHandler) ListTags(c *gin.Context) {
	tags, err := h.skillService.ListTags(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list tags", zap.Error(err))
		response.ServerError(c, "Failed to fetch tags")
		return
	}

	response.Success(c, tags)
}

// CreateTag 创建标签
// POST /api/tags
func (h *SkillHandler) CreateTag(c *gin.Context) {
	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, service.ErrEmptyTagName.Error())
		return
	}

	tag, err := h.skillService.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err, "Failed to create tag")
		return
	}

	response.Created(c, tag)
}

func (h *SkillHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSkillNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrNotAuthorizedUpdate),
		errors.Is(err, service.ErrNotAuthorizedDelete),
		errors.Is(err, service.ErrFeaturedAdminOnly):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrMissingSkillFields),
		errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrInvalidVisibility),
		errors.Is(err, service.ErrInvalidSessionMode),
		errors.Is(err, service.ErrInvalidDeliveryModes),
		errors.Is(err, service.ErrEmptyTagName):
		response.ParamError(c, err.Error())
	default:
		h.log.Error(fallback, zap.Error(err))
		response.ServerError(c, fallback)
	}
}

func skillIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "Invalid skill id")
		return 0, false
	}
	return id, true
}
