package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/skill_exchange_server/internal/api/middleware"
	"github.com/qs3c/skill_exchange_server/internal/pkg/response"
	"github.com/qs3c/skill_exchange_server/internal/service"
)

type MatchHandler struct {
	matchService *service.MatchService
}

func NewMatchHandler(matchService *service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// List 技能匹配
// GET /api/matches
func (h *MatchHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.matchService.GetMatches(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, service.ErrMatchComputation.Error())
		return
	}

	response.Success(c, resp)
}
