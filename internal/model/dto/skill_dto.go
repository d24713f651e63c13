package dto

import (
	"encoding/json"
	"time"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

// SkillListQuery 技能列表查询参数
type SkillListQuery struct {
	Q          string `form:"q"`
	Category   string `form:"category"`
	Level      string `form:"level"`
	Mode       string `form:"mode"`
	Visibility string `form:"visibility"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"pageSize,default=20"`
}

// CreateSkillRequest 创建技能
type CreateSkillRequest struct {
	Name          string          `json:"name" binding:"required,max=120"`
	Category      string          `json:"category" binding:"required,max=80"`
	Level         string          `json:"level" binding:"required"`
	Description   string          `json:"description" binding:"required"`
	SessionMode   string          `json:"sessionMode"`
	Tags          []string        `json:"tags"`
	Visibility    string          `json:"visibility"`
	Location      string          `json:"location"`
	DeliveryModes json.RawMessage `json:"deliveryModes"`
}

// UpdateSkillRequest 部分更新；tags 非 nil 时整体替换
type UpdateSkillRequest struct {
	Name          *string         `json:"name"`
	Category      *string         `json:"category"`
	Level         *string         `json:"level"`
	Description   *string         `json:"description"`
	SessionMode   *string         `json:"sessionMode"`
	Visibility    *string         `json:"visibility"`
	Location      *string         `json:"location"`
	DeliveryModes json.RawMessage `json:"deliveryModes"`
	Featured      *bool           `json:"featured"`
	Tags          *[]string       `json:"tags"`
}

// SkillInfo 技能详情
type SkillInfo struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Level         string          `json:"level"`
	Description   string          `json:"description"`
	SessionMode   string          `json:"sessionMode"`
	Visibility    string          `json:"visibility"`
	Location      string          `json:"location,omitempty"`
	DeliveryModes json.RawMessage `json:"deliveryModes,omitempty"`
	Featured      bool            `json:"featured"`
	TeacherID     int64           `json:"teacherId"`
	Teacher       *UserSummary    `json:"teacher,omitempty"`
	Tags          []model.Tag     `json:"tags"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func NewSkillInfo(s *model.Skill) *SkillInfo {
	info := &SkillInfo{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Level:       s.Level,
		Description: s.Description,
		SessionMode: s.SessionMode,
		Visibility:  s.Visibility,
		Location:    s.Location,
		Featured:    s.Featured,
		TeacherID:   s.TeacherID,
		Teacher:     NewUserSummary(s.Teacher),
		Tags:        s.Tags,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if len(s.DeliveryModes) > 0 {
		info.DeliveryModes = json.RawMessage(s.DeliveryModes)
	}
	if info.Tags == nil {
		info.Tags = []model.Tag{}
	}
	return info
}

func NewSkillInfos(skills []model.Skill) []*SkillInfo {
	out := make([]*SkillInfo, 0, len(skills))
	for i := range skills {
		out = append(out, NewSkillInfo(&skills[i]))
	}
	return out
}

func NewSkillInfoList(skills []*model.Skill) []*SkillInfo {
	out := make([]*SkillInfo, 0, len(skills))
	for _, s := range skills {
		out = append(out, NewSkillInfo(s))
	}
	return out
}

// MySkillsResponse 我教授和学习中的技能
type MySkillsResponse struct {
	Teaching []*SkillInfo `json:"teaching"`
	Learning []*SkillInfo `json:"learning"`
}

// RecommendedResponse 推荐技能
type RecommendedResponse struct {
	Items  []*SkillInfo `json:"items"`
	Source string       `json:"source"` // personalized, fallback
}

// EnrollResponse 加入/退出学习
type EnrollResponse struct {
	SkillID    int64   `json:"skillId"`
	Enrolled   bool    `json:"enrolled"`
	LearnerIDs []int64 `json:"learnerIds"`
}

// CreateTagRequest 创建标签
type CreateTagRequest struct {
	Name string `json:"name" binding:"required,max=60"`
}
