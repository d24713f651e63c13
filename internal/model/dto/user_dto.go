package dto

import (
	"encoding/json"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

// UserSummary 嵌入其它资源的用户摘要
type UserSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	ProfileImg   string `json:"profileImg"`
	Headline     string `json:"headline,omitempty"`
	Availability string `json:"availability,omitempty"`
}

func NewUserSummary(u *model.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		ProfileImg:   u.ProfileImg,
		Headline:     u.Headline,
		Availability: u.Availability,
	}
}

// PublicProfile 公开主页
type PublicProfile struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Username       string       `json:"username"`
	ProfileImg     string       `json:"profileImg"`
	Headline       string       `json:"headline"`
	Bio            string       `json:"bio"`
	College        string       `json:"college"`
	Availability   string       `json:"availability"`
	Skillcoins     int          `json:"skillcoins"`
	SkillsTeaching []*SkillInfo `json:"skillsTeaching"`
	SkillsLearning []*SkillInfo `json:"skillsLearning"`
}

func NewPublicProfile(u *model.User) *PublicProfile {
	return &PublicProfile{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		ProfileImg:     u.ProfileImg,
		Headline:       u.Headline,
		Bio:            u.Bio,
		College:        u.College,
		Availability:   u.Availability,
		Skillcoins:     u.Skillcoins,
		SkillsTeaching: NewSkillInfos(u.SkillsTeaching),
		SkillsLearning: NewSkillInfos(u.SkillsLearning),
	}
}

// UpdateProfileRequest 更新资料；availability 可为布尔值或状态枚举
type UpdateProfileRequest struct {
	Bio          *string         `json:"bio,omitempty" binding:"omitempty,max=1000"`
	College      *string         `json:"college,omitempty" binding:"omitempty,max=200"`
	Headline     *string         `json:"headline,omitempty" binding:"omitempty,max=200"`
	Availability json.RawMessage `json:"availability,omitempty"`
}

// AvatarResponse 头像上传响应
type AvatarResponse struct {
	ProfileImg string `json:"profileImg"`
}
