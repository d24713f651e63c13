package dto

import (
	"time"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

// CreateTutoringRequest 发起辅导请求
type CreateTutoringRequest struct {
	TutorID  int64  `json:"tutorId" binding:"required"`
	SkillID  int64  `json:"skillId" binding:"required"`
	Message  string `json:"message" binding:"max=2000"`
	Duration int    `json:"duration" binding:"required,min=1,max=1440"`
}

// RespondTutoringRequest 导师处理请求
type RespondTutoringRequest struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message" binding:"max=2000"`
}

// RequestParty 请求双方的用户信息
type RequestParty struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfileImg string `json:"profileImg"`
	College    string `json:"college,omitempty"`
}

func NewRequestParty(u *model.User) *RequestParty {
	if u == nil {
		return nil
	}
	return &RequestParty{
		ID:         u.ID,
		Name:       u.Name,
		Username:   u.Username,
		ProfileImg: u.ProfileImg,
		College:    u.College,
	}
}

// SkillRef 请求关联的技能
type SkillRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    string `json:"level"`
}

// TutoringRequestInfo 辅导请求详情
type TutoringRequestInfo struct {
	ID           int64         `json:"id"`
	StudentID    int64         `json:"studentId"`
	TutorID      int64         `json:"tutorId"`
	SkillID      int64         `json:"skillId"`
	Message      string        `json:"message"`
	Duration     int           `json:"duration"`
	Cost         int           `json:"cost"`
	Status       string        `json:"status"`
	TutorMessage string        `json:"tutorMessage,omitempty"`
	Student      *RequestParty `json:"student,omitempty"`
	Tutor        *RequestParty `json:"tutor,omitempty"`
	Skill        *SkillRef     `json:"skill,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func NewTutoringRequestInfo(r *model.SkillRequest) *TutoringRequestInfo {
	info := &TutoringRequestInfo{
		ID:           r.ID,
		StudentID:    r.StudentID,
		TutorID:      r.TutorID,
		SkillID:      r.SkillID,
		Message:      r.Message,
		Duration:     r.Duration,
		Cost:         r.Cost,
		Status:       r.Status,
		TutorMessage: r.TutorMessage,
		Student:      NewRequestParty(r.Student),
		Tutor:        NewRequestParty(r.Tutor),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Skill != nil {
		info.Skill = &SkillRef{
			ID:       r.Skill.ID,
			Name:     r.Skill.Name,
			Category: r.Skill.Category,
			Level:    r.Skill.Level,
		}
	}
	return info
}
