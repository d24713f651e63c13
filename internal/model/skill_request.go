package model

import (
	"time"
)

const (
	RequestStatusPending  = "PENDING"
	RequestStatusAccepted = "ACCEPTED"
	RequestStatusRejected = "REJECTED"
)

// SkillRequest 辅导请求，Duration 分钟数同时也是 skillcoins 费用
type SkillRequest struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	StudentID    int64     `gorm:"not null;index" json:"studentId"`
	TutorID      int64     `gorm:"not null;index" json:"tutorId"`
	SkillID      int64     `gorm:"not null;index" json:"skillId"`
	Message      string    `gorm:"type:text" json:"message"`
	Duration     int       `gorm:"not null" json:"duration"`
	Cost         int       `gorm:"not null" json:"cost"`
	Status       string    `gorm:"size:20;default:PENDING;index" json:"status"`
	TutorMessage string    `gorm:"type:text" json:"tutorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Student *User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Tutor   *User  `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	Skill   *Skill `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

func (SkillRequest) TableName() string {
	return "skill_requests"
}

// SessionCost 每分钟 1 skillcoin
func SessionCost(durationMinutes int) int {
	return durationMinutes
}
