package model

import (
	"time"
)

// 角色
const (
	RoleLearner = "LEARNER"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

// 在线状态
const (
	AvailabilityOnline   = "ONLINE"
	AvailabilityBusy     = "BUSY"
	AvailabilityLearning = "LEARNING"
	AvailabilityOffline  = "OFFLINE"
)

const TierFree = "FREE"

type User struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:100" json:"name"`
	Username         string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email            *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash     *string   `gorm:"size:255" json:"-"`
	GoogleID         *string   `gorm:"column:google_id;size:64;uniqueIndex" json:"-"`
	ProfileImg       string    `gorm:"size:500" json:"profileImg"`
	Headline         string    `gorm:"size:200" json:"headline"`
	Bio              string    `gorm:"type:text" json:"bio"`
	College          string    `gorm:"size:200" json:"college"`
	Role             string    `gorm:"size:20;default:LEARNER" json:"role"`
	Availability     string    `gorm:"size:20;default:OFFLINE" json:"availability"`
	SubscriptionTier string    `gorm:"size:20;default:FREE" json:"subscriptionTier"`
	Skillcoins       int       `gorm:"default:0;not null" json:"skillcoins"`
	EmailVerified    bool      `gorm:"default:false" json:"emailVerified"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	SkillsTeaching []Skill `gorm:"foreignKey:TeacherID" json:"skillsTeaching,omitempty"`
	SkillsLearning []Skill `gorm:"many2many:skill_learners;" json:"skillsLearning,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func IsValidAvailability(v string) bool {
	switch v {
	case AvailabilityOnline, AvailabilityBusy, AvailabilityLearning, AvailabilityOffline:
		return true
	}
	return false
}
