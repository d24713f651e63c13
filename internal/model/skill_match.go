package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// SkillMatch 匹配缓存行：UserID -> MatchUserID 的一条有向边
type SkillMatch struct {
	ID          string                      `gorm:"primaryKey;size:64" json:"id"`
	UserID      int64                       `gorm:"not null;index" json:"userId"`
	MatchUserID int64                       `gorm:"not null" json:"matchUserId"`
	Score       float64                     `gorm:"not null;index" json:"score"`
	Reasons     datatypes.JSONSlice[string] `json:"reasons"`
	Metadata    datatypes.JSON              `json:"metadata,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`

	MatchUser *User `gorm:"foreignKey:MatchUserID" json:"matchUser,omitempty"`
}

func (SkillMatch) TableName() string {
	return "skill_matches"
}

// MatchID 缓存行与实时结果共用的 ID
func MatchID(userID, matchUserID int64) string {
	return fmt.Sprintf("%d-%d", userID, matchUserID)
}
