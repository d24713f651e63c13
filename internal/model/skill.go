package model

import (
	"time"

	"gorm.io/datatypes"
)

// 可见性，只有 PUBLIC 参与匹配与推荐
const (
	VisibilityPublic      = "PUBLIC"
	VisibilityFollowers   = "FOLLOWERS"
	VisibilitySubscribers = "SUBSCRIBERS"
	VisibilityPrivate     = "PRIVATE"
)

const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
	LevelExpert       = "EXPERT"
)

const (
	SessionModeOnline   = "ONLINE"
	SessionModeInPerson = "IN_PERSON"
	SessionModeHybrid   = "HYBRID"
)

type Skill struct {
	ID            int64          `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:120;not null" json:"name"`
	Category      string         `gorm:"size:80;not null;index" json:"category"`
	Level         string         `gorm:"size:20;not null" json:"level"`
	Description   string         `gorm:"type:text" json:"description"`
	SessionMode   string         `gorm:"size:20" json:"sessionMode"`
	Visibility    string         `gorm:"size:20;default:PUBLIC;index" json:"visibility"`
	Location      string         `gorm:"size:200" json:"location,omitempty"`
	DeliveryModes datatypes.JSON `json:"deliveryModes,omitempty"`
	Featured      bool           `gorm:"default:false" json:"featured"`
	TeacherID     int64          `gorm:"not null;index" json:"teacherId"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	Teacher  *User  `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Tags     []Tag  `gorm:"many2many:skill_tags;" json:"tags"`
	Learners []User `gorm:"many2many:skill_learners;" json:"learners,omitempty"`
}

func (Skill) TableName() string {
	return "skills"
}

// TagNames 返回技能关联的标签名
func (s *Skill) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		names = append(names, t.Name)
	}
	return names
}

type Tag struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:60;uniqueIndex;not null" json:"name"`
}

func (Tag) TableName() string {
	return "tags"
}

func IsValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilitySubscribers, VisibilityPrivate:
		return true
	}
	return false
}

func IsValidLevel(v string) bool {
	switch v {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert:
		return true
	}
	return false
}

func IsValidSessionMode(v string) bool {
	switch v {
	case SessionModeOnline, SessionModeInPerson, SessionModeHybrid:
		return true
	}
	return false
}
