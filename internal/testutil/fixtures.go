package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
)

var seq int64

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	email := fmt.Sprintf("test_%d@example.com", n)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Name:             fmt.Sprintf("Test User %d", n),
		Username:         fmt.Sprintf("testuser_%d", n),
		Email:            &email,
		PasswordHash:     &passwordHash,
		Role:             model.RoleLearner,
		Availability:     model.AvailabilityOffline,
		SubscriptionTier: model.TierFree,
		Skillcoins:       100,
		EmailVerified:    true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithAvailability 设置在线状态
func WithAvailability(availability string) func(*model.User) {
	return func(u *model.User) {
		u.Availability = availability
	}
}

// WithTier 设置订阅等级
func WithTier(tier string) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionTier = tier
	}
}

// WithSkillcoins 设置余额
func WithSkillcoins(coins int) func(*model.User) {
	return func(u *model.User) {
		u.Skillcoins = coins
	}
}

// TestSkill 创建测试技能，tags 按名称关联（不存在则创建）
func TestSkill(t *testing.T, db *gorm.DB, teacherID int64, category string, tags []string, opts ...func(*model.Skill)) *model.Skill {
	t.Helper()

	skill := &model.Skill{
		Name:        fmt.Sprintf("%s %d", category, nextSeq()),
		Category:    category,
		Level:       model.LevelBeginner,
		SessionMode: model.SessionModeOnline,
		Visibility:  model.VisibilityPublic,
		TeacherID:   teacherID,
	}

	for _, opt := range opts {
		opt(skill)
	}

	for _, name := range tags {
		tag := model.Tag{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
			t.Fatalf("Failed to create test tag: %v", err)
		}
		skill.Tags = append(skill.Tags, tag)
	}

	if err := db.Create(skill).Error; err != nil {
		t.Fatalf("Failed to create test skill: %v", err)
	}

	return skill
}

// WithVisibility 设置可见性
func WithVisibility(visibility string) func(*model.Skill) {
	return func(s *model.Skill) {
		s.Visibility = visibility
	}
}

// WithFeatured 设置精选
func WithFeatured() func(*model.Skill) {
	return func(s *model.Skill) {
		s.Featured = true
	}
}

// WithSkillName 设置技能名
func WithSkillName(name string) func(*model.Skill) {
	return func(s *model.Skill) {
		s.Name = name
	}
}

// WithLevel 设置难度
func WithLevel(level string) func(*model.Skill) {
	return func(s *model.Skill) {
		s.Level = level
	}
}

// Enroll 将用户加入技能学习者
func Enroll(t *testing.T, db *gorm.DB, userID, skillID int64) {
	t.Helper()

	if err := db.Model(&model.Skill{ID: skillID}).Association("Learners").Append(&model.User{ID: userID}); err != nil {
		t.Fatalf("Failed to enroll test user: %v", err)
	}
}

// TestMatch 创建测试匹配缓存行
func TestMatch(t *testing.T, db *gorm.DB, userID, matchUserID int64, score float64) *model.SkillMatch {
	t.Helper()

	m := &model.SkillMatch{
		ID:          model.MatchID(userID, matchUserID),
		UserID:      userID,
		MatchUserID: matchUserID,
		Score:       score,
		Reasons:     []string{"cached"},
	}

	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to create test match: %v", err)
	}

	return m
}

// TestRequest 创建测试辅导请求
func TestRequest(t *testing.T, db *gorm.DB, studentID, tutorID, skillID int64, duration int, status string) *model.SkillRequest {
	t.Helper()

	req := &model.SkillRequest{
		StudentID: studentID,
		TutorID:   tutorID,
		SkillID:   skillID,
		Message:   "please teach me",
		Duration:  duration,
		Cost:      model.SessionCost(duration),
		Status:    status,
	}

	if err := db.Create(req).Error; err != nil {
		t.Fatalf("Failed to create test request: %v", err)
	}

	return req
}
