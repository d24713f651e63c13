package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/skill_exchange_server/internal/model"
	"github.com/qs3c/skill_exchange_server/internal/model/dto"
	"github.com/qs3c/skill_exchange_server/internal/repository"
)

const (
	defaultSkillPageSize = 20
	maxSkillPageSize     = 50
	recommendedLimit     = 12

	RecommendedPersonalized = "personalized"
	RecommendedFallback     = "fallback"
)

var (
	ErrMissingSkillFields   = errors.New("Missing required fields")
	ErrSkillNotFound        = errors.New("Skill not found")
	ErrNotAuthorizedUpdate  = errors.New("Not authorized to update this skill")
	ErrNotAuthorizedDelete  = errors.New("Not authorized to delete this skill")
	ErrFeaturedAdminOnly    = errors.New("Only admins can feature skills")
	ErrInvalidLevel         = errors.New("Invalid skill level")
	ErrInvalidVisibility    = errors.New("Invalid visibility")
	ErrInvalidSessionMode   = errors.New("Invalid session mode")
	ErrInvalidDeliveryModes = errors.New("deliveryModes must be valid JSON")
	ErrEmptyTagName         = errors.New("Tag name is required")
)

type SkillService struct {
	db        *gorm.DB
	skillRepo *repository.SkillRepository
	tagRepo   *repository.TagRepository
	userRepo  *repository.UserRepository
}

func NewSkillService(db *gorm.DB, skillRepo *repository.SkillRepository, tagRepo *repository.TagRepository, userRepo *repository.UserRepository) *SkillService {
	return &SkillService{
		db:        db,
		skillRepo: skillRepo,
		tagRepo:   tagRepo,
		userRepo:  userRepo,
	}
}

// List 技能列表，默认只看公开技能
func (s *SkillService) List(ctx context.Context, q *dto.SkillListQuery) ([]*dto.SkillInfo, int64, int, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = defaultSkillPageSize
	}
	if pageSize > maxSkillPageSize {
		pageSize = maxSkillPageSize
	}

	visibility := strings.ToUpper(q.Visibility)
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if !model.IsValidVisibility(visibility) {
		return nil, 0, 0, 0, ErrInvalidVisibility
	}

	skills, total, err := s.skillRepo.List(ctx, repository.SkillFilter{
		Query:      strings.TrimSpace(q.Q),
		Category:   q.Category,
		Level:      strings.ToUpper(q.Level),
		Mode:       strings.ToUpper(q.Mode),
		Visibility: visibility,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	})
	if err != nil {
		return nil, 0, 0, 0, err
	}

	return dto.NewSkillInfoList(skills), total, page, pageSize, nil
}

// Create 创建技能，标签按名称关联或新建
func (s *SkillService) Create(ctx context.Context, teacherID int64, req *dto.CreateSkillRequest) (*dto.SkillInfo, error) {
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	description := strings.TrimSpace(req.Description)
	if name == "" || category == "" || description == "" || req.Level == "" {
		return nil, ErrMissingSkillFields
	}

	level := strings.ToUpper(req.Level)
	if !model.IsValidLevel(level) {
		return nil, ErrInvalidLevel
	}
	visibility := model.VisibilityPublic
	if req.Visibility != "" {
		visibility = strings.ToUpper(req.Visibility)
		if !model.IsValidVisibility(visibility) {
			return nil, ErrInvalidVisibility
		}
	}
	mode := model.SessionModeOnline
	if req.SessionMode != "" {
		mode = strings.ToUpper(req.SessionMode)
		if !model.IsValidSessionMode(mode) {
			return nil, ErrInvalidSessionMode
		}
	}
	deliveryModes, err := jsonColumn(req.DeliveryModes)
	if err != nil {
		return nil, err
	}

	skill := &model.Skill{
		Name:          name,
		Category:      category,
		Level:         level,
		Description:   description,
		SessionMode:   mode,
		Visibility:    visibility,
		Location:      strings.TrimSpace(req.Location),
		DeliveryModes: deliveryModes,
		TeacherID:     teacherID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := s.tagRepo.WithTx(tx).FindOrCreateAll(ctx, req.Tags)
		if err != nil {
			return err
		}
		skill.Tags = tags
		return s.skillRepo.WithTx(tx).Create(ctx, skill)
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSkillInfo(skill), nil
}

// MySkills 我教授的和学习中的技能
func (s *SkillService) MySkills(ctx context.Context, userID int64) (*dto.MySkillsResponse, error) {
	teaching, err := s.skillRepo.ListTeaching(ctx, userID)
	if err != nil {
		return nil, err
	}
	learning, err := s.skillRepo.ListLearning(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.MySkillsResponse{
		Teaching: dto.NewSkillInfos(teaching),
		Learning: dto.NewSkillInfos(learning),
	}, nil
}

// Enroll 加入技能学习
func (s *SkillService) Enroll(ctx context.Context, userID, skillID int64) (*dto.EnrollResponse, error) {
	return s.setEnrollment(ctx, userID, skillID, true)
}

// Unenroll 退出技能学习
func (s *SkillService) Unenroll(ctx context.Context, userID, skillID int64) (*dto.EnrollResponse, error) {
	return s.setEnrollment(ctx, userID, skillID, false)
}

func (s *SkillService) setEnrollment(ctx context.Context, userID, skillID int64, enrolled bool) (*dto.EnrollResponse, error) {
	exists, err := s.skillRepo.Exists(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSkillNotFound
	}

	if enrolled {
		err = s.skillRepo.AddLearner(ctx, skillID, userID)
	} else {
		err = s.skillRepo.RemoveLearner(ctx, skillID, userID)
	}
	if err != nil {
		return nil, err
	}

	ids, err := s.skillRepo.LearnerIDs(ctx, skillID)
	if err != nil {
		return nil, err
	}
	return &dto.EnrollResponse{
		SkillID:    skillID,
		Enrolled:   enrolled,
		LearnerIDs: ids,
	}, nil
}

// Update 所有者或管理员可修改，featured 仅管理员
func (s *SkillService) Update(ctx context.Context, actorID, skillID int64, req *dto.UpdateSkillRequest) (*dto.SkillInfo, error) {
	skill, isAdmin, err := s.loadForWrite(ctx, actorID, skillID)
	if err != nil {
		return nil, err
	}
	if skill.TeacherID != actorID && !isAdmin {
		return nil, ErrNotAuthorizedUpdate
	}
	if req.Featured != nil && !isAdmin {
		return nil, ErrFeaturedAdminOnly
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrMissingSkillFields
		}
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			return nil, ErrMissingSkillFields
		}
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Level != nil {
		level := strings.ToUpper(*req.Level)
		if !model.IsValidLevel(level) {
			return nil, ErrInvalidLevel
		}
		fields["level"] = level
	}
	if req.SessionMode != nil {
		mode := strings.ToUpper(*req.SessionMode)
		if !model.IsValidSessionMode(mode) {
			return nil, ErrInvalidSessionMode
		}
		fields["session_mode"] = mode
	}
	if req.Visibility != nil {
		visibility := strings.ToUpper(*req.Visibility)
		if !model.IsValidVisibility(visibility) {
			return nil, ErrInvalidVisibility
		}
		fields["visibility"] = visibility
	}
	if req.Location != nil {
		fields["location"] = strings.TrimSpace(*req.Location)
	}
	if len(req.DeliveryModes) > 0 {
		deliveryModes, err := jsonColumn(req.DeliveryModes)
		if err != nil {
			return nil, err
		}
		fields["delivery_modes"] = deliveryModes
	}
	if req.Featured != nil {
		fields["featured"] = *req.Featured
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skills := s.skillRepo.WithTx(tx)
		if err := skills.UpdateFields(ctx, skillID, fields); err != nil {
			return err
		}
		if req.Tags == nil {
			return nil
		}
		tags, err := s.tagRepo.WithTx(tx).FindOrCreateAll(ctx, *req.Tags)
		if err != nil {
			return err
		}
		return skills.ReplaceTags(ctx, skill, tags)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return nil, err
	}
	return dto.NewSkillInfo(updated), nil
}

// Delete 所有者或管理员可删除
func (s *SkillService) Delete(ctx context.Context, actorID, skillID int64) error {
	skill, isAdmin, err := s.loadForWrite(ctx, actorID, skillID)
	if err != nil {
		return err
	}
	if skill.TeacherID != actorID && !isAdmin {
		return ErrNotAuthorizedDelete
	}
	return s.skillRepo.Delete(ctx, skillID)
}

func (s *SkillService) loadForWrite(ctx context.Context, actorID, skillID int64) (*model.Skill, bool, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrSkillNotFound
		}
		return nil, false, err
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return skill, actor != nil && actor.IsAdmin(), nil
}

// Recommended 按学习中的分类推荐他人公开技能，无命中时返回最新公开技能
func (s *SkillService) Recommended(ctx context.Context, userID int64) (*dto.RecommendedResponse, error) {
	categories, err := s.skillRepo.LearningCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(categories) > 0 {
		skills, err := s.skillRepo.ListRecommended(ctx, userID, categories, recommendedLimit)
		if err != nil {
			return nil, err
		}
		if len(skills) > 0 {
			return &dto.RecommendedResponse{
				Items:  dto.NewSkillInfoList(skills),
				Source: RecommendedPersonalized,
			}, nil
		}
	}

	skills, err := s.skillRepo.ListLatestPublic(ctx, recommendedLimit)
	if err != nil {
		return nil, err
	}
	return &dto.RecommendedResponse{
		Items:  dto.NewSkillInfoList(skills),
		Source: RecommendedFallback,
	}, nil
}

// ListTags 全部标签
func (s *SkillService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

// CreateTag 按名称幂等创建
func (s *SkillService) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyTagName
	}
	return s.tagRepo.FindOrCreate(ctx, name)
}

func jsonColumn(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, ErrInvalidDeliveryModes
	}
	return datatypes.JSON(raw), nil
}
